package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	httpapi "salesintel/internal/http"
	"salesintel/internal/ingest"
	ingestMetrics "salesintel/internal/ingest/metrics"
	"salesintel/internal/ingest/publisher"
	"salesintel/internal/ingest/store"
	"salesintel/internal/ingest/worker"
	"salesintel/internal/intelligence"
	intelligenceMetrics "salesintel/internal/intelligence/metrics"
	"salesintel/internal/platform/config"
	"salesintel/internal/platform/httpserver"
	"salesintel/internal/platform/kafka"
	"salesintel/internal/platform/logger"
	"salesintel/internal/platform/metrics"
	"salesintel/internal/platform/middleware"
	"salesintel/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.DefaultRegisterer
	intelligenceSvc := intelligence.NewService(
		intelligence.WithMetrics(intelligenceMetrics.New(reg)),
	)
	ingestM := ingestMetrics.New(reg)

	idemStore, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	pub, producer, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	ingestSvc := ingest.New(idemStore, pub,
		ingest.WithTTL(cfg.IdempotencyTTL),
		ingest.WithMetrics(ingestM),
		ingest.WithLogger(log),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		ServiceName:   cfg.ServiceName,
		Intelligence:  intelligenceSvc,
		Ingest:        ingestSvc,
		IngestLimiter: middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Metrics:       metrics.New(reg, prometheus.DefaultGatherer),
		Logger:        log,
	})
	srv := httpserver.New(cfg.Addr, router)

	var w *worker.Worker
	if cfg.Kafka.Enabled() {
		consumer, err := kafka.NewConsumer(ctx, cfg.Kafka)
		if err != nil {
			return err
		}
		defer consumer.Close()
		w = worker.New(worker.NewKafkaSource(consumer), intelligenceSvc, log, ingestM)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting intelligence worker", "addr", cfg.Addr, "service", cfg.ServiceName)
		return httpserver.ListenAndServe(gctx, srv, shutdownTimeout)
	})

	if w != nil {
		g.Go(func() error {
			log.Info("event worker consuming", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("event worker: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (ingest.IdempotencyStore, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("idempotency store: in-memory")
		return store.NewInMemory(), func() {}, nil
	}
	log.Info("idempotency store: redis")
	return store.NewRedis(client), func() { _ = client.Close() }, nil
}

func buildPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (ingest.Publisher, *kgo.Client, error) {
	if !cfg.Kafka.Enabled() {
		log.Info("event publisher: log only")
		return publisher.NewLog(log), nil, nil
	}
	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka); err != nil {
		producer.Close()
		return nil, nil, err
	}
	log.Info("event publisher: kafka", "topic", cfg.Kafka.Topic)
	return publisher.NewKafka(producer, cfg.Kafka.Topic), producer, nil
}
