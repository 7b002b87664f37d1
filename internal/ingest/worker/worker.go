// Package worker consumes ingested envelopes from the event bus and derives
// their advisories, the asynchronous twin of POST /v1/intelligence/process.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"salesintel/internal/ingest/metrics"
	"salesintel/internal/intelligence"
)

// Message is one raw record pulled from the bus.
type Message struct {
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
}

// Source yields batches of messages. Poll blocks until records arrive or ctx
// is done.
type Source interface {
	Poll(ctx context.Context) ([]Message, error)
}

// Processor derives advisories for a validated envelope.
type Processor interface {
	Process(ctx context.Context, env *intelligence.EventEnvelope) *intelligence.IntelligenceResult
}

// Worker pulls from a Source and logs one result per valid envelope.
// Malformed records are skipped, never retried.
type Worker struct {
	source    Source
	processor Processor
	logger    *slog.Logger
	metrics   *metrics.Metrics

	minBackoff time.Duration
	maxBackoff time.Duration
}

const (
	defaultMinBackoff = 200 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// New constructs a Worker.
func New(source Source, processor Processor, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		source:     source,
		processor:  processor,
		logger:     logger,
		metrics:    m,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// Run consumes until ctx is cancelled, then returns ctx.Err().
// Consecutive poll failures back off exponentially up to maxBackoff.
func (w *Worker) Run(ctx context.Context) error {
	backoff := w.minBackoff
	for {
		msgs, err := w.source.Poll(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if errors.Is(err, ErrSourceClosed) {
				return nil
			}
			w.logger.ErrorContext(ctx, "poll failed", "error", err, "retry_in", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, w.maxBackoff)
			continue
		}
		backoff = w.minBackoff
		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrSourceClosed is returned by a Source that will yield no more messages.
var ErrSourceClosed = errors.New("source closed")

func (w *Worker) handle(ctx context.Context, msg Message) {
	env, err := intelligence.ParseEnvelope(msg.Value)
	if err != nil {
		w.metrics.IncrementWorker(metrics.WorkerSkipped)
		w.logger.WarnContext(ctx, "skipping malformed record",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	result := w.processor.Process(ctx, env)
	w.metrics.IncrementWorker(metrics.WorkerProcessed)
	w.logger.InfoContext(ctx, "intelligence generated",
		"event_id", result.EventID,
		"workspace", result.WorkspaceSlug,
		"correlation_id", env.Metadata.CorrelationID,
		"generated_at", result.GeneratedAt,
		"outputs", result.Outputs,
	)
}
