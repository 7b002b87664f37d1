package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "salesintel/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	ServiceName string
	LogLevel    string

	IdempotencyTTL time.Duration
	Redis          RedisConfig
	Kafka          KafkaConfig
	RateLimit      RateLimitConfig
}

// RedisConfig configures the shared idempotency cache. An empty URL keeps
// idempotency in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the event bus. No brokers means the gateway only
// logs accepted events and the worker does not start.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Group             string
	Partitions        int32
	ReplicationFactor int16
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RateLimitConfig bounds ingest throughput. Zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("INTELLIGENCE_ADDR", ":8000"),
		ServiceName: envOr("SERVICE_NAME", "intelligence-worker"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:             envOr("KAFKA_TOPIC", "sales-events"),
			Group:             envOr("KAFKA_GROUP", "intelligence-worker"),
			Partitions:        3,
			ReplicationFactor: 1,
		},
	}

	var err error
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.RPS, err = floatEnv("INGEST_RATE_LIMIT", 0); err != nil {
		return Server{}, err
	}
	burst, err := floatEnv("INGEST_RATE_BURST", 0)
	if err != nil {
		return Server{}, err
	}
	cfg.RateLimit.Burst = int(burst)
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = int(cfg.RateLimit.RPS) + 1
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, v)
	}
	return f, nil
}
