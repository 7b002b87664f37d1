package store

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"salesintel/pkg/platform/sentinel"
)

var claimDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "salesintel_idempotency_claim_duration_ms",
	Help:    "Latency of Redis idempotency claims in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// RedisStore is a Redis-backed IdempotencyStore shared by every gateway replica.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed idempotency store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Claim uses SET NX with expiry so concurrent replicas agree on one winner.
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := validateClaim(key, ttl); err != nil {
		return false, err
	}
	start := time.Now()
	defer func() {
		claimDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	ok, err := s.client.SetNX(ctx, keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w: %w", sentinel.ErrUnavailable, err)
	}
	return ok, nil
}

// Release deletes the claim.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
