package ingest

import (
	"context"
	"time"

	"salesintel/internal/intelligence"
)

// IdempotencyStore remembers which idempotency keys have been accepted.
type IdempotencyStore interface {
	// Claim records key for ttl. It returns false if key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a failed delivery can be retried by the caller.
	Release(ctx context.Context, key string) error
}

// Publisher hands an accepted envelope to downstream workers.
type Publisher interface {
	Publish(ctx context.Context, env *intelligence.EventEnvelope) error
}
