package store

import (
	"fmt"
	"time"

	"salesintel/pkg/platform/sentinel"
)

// Clock returns the current time; injected for tests.
type Clock func() time.Time

const keyPrefix = "ingest:idem:"

func validateClaim(key string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("idempotency key must not be empty: %w", sentinel.ErrInvalidState)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
