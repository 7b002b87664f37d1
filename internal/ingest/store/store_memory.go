package store

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a process-local IdempotencyStore. It is the default when
// no Redis URL is configured and is only correct for a single replica.
type InMemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	clock   Clock
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) InMemoryOption {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		expires: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Claim records key until now+ttl unless an unexpired claim exists.
func (s *InMemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := validateClaim(key, ttl); err != nil {
		return false, err
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	s.sweepLocked(now)
	return true, nil
}

// Release drops key.
func (s *InMemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, key)
	return nil
}

// Len reports the number of live claims.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.clock())
	return len(s.expires)
}

func (s *InMemoryStore) sweepLocked(now time.Time) {
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
		}
	}
}
