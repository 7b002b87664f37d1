// Package ingest accepts sales events at the edge, guards against replays and
// forwards them to the intelligence worker over the event bus.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"salesintel/internal/ingest/metrics"
	"salesintel/internal/intelligence"
	dErrors "salesintel/pkg/domain-errors"
	"salesintel/pkg/requestcontext"
)

// releaseTimeout bounds the key release after a failed publish.
const releaseTimeout = 2 * time.Second

// DefaultIdempotencyTTL bounds how long a replayed key is refused.
const DefaultIdempotencyTTL = 24 * time.Hour

// Service accepts validated envelopes for asynchronous processing.
type Service struct {
	store     IdempotencyStore
	publisher Publisher
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultIdempotencyTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs an ingest Service.
func New(store IdempotencyStore, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		ttl:       DefaultIdempotencyTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RequireRoutingFields enforces the gateway's stricter contract: eventType and
// workspaceSlug must be non-blank because downstream partitioning uses them.
func RequireRoutingFields(env *intelligence.EventEnvelope) error {
	var fields []dErrors.FieldError
	if strings.TrimSpace(env.EventType) == "" {
		fields = append(fields, dErrors.FieldError{Field: "eventType", Message: "must not be empty"})
	}
	if strings.TrimSpace(env.WorkspaceSlug) == "" {
		fields = append(fields, dErrors.FieldError{Field: "workspaceSlug", Message: "must not be empty"})
	}
	if len(fields) > 0 {
		return &intelligence.ValidationError{Fields: fields}
	}
	return nil
}

// Accept claims the envelope's idempotency key and publishes it. A replayed
// key yields a conflict; a publish failure releases the key.
func (s *Service) Accept(ctx context.Context, env *intelligence.EventEnvelope) error {
	if err := RequireRoutingFields(env); err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeRejected)
		return err
	}

	key := idempotencyKey(env)
	claimed, err := s.store.Claim(ctx, key, s.ttl)
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeUnavailable)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency store unavailable")
	}
	if !claimed {
		s.metrics.IncrementOutcome(metrics.OutcomeDuplicate)
		return dErrors.New(dErrors.CodeConflict, "event with this idempotency key was already accepted")
	}

	if err := s.publisher.Publish(ctx, env); err != nil {
		if relErr := s.release(ctx, key); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release idempotency key",
				"request_id", requestcontext.RequestID(ctx),
				"idempotency_key", env.Metadata.IdempotencyKey,
				"error", relErr,
			)
		}
		s.metrics.IncrementOutcome(metrics.OutcomeUnavailable)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "event could not be queued")
	}

	s.metrics.IncrementOutcome(metrics.OutcomeAccepted)
	return nil
}

// release frees a claimed key even when ctx was cancelled mid-publish, so the
// client's retry is not refused as a replay.
func (s *Service) release(ctx context.Context, key string) error {
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	return s.store.Release(relCtx, key)
}

// idempotencyKey scopes the caller's key to its workspace.
func idempotencyKey(env *intelligence.EventEnvelope) string {
	return env.WorkspaceSlug + ":" + env.Metadata.IdempotencyKey
}

// RecordRejected counts an envelope that failed validation before Accept.
func (s *Service) RecordRejected() {
	s.metrics.IncrementOutcome(metrics.OutcomeRejected)
}
