// Package intelligence turns validated sales-event envelopes into short
// advisory lists. Everything here is pure apart from metrics and tracing;
// no state survives a call.
package intelligence

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesintel/internal/intelligence/metrics"
	"salesintel/pkg/requestcontext"
)

// Service builds IntelligenceResults.
type Service struct {
	clock   func() time.Time
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for generatedAt.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:  time.Now,
		tracer: otel.Tracer("salesintel/intelligence"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Process derives the advisories for env. It cannot fail once env is valid.
// GeneratedAt is UTC and never earlier than the request's receipt time.
func (s *Service) Process(ctx context.Context, env *EventEnvelope) *IntelligenceResult {
	start := time.Now()
	_, span := s.tracer.Start(ctx, "intelligence.Process", trace.WithAttributes(
		attribute.String("event.id", env.EventID),
		attribute.String("event.type", env.EventType),
		attribute.String("workspace.slug", env.WorkspaceSlug),
	))
	defer span.End()

	outputs, fired := derive(RenderPayload(env.Payload))
	for _, rule := range fired {
		s.metrics.IncrementAdvisory(rule)
	}
	span.SetAttributes(attribute.StringSlice("advisory.rules", fired))

	generatedAt := s.clock().UTC()
	if received, ok := requestcontext.ReceivedAt(ctx); ok && generatedAt.Before(received) {
		generatedAt = received.UTC()
	}

	s.metrics.ObserveProcessLatency(time.Since(start))

	return &IntelligenceResult{
		EventID:       env.EventID,
		WorkspaceSlug: env.WorkspaceSlug,
		GeneratedAt:   generatedAt,
		Outputs:       outputs,
	}
}

// RecordRejected counts an envelope rejected before reaching Process.
func (s *Service) RecordRejected() {
	s.metrics.IncrementRejected()
}
