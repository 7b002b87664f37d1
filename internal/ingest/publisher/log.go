// Package publisher holds the Publisher implementations used by the
// ingestion gateway.
package publisher

import (
	"context"
	"log/slog"

	"salesintel/internal/intelligence"
	"salesintel/pkg/requestcontext"
)

// LogPublisher records accepted envelopes as structured log lines. It is the
// default when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLog constructs a LogPublisher.
func NewLog(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the envelope's routing fields. It never fails.
func (p *LogPublisher) Publish(ctx context.Context, env *intelligence.EventEnvelope) error {
	p.logger.InfoContext(ctx, "event ingested",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", env.EventID,
		"event_type", env.EventType,
		"source", env.Source,
		"workspace", env.WorkspaceSlug,
	)
	return nil
}
