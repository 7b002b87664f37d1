package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salesintel/internal/intelligence"
	"salesintel/pkg/platform/httputil"
	"salesintel/pkg/requestcontext"
)

// Service defines the interface for advisory processing.
type Service interface {
	Process(ctx context.Context, env *intelligence.EventEnvelope) *intelligence.IntelligenceResult
	RecordRejected()
}

// Handler wires the intelligence endpoint to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intelligence handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts intelligence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/intelligence/process", h.HandleProcess)
}

// HandleProcess handles POST /v1/intelligence/process requests.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, err := httputil.ReadBody(w, r)
	if err != nil {
		h.service.RecordRejected()
		httputil.WriteError(w, err)
		return
	}

	env, err := intelligence.ParseEnvelope(body)
	if err != nil {
		h.service.RecordRejected()
		attrs := []any{"request_id", requestID, "error", err}
		var ve *intelligence.ValidationError
		if errors.As(err, &ve) {
			attrs = append(attrs, "fields", len(ve.Fields))
		}
		h.logger.InfoContext(ctx, "event envelope rejected", attrs...)
		httputil.WriteError(w, err)
		return
	}

	result := h.service.Process(ctx, env)

	h.logger.InfoContext(ctx, "event processed",
		"request_id", requestID,
		"event_id", env.EventID,
		"event_type", env.EventType,
		"workspace", env.WorkspaceSlug,
		"correlation_id", env.Metadata.CorrelationID,
		"outputs", len(result.Outputs),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
