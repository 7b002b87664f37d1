package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salesintel/internal/intelligence"
	"salesintel/pkg/platform/httputil"
	"salesintel/pkg/requestcontext"
)

// Service defines the interface for ingest operations.
type Service interface {
	Accept(ctx context.Context, env *intelligence.EventEnvelope) error
	RecordRejected()
}

// AcceptedResponse is the body returned for an accepted event.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// Handler wires the ingestion endpoint to the ingest service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an ingest handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts ingest endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/events/ingest", h.HandleIngest)
}

// HandleIngest handles POST /v1/events/ingest requests.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
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
		h.logger.InfoContext(ctx, "event envelope rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Accept(ctx, env); err != nil {
		h.logger.WarnContext(ctx, "event not accepted",
			"request_id", requestID,
			"event_id", env.EventID,
			"workspace", env.WorkspaceSlug,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event accepted",
		"request_id", requestID,
		"event_id", env.EventID,
		"event_type", env.EventType,
		"source", env.Source,
		"workspace", env.WorkspaceSlug,
	)
	httputil.WriteJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}
