// Package health reports process liveness.
package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"salesintel/pkg/platform/httputil"
)

// Response is the fixed liveness record.
type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Handler serves GET /healthz.
type Handler struct {
	service string
}

// New constructs a health handler reporting the given service name.
func New(service string) *Handler {
	return &Handler{service: service}
}

// Register mounts the health endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
}

// HandleHealth always answers 200 with {"status":"ok","service":...}.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok", Service: h.service})
}
