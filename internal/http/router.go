// Package httpapi assembles the public HTTP surface of the service.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"salesintel/internal/health"
	ingestHandler "salesintel/internal/ingest/handler"
	intelligenceHandler "salesintel/internal/intelligence/handler"
	"salesintel/internal/platform/metrics"
	"salesintel/internal/platform/middleware"
	"salesintel/pkg/platform/middleware/metadata"
	"salesintel/pkg/platform/middleware/requestid"
	"salesintel/pkg/platform/middleware/requesttime"
)

// Deps are the collaborators mounted by NewRouter. IngestLimiter may be nil.
type Deps struct {
	ServiceName   string
	Intelligence  intelligenceHandler.Service
	Ingest        ingestHandler.Service
	IngestLimiter *rate.Limiter
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// NewRouter wires middleware and every public endpoint.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	health.New(d.ServiceName).Register(r)
	intelligenceHandler.New(d.Intelligence, d.Logger).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.IngestLimiter, d.Logger))
		ingestHandler.New(d.Ingest, d.Logger).Register(r)
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	return r
}
