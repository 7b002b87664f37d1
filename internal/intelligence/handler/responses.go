package handler

import (
	"time"

	"salesintel/internal/intelligence"
)

// ProcessResponse is the HTTP response for POST /v1/intelligence/process.
type ProcessResponse struct {
	EventID       string    `json:"eventId"`
	WorkspaceSlug string    `json:"workspaceSlug"`
	GeneratedAt   time.Time `json:"generatedAt"`
	Outputs       []string  `json:"outputs"`
}

// FromResult converts a domain IntelligenceResult to an HTTP response.
func FromResult(result *intelligence.IntelligenceResult) *ProcessResponse {
	return &ProcessResponse{
		EventID:       result.EventID,
		WorkspaceSlug: result.WorkspaceSlug,
		GeneratedAt:   result.GeneratedAt,
		Outputs:       result.Outputs,
	}
}
