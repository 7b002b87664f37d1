package intelligence

import "time"

// EventEntity identifies the CRM record an event is about.
type EventEntity struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	ExternalID *string `json:"externalId,omitempty"`
}

// EventMetadata carries tracing and deduplication keys for an event.
type EventMetadata struct {
	CorrelationID  string  `json:"correlationId"`
	IdempotencyKey string  `json:"idempotencyKey"`
	ActorEmail     *string `json:"actorEmail,omitempty"`
}

// Payload is the schema-less body of an event. Leaves are the JSON value
// union: nil, bool, json.Number, string, []any and map[string]any.
type Payload map[string]any

// EventEnvelope is one validated sales event. It is never mutated after
// ParseEnvelope returns it.
type EventEnvelope struct {
	EventID       string        `json:"eventId"`
	EventType     string        `json:"eventType"`
	OccurredAt    time.Time     `json:"occurredAt"`
	Source        string        `json:"source"`
	WorkspaceSlug string        `json:"workspaceSlug"`
	Entity        EventEntity   `json:"entity"`
	Payload       Payload       `json:"payload"`
	Metadata      EventMetadata `json:"metadata"`
}

// IntelligenceResult is the advisory output for a single envelope.
type IntelligenceResult struct {
	EventID       string
	WorkspaceSlug string
	GeneratedAt   time.Time
	Outputs       []string
}
