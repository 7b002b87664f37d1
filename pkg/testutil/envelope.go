package testutil

// ValidEnvelope returns a fresh, fully populated event envelope document.
// Callers mutate the returned maps to build invalid variants.
func ValidEnvelope() map[string]any {
	return map[string]any{
		"eventId":       "evt_123",
		"eventType":     "meeting.completed",
		"occurredAt":    "2024-03-05T14:30:00+02:00",
		"source":        "calendar",
		"workspaceSlug": "acme",
		"entity": map[string]any{
			"type":       "deal",
			"id":         "deal_9",
			"externalId": "hs-991",
		},
		"payload": map[string]any{
			"notes":     "great call",
			"attendees": []any{"ana@acme.test", 3, true, nil},
		},
		"metadata": map[string]any{
			"correlationId":  "corr-1",
			"idempotencyKey": "idem-1",
			"actorEmail":     "rep@acme.test",
		},
	}
}

// EnvelopeWithPayload returns ValidEnvelope with its payload replaced.
func EnvelopeWithPayload(payload map[string]any) map[string]any {
	env := ValidEnvelope()
	env["payload"] = payload
	return env
}

// EnvelopeWithout returns ValidEnvelope with a top-level or nested
// ("metadata.correlationId") field removed.
func EnvelopeWithout(field string) map[string]any {
	env := ValidEnvelope()
	for _, parent := range []string{"entity", "metadata"} {
		prefix := parent + "."
		if len(field) > len(prefix) && field[:len(prefix)] == prefix {
			delete(env[parent].(map[string]any), field[len(prefix):])
			return env
		}
	}
	delete(env, field)
	return env
}
