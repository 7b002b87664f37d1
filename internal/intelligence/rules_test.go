package intelligence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAdvisories(t *testing.T) {
	tests := []struct {
		name     string
		payload  Payload
		expected []string
	}{
		{
			name:     "budget in uppercase",
			payload:  Payload{"notes": "client flagged BUDGET concerns"},
			expected: []string{AdvisoryBudgetRisk},
		},
		{
			name:     "legal review",
			payload:  Payload{"notes": "needs legal review"},
			expected: []string{AdvisorySecurityPacket},
		},
		{
			name:     "pricing and security keep rule order",
			payload:  Payload{"notes": "pricing and security both raised"},
			expected: []string{AdvisoryBudgetRisk, AdvisorySecurityPacket},
		},
		{
			name:     "no keywords falls back",
			payload:  Payload{"notes": "great call, no blockers"},
			expected: []string{AdvisoryFallback},
		},
		{
			name:     "empty payload falls back",
			payload:  Payload{},
			expected: []string{AdvisoryFallback},
		},
		{
			name:     "nil payload falls back",
			payload:  nil,
			expected: []string{AdvisoryFallback},
		},
		{
			name:     "keyword inside unrelated value still matches",
			payload:  Payload{"attendee": "budget.office@acme.test"},
			expected: []string{AdvisoryBudgetRisk},
		},
		{
			name:     "keyword in key name matches",
			payload:  Payload{"securityReview": true},
			expected: []string{AdvisorySecurityPacket},
		},
		{
			name: "nested values are searched",
			payload: Payload{
				"stakeholders": []any{
					map[string]any{"role": "Legal Counsel"},
				},
				"amount": json.Number("125000"),
			},
			expected: []string{AdvisorySecurityPacket},
		},
		{
			name:     "both keywords of one rule emit once",
			payload:  Payload{"a": "budget", "b": "pricing"},
			expected: []string{AdvisoryBudgetRisk},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveAdvisories(tt.payload))
		})
	}
}

func TestDeriveReportsFiredRules(t *testing.T) {
	_, fired := derive(RenderPayload(Payload{"notes": "pricing + security"}))
	assert.Equal(t, []string{"budget_risk", "security_packet"}, fired)

	_, fired = derive(RenderPayload(Payload{"notes": "ok"}))
	assert.Equal(t, []string{fallbackRuleName}, fired)
}
