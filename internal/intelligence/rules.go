package intelligence

import "strings"

// Advisory texts returned to callers. They are part of the wire contract.
const (
	AdvisoryBudgetRisk     = "Risk: budget alignment may block close."
	AdvisorySecurityPacket = "Action: attach security/legal packet in next follow-up."
	AdvisoryFallback       = "Action: confirm owners + dates for next-step plan."
)

// advisoryRule fires when any keyword is a substring of the rendered payload.
type advisoryRule struct {
	name     string
	keywords []string
	advisory string
}

// advisoryRules are evaluated in order; output order follows rule order.
var advisoryRules = []advisoryRule{
	{name: "budget_risk", keywords: []string{"budget", "pricing"}, advisory: AdvisoryBudgetRisk},
	{name: "security_packet", keywords: []string{"security", "legal"}, advisory: AdvisorySecurityPacket},
}

// fallbackRuleName labels the fallback advisory in metrics.
const fallbackRuleName = "fallback"

// DeriveAdvisories maps a payload to its ordered advisories. It is pure and
// total: the result always holds at least one entry.
//
// Matching is plain substring containment on RenderPayload output, so a
// keyword inside an unrelated value (budget@acme.test) still triggers a rule.
func DeriveAdvisories(p Payload) []string {
	outputs, _ := derive(RenderPayload(p))
	return outputs
}

// derive returns the advisories and the names of the rules that produced them.
func derive(text string) ([]string, []string) {
	var outputs, fired []string
	for _, rule := range advisoryRules {
		if containsAny(text, rule.keywords) {
			outputs = append(outputs, rule.advisory)
			fired = append(fired, rule.name)
		}
	}
	if len(outputs) == 0 {
		outputs = append(outputs, AdvisoryFallback)
		fired = append(fired, fallbackRuleName)
	}
	return outputs, fired
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
