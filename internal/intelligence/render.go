package intelligence

import (
	"encoding/json"
	"strings"

	"github.com/gowebpki/jcs"
)

// RenderPayload produces the lowercase text the advisory rules search.
//
// The rendering is the RFC 8785 canonical JSON form of the payload: keys are
// sorted, whitespace removed and both keys and values appear in the text.
// Payloads jcs cannot canonicalize (numbers outside float64 range) fall back
// to encoding/json output, which also sorts map keys.
func RenderPayload(p Payload) string {
	if p == nil {
		p = Payload{}
	}
	raw, err := json.Marshal(map[string]any(p))
	if err != nil {
		return ""
	}
	if canonical, err := jcs.Transform(raw); err == nil {
		raw = canonical
	}
	return strings.ToLower(string(raw))
}
