// Package schema embeds the JSON Schema that every inbound event envelope
// must satisfy.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed envelope.schema.json
var envelopeSchema []byte

// EnvelopeURL is the resource name the envelope schema is compiled under.
const EnvelopeURL = "https://salesintel.local/schemas/event-envelope.schema.json"

// CompileEnvelope compiles the embedded envelope schema with format
// assertions enabled so date-time values are checked, not just annotated.
func CompileEnvelope() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	if err := c.AddResource(EnvelopeURL, bytes.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("envelope schema load failed: %w", err)
	}
	compiled, err := c.Compile(EnvelopeURL)
	if err != nil {
		return nil, fmt.Errorf("envelope schema compile failed: %w", err)
	}
	return compiled, nil
}
