package intelligence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"salesintel/internal/intelligence/schema"
	dErrors "salesintel/pkg/domain-errors"
)

var envelopeSchema = mustCompileEnvelopeSchema()

func mustCompileEnvelopeSchema() *jsonschema.Schema {
	s, err := schema.CompileEnvelope()
	if err != nil {
		panic(err)
	}
	return s
}

// ValidationError reports every field that kept an envelope from validating.
// It unwraps to a validation_error domain error so transports can render it
// without knowing about envelopes.
type ValidationError struct {
	Fields []dErrors.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid event envelope: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return dErrors.WithFields(dErrors.CodeValidation, "invalid event envelope", e.Fields)
}

// Has reports whether field was among the rejected fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: []dErrors.FieldError{{Field: field, Message: msg}}}
}

// ParseEnvelope converts a raw request body into a validated envelope.
// Any missing, mistyped or unparseable required field rejects the whole
// record; there is no partial acceptance.
func ParseEnvelope(raw []byte) (*EventEnvelope, error) {
	doc, err := decodeJSON(raw)
	if err != nil {
		return nil, invalid("body", err.Error())
	}

	if err := envelopeSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &ValidationError{Fields: fieldErrors(ve)}
		}
		return nil, invalid("body", err.Error())
	}

	return envelopeFromDocument(doc.(map[string]any))
}

// envelopeFromDocument builds the envelope from the document the schema just
// accepted, looking keys up exactly as written so the result is the record
// that was validated.
func envelopeFromDocument(doc map[string]any) (*EventEnvelope, error) {
	occurredAt, err := time.Parse(time.RFC3339Nano, stringField(doc, "occurredAt"))
	if err != nil {
		return nil, invalid("occurredAt", "must be an RFC 3339 date-time with offset")
	}

	entity, _ := doc["entity"].(map[string]any)
	metadata, _ := doc["metadata"].(map[string]any)
	payload, _ := doc["payload"].(map[string]any)

	return &EventEnvelope{
		EventID:       stringField(doc, "eventId"),
		EventType:     stringField(doc, "eventType"),
		OccurredAt:    occurredAt,
		Source:        stringField(doc, "source"),
		WorkspaceSlug: stringField(doc, "workspaceSlug"),
		Entity: EventEntity{
			Type:       stringField(entity, "type"),
			ID:         stringField(entity, "id"),
			ExternalID: optionalString(entity, "externalId"),
		},
		Payload: Payload(payload),
		Metadata: EventMetadata{
			CorrelationID:  stringField(metadata, "correlationId"),
			IdempotencyKey: stringField(metadata, "idempotencyKey"),
			ActorEmail:     optionalString(metadata, "actorEmail"),
		},
	}, nil
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// optionalString maps an absent or null value to nil.
func optionalString(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// decodeJSON parses exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("malformed JSON: unexpected data after top-level value")
	}
	return doc, nil
}

var quotedName = regexp.MustCompile(`'([^']+)'`)

// fieldErrors flattens a schema failure into one entry per offending field,
// addressed by dotted wire path (metadata.correlationId).
func fieldErrors(ve *jsonschema.ValidationError) []dErrors.FieldError {
	var out []dErrors.FieldError
	seen := make(map[string]bool)
	add := func(field, msg string) {
		if field == "" {
			field = "body"
		}
		if seen[field] {
			return
		}
		seen[field] = true
		out = append(out, dErrors.FieldError{Field: field, Message: msg})
	}

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		parent := dottedPath(e.InstanceLocation)
		if strings.HasSuffix(e.KeywordLocation, "/required") {
			names := quotedName.FindAllStringSubmatch(e.Message, -1)
			for _, m := range names {
				add(joinPath(parent, m[1]), "is required")
			}
			if len(names) > 0 {
				return
			}
		}
		add(parent, e.Message)
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// dottedPath turns a JSON pointer (/entity/id) into a dotted path (entity.id).
func dottedPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	segs := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, s := range segs {
		s = strings.ReplaceAll(s, "~1", "/")
		segs[i] = strings.ReplaceAll(s, "~0", "~")
	}
	return strings.Join(segs, ".")
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
