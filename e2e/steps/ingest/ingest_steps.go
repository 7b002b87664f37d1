package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
}

// EnvelopeFunc builds a valid envelope for an event ID, idempotency key and notes.
type EnvelopeFunc func(eventID, idempotencyKey, notes string) map[string]any

const ingestPath = "/v1/events/ingest"

// RegisterSteps registers ingestion gateway step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext, envelope EnvelopeFunc) {
	steps := &ingestSteps{tc: tc, envelope: envelope}

	ctx.Step(`^a fresh idempotency key$`, steps.freshKey)
	ctx.Step(`^I ingest an event with that key$`, steps.ingest)
	ctx.Step(`^I ingest an event with that key and an empty "([^"]*)"$`, steps.ingestWithEmpty)
}

type ingestSteps struct {
	tc       TestContext
	envelope EnvelopeFunc
	key      string
}

func (s *ingestSteps) freshKey(context.Context) error {
	s.key = fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	return nil
}

func (s *ingestSteps) ingest(context.Context) error {
	return s.tc.POST(ingestPath, s.envelope("evt_"+s.key, s.key, "security review pending"))
}

func (s *ingestSteps) ingestWithEmpty(_ context.Context, field string) error {
	body := s.envelope("evt_"+s.key, s.key, "security review pending")
	body[field] = ""
	return s.tc.POST(ingestPath, body)
}
