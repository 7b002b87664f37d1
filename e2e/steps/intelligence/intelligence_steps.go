package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// EnvelopeFunc builds a valid envelope for an event ID, idempotency key and notes.
type EnvelopeFunc func(eventID, idempotencyKey, notes string) map[string]any

const processPath = "/v1/intelligence/process"

// RegisterSteps registers advisory derivation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext, envelope EnvelopeFunc) {
	steps := &intelligenceSteps{tc: tc, envelope: envelope}

	ctx.Step(`^an event whose notes say "([^"]*)"$`, steps.eventWithNotes)
	ctx.Step(`^the event has no "([^"]*)"$`, steps.eventWithout)
	ctx.Step(`^I submit the event for processing$`, steps.submit)
	ctx.Step(`^the advisories should be:$`, steps.advisoriesShouldBe)
	ctx.Step(`^generatedAt should be a UTC timestamp$`, steps.generatedAtIsUTC)
}

type intelligenceSteps struct {
	tc       TestContext
	envelope EnvelopeFunc
	body     map[string]any
}

func (s *intelligenceSteps) eventWithNotes(_ context.Context, notes string) error {
	s.body = s.envelope("evt_e2e", fmt.Sprintf("idem-%d", time.Now().UnixNano()), notes)
	return nil
}

func (s *intelligenceSteps) eventWithout(_ context.Context, field string) error {
	if s.body == nil {
		return fmt.Errorf("no event prepared")
	}
	delete(s.body, field)
	return nil
}

func (s *intelligenceSteps) submit(context.Context) error {
	return s.tc.POST(processPath, s.body)
}

func (s *intelligenceSteps) advisoriesShouldBe(_ context.Context, table *godog.Table) error {
	want := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		want = append(want, row.Cells[0].Value)
	}

	var resp struct {
		Outputs []string `json:"outputs"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !reflect.DeepEqual(resp.Outputs, want) {
		return fmt.Errorf("expected advisories %q, got %q", want, resp.Outputs)
	}
	return nil
}

func (s *intelligenceSteps) generatedAtIsUTC(context.Context) error {
	var resp struct {
		GeneratedAt string `json:"generatedAt"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, resp.GeneratedAt)
	if err != nil {
		return fmt.Errorf("generatedAt %q: %w", resp.GeneratedAt, err)
	}
	if _, offset := ts.Zone(); offset != 0 {
		return fmt.Errorf("generatedAt %q is not UTC", resp.GeneratedAt)
	}
	return nil
}
