// Package e2e drives a running intelligence worker over HTTP with godog
// scenarios. Set E2E_BASE_URL to enable the suite.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext holds per-scenario HTTP state shared by all step packages.
type TestContext struct {
	BaseURL    string
	HTTPClient *http.Client

	lastStatus int
	lastBody   []byte
}

// NewTestContext builds a context targeting baseURL.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// POST sends body as JSON.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET issues a GET request.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	return nil
}

// GetLastResponseStatus returns the status of the previous request.
func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

// GetLastResponseBody returns the raw body of the previous request.
func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField decodes the previous body and returns a top-level field.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc map[string]any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	v, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response %s", field, tc.lastBody)
	}
	return v, nil
}

// Envelope returns a valid event envelope with the given notes, event ID and
// idempotency key.
func Envelope(eventID, idempotencyKey, notes string) map[string]any {
	return map[string]any{
		"eventId":       eventID,
		"eventType":     "call.completed",
		"occurredAt":    "2024-03-05T14:30:00+02:00",
		"source":        "gong",
		"workspaceSlug": "acme",
		"entity":        map[string]any{"type": "deal", "id": "deal-42"},
		"payload":       map[string]any{"notes": notes},
		"metadata": map[string]any{
			"correlationId":  "corr-" + eventID,
			"idempotencyKey": idempotencyKey,
		},
	}
}
