package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"salesintel/e2e/steps/ingest"
	"salesintel/e2e/steps/intelligence"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^I request the health check$`, func() error { return tc.GET("/healthz") })
	ctx.Step(`^the response status should be (\d+)$`, func(status int) error {
		if got := tc.GetLastResponseStatus(); got != status {
			return fmt.Errorf("expected status %d, got %d: %s", status, got, tc.GetLastResponseBody())
		}
		return nil
	})
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, func(_ context.Context, field, want string) error {
		v, err := tc.GetResponseField(field)
		if err != nil {
			return err
		}
		if fmt.Sprint(v) != want {
			return fmt.Errorf("field %q: expected %q, got %v", field, want, v)
		}
		return nil
	})

	intelligence.RegisterSteps(ctx, tc, Envelope)
	ingest.RegisterSteps(ctx, tc, Envelope)
}
