package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature files against a live server. Start one with
// `trouwen serve` and export E2E_BASE_URL and E2E_TOKEN (printed by
// `trouwen seed`).
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("E2E_BASE_URL")
	token := os.Getenv("E2E_TOKEN")
	if baseURL == "" || token == "" {
		t.Skip("E2E_BASE_URL and E2E_TOKEN are not set")
	}

	tc := NewTestContext(baseURL, token)
	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature tests failed")
	}
}
