package e2e

import (
	"github.com/cucumber/godog"

	"trouwen/e2e/steps/catalog"
	"trouwen/e2e/steps/common"
	"trouwen/e2e/steps/officiant"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Officiant assignment and invitation tokens
	officiant.RegisterSteps(ctx, tc)

	// Marriage-type catalog history
	catalog.RegisterSteps(ctx, tc)
}
