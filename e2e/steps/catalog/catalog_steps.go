package catalog

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/gofrs/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	PUT(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	Save(name, value string)
	Resolve(s string) string
}

// RegisterSteps registers marriage-type catalog step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &catalogSteps{tc: tc}

	ctx.Step(`^I create a marriage type named "([^"]*)"$`, steps.createType)
	ctx.Step(`^I rename the marriage type to "([^"]*)"$`, steps.renameType)
	ctx.Step(`^I revert the marriage type to version "([^"]*)"$`, steps.revertType)
}

type catalogSteps struct {
	tc         TestContext
	identifier string
}

func (s *catalogSteps) body(name string) map[string]interface{} {
	return map[string]interface{}{
		"identificatie": s.identifier,
		"naam":          name,
		"samenvatting":  "Een ceremonie in de raadszaal van het stadhuis",
		"beschrijving":  "Een ceremonie in de raadszaal van het stadhuis met ruimte voor gasten",
	}
}

func (s *catalogSteps) createType(ctx context.Context, name string) error {
	u, err := uuid.NewV4()
	if err != nil {
		return err
	}
	s.identifier = "e2e-" + u.String()[:8]
	if err := s.tc.POST("/types", s.body(name)); err != nil {
		return err
	}
	typeID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save("type", fmt.Sprint(typeID))
	return nil
}

func (s *catalogSteps) renameType(ctx context.Context, name string) error {
	return s.tc.PUT("/types/{type}", s.body(name))
}

func (s *catalogSteps) revertType(ctx context.Context, version string) error {
	return s.tc.POST("/types/{type}/revert/"+version, nil)
}
