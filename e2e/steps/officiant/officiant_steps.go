package officiant

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/gofrs/uuid"
)

const contactPerson = "http://trouwen.demo.zaakonline.nl/personen/john"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	Save(name, value string)
	Resolve(s string) string
}

// RegisterSteps registers officiant and invitation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &officiantSteps{tc: tc}

	ctx.Step(`^a new marriage$`, steps.newMarriage)
	ctx.Step(`^I assign a primary officiant to the marriage$`, steps.assignPrimary)
	ctx.Step(`^I assign an officiant with role "([^"]*)" to the marriage$`, steps.assignWithRole)
	ctx.Step(`^I save the invitation$`, steps.saveInvitation)
	ctx.Step(`^I redeem the invitation$`, steps.redeemInvitation)
	ctx.Step(`^I redeem the invitation with code "([^"]*)"$`, steps.redeemInvitationWithCode)
}

type officiantSteps struct {
	tc TestContext
}

func (s *officiantSteps) newMarriage(ctx context.Context) error {
	marriage, err := uuid.NewV4()
	if err != nil {
		return err
	}
	s.tc.Save("marriage", marriage.String())
	return nil
}

func (s *officiantSteps) assignPrimary(ctx context.Context) error {
	return s.tc.POST("/huwelijk-ambtenaren", map[string]interface{}{
		"huwelijk":       s.tc.Resolve("{marriage}"),
		"primair":        true,
		"contactPersoon": contactPerson,
	})
}

func (s *officiantSteps) assignWithRole(ctx context.Context, role string) error {
	return s.tc.POST("/huwelijk-ambtenaren", map[string]interface{}{
		"huwelijk":       s.tc.Resolve("{marriage}"),
		"rol":            role,
		"contactPersoon": contactPerson,
	})
}

func (s *officiantSteps) saveInvitation(ctx context.Context) error {
	for field, name := range map[string]string{
		"id":                   "officiant",
		"uitnodiging.token.id": "token",
		"uitnodiging.code":     "code",
	} {
		v, err := s.tc.GetResponseField(field)
		if err != nil {
			return err
		}
		str, ok := v.(string)
		if !ok || str == "" {
			return fmt.Errorf("field %q is empty", field)
		}
		s.tc.Save(name, str)
	}
	return nil
}

func (s *officiantSteps) redeemInvitation(ctx context.Context) error {
	return s.redeemInvitationWithCode(ctx, "{code}")
}

func (s *officiantSteps) redeemInvitationWithCode(ctx context.Context, code string) error {
	return s.tc.POST("/tokens/{token}/inwisselen", map[string]interface{}{
		"code": s.tc.Resolve(code),
	})
}
