// Package fixtures seeds a fresh installation with the demo municipality,
// its contact person and an application to call the API with.
package fixtures

import (
	"context"
	"log/slog"

	appmodels "trouwen/internal/application/models"
	orgmodels "trouwen/internal/organization/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/requestcontext"
)

const (
	DevClientID = "trouwen-dev"
	DevRSIN     = "0022.20.647"
)

// Organization is the seeded municipality.
var Organization = orgmodels.OrganizationInput{
	RSIN:        DevRSIN,
	KVK:         "30280353",
	VAT:         "NL 0022.20.647.B01",
	EORI:        "NL 0022.20.647",
	Name:        "Gemeente Zuiddrecht",
	Description: "Gelegen in het prachtige zuidelijke deel van de provincie Drecht",
}

// Person is the seeded contact person; Organization is filled in at load time.
var Person = orgmodels.PersonInput{
	GivenNames: "John",
	FamilyName: "Doh",
	Email:      "john@do.com",
	Phone:      "0645536677",
	Language:   "nl",
}

type Applications interface {
	Register(ctx context.Context, clientID, name string, rsin id.RSIN) (*appmodels.Application, string, error)
	FindByClientID(ctx context.Context, clientID string) (*appmodels.Application, error)
}

type Organizations interface {
	CreateOrganization(ctx context.Context, in orgmodels.OrganizationInput) (*orgmodels.Organization, error)
	FindOrganizationByRSIN(ctx context.Context, rsin id.RSIN) (*orgmodels.Organization, error)
	CreatePerson(ctx context.Context, in orgmodels.PersonInput) (*orgmodels.Person, error)
	ListPersons(ctx context.Context, filter orgmodels.PersonFilter) ([]*orgmodels.Person, error)
}

// Result holds the seeded records, whether they were created by this run or
// found from an earlier one.
type Result struct {
	Application  *appmodels.Application
	Organization *orgmodels.Organization
	Person       *orgmodels.Person
}

type Loader struct {
	apps   Applications
	orgs   Organizations
	logger *slog.Logger
}

func NewLoader(apps Applications, orgs Organizations, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{apps: apps, orgs: orgs, logger: logger}
}

// Load creates whatever part of the fixture set is missing. Running it twice
// leaves exactly one application, organization and person.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	app, err := l.application(ctx)
	if err != nil {
		return nil, err
	}
	ctx = requestcontext.WithApplication(ctx, requestcontext.Caller{
		ApplicationID: app.ID,
		ClientID:      app.ClientID,
		RSIN:          app.RSIN,
	})

	org, err := l.organization(ctx)
	if err != nil {
		return nil, err
	}
	person, err := l.person(ctx, org)
	if err != nil {
		return nil, err
	}
	return &Result{Application: app, Organization: org, Person: person}, nil
}

func (l *Loader) application(ctx context.Context) (*appmodels.Application, error) {
	app, err := l.apps.FindByClientID(ctx, DevClientID)
	if err == nil {
		return app, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	app, _, err = l.apps.Register(ctx, DevClientID, "Trouwen ontwikkelomgeving", DevRSIN)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "fixture application created", "client_id", app.ClientID)
	return app, nil
}

func (l *Loader) organization(ctx context.Context) (*orgmodels.Organization, error) {
	org, err := l.orgs.FindOrganizationByRSIN(ctx, DevRSIN)
	if err == nil {
		return org, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	org, err = l.orgs.CreateOrganization(ctx, Organization)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "fixture organization created", "organization_id", org.ID.String())
	return org, nil
}

func (l *Loader) person(ctx context.Context, org *orgmodels.Organization) (*orgmodels.Person, error) {
	existing, err := l.orgs.ListPersons(ctx, orgmodels.PersonFilter{Organization: org.ID, Email: Person.Email})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	in := Person
	in.Organization = org.ID.String()
	p, err := l.orgs.CreatePerson(ctx, in)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "fixture person created", "person_id", p.ID.String())
	return p, nil
}
