package models

import (
	"strings"
	"time"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/validation"
)

// Person is a contact person of an organization.
//
// Invariants:
//   - RegisteredAt is set once, at creation
//   - Organization refers to an existing organization
type Person struct {
	ID               id.PersonID       `json:"id"`
	Organization     id.OrganizationID `json:"bronOrganisatie"`
	GivenNames       string            `json:"voornamen"`
	FamilyName       string            `json:"geslachtsnaam"`
	Email            string            `json:"emailadres"`
	Phone            string            `json:"telefoonnummer"`
	Language         string            `json:"taal"`
	RegisteredAt     time.Time         `json:"registratieDatum"`
	OwnerApplication id.ApplicationID  `json:"eigenaar"`
	UpdatedAt        *time.Time        `json:"wijzigingsdatum,omitempty"`
}

func (p *Person) String() string {
	return strings.TrimSpace(p.GivenNames + " " + p.FamilyName)
}

type PersonInput struct {
	Organization string `json:"bronOrganisatie"`
	GivenNames   string `json:"voornamen"`
	FamilyName   string `json:"geslachtsnaam"`
	Email        string `json:"emailadres"`
	Phone        string `json:"telefoonnummer"`
	Language     string `json:"taal"`
}

func (in *PersonInput) Normalize() {
	in.Organization = strings.TrimSpace(in.Organization)
	in.GivenNames = strings.TrimSpace(in.GivenNames)
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Language = strings.TrimSpace(in.Language)
	if in.Language == "" {
		in.Language = id.DefaultLanguage
	}
}

func (in *PersonInput) Validate() error {
	return validation.Schema{
		{Name: "bronOrganisatie", Value: in.Organization, Rules: []validation.Rule{
			validation.Required("De bronorganisatie is verplicht."),
		}},
		{Name: "voornamen", Value: in.GivenNames, Rules: []validation.Rule{
			validation.Required("De voornamen zijn verplicht."),
			validation.Length(0, 255, "", "De voornamen mogen maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "geslachtsnaam", Value: in.FamilyName, Rules: []validation.Rule{
			validation.Required("De geslachtsnaam is verplicht."),
			validation.Length(0, 255, "", "De geslachtsnaam mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "emailadres", Value: in.Email, Optional: true, Rules: []validation.Rule{
			validation.Email(),
			validation.Length(0, 255, "", "Het e-mailadres mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "telefoonnummer", Value: in.Phone, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 32, "", "Het telefoonnummer mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "taal", Value: in.Language, Rules: []validation.Rule{
			validation.Length(2, 17, "De taal moet minimaal {{ limit }} karakters lang zijn.", "De taal mag maximaal {{ limit }} karakters lang zijn."),
			validation.Language(),
		}},
	}.Validate()
}

// NewPerson builds a person from validated input, registered at now.
func NewPerson(personID id.PersonID, org id.OrganizationID, in PersonInput, owner id.ApplicationID, now time.Time) (*Person, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person id cannot be nil")
	}
	if org.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person must belong to an organization")
	}
	p := &Person{ID: personID, Organization: org, OwnerApplication: owner, RegisteredAt: now}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace overwrites the writable fields. RegisteredAt never changes.
func (p *Person) Replace(org id.OrganizationID, in PersonInput, now time.Time) error {
	if org.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "person must belong to an organization")
	}
	if err := p.apply(in); err != nil {
		return err
	}
	p.Organization = org
	p.UpdatedAt = &now
	return nil
}

func (p *Person) apply(in PersonInput) error {
	lang, err := id.NormalizeLanguage(in.Language)
	if err != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	p.GivenNames = in.GivenNames
	p.FamilyName = in.FamilyName
	p.Email = in.Email
	p.Phone = in.Phone
	p.Language = lang
	return nil
}

func (p *Person) Tracked() map[string]any {
	return map[string]any{
		"bronOrganisatie": p.Organization,
		"voornamen":       p.GivenNames,
		"geslachtsnaam":   p.FamilyName,
		"emailadres":      p.Email,
		"telefoonnummer":  p.Phone,
		"taal":            p.Language,
	}
}

// PersonFilter narrows List results.
type PersonFilter struct {
	Organization id.OrganizationID
	Email        string
}
