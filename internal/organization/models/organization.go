// Package models holds organizations and their contact persons.
package models

import (
	"strings"
	"time"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/validation"
)

// Organization is a legal entity, usually a municipality, that owns records.
// Registration identifiers are stored as given; only their length is checked.
type Organization struct {
	ID               id.OrganizationID `json:"id"`
	RSIN             id.RSIN           `json:"rsin"`
	KVK              string            `json:"kvk"`
	VAT              string            `json:"btw"`
	EORI             string            `json:"eori"`
	Name             string            `json:"naam"`
	Description      string            `json:"beschrijving"`
	Phone            string            `json:"telefoon"`
	Email            string            `json:"email"`
	OwnerApplication id.ApplicationID  `json:"eigenaar"`
	CreatedAt        time.Time         `json:"registratiedatum"`
	UpdatedAt        *time.Time        `json:"wijzigingsdatum,omitempty"`
}

func (o *Organization) String() string {
	return o.Name
}

// OrganizationInput is the writable part of an organization.
type OrganizationInput struct {
	RSIN        string `json:"rsin"`
	KVK         string `json:"kvk"`
	VAT         string `json:"btw"`
	EORI        string `json:"eori"`
	Name        string `json:"naam"`
	Description string `json:"beschrijving"`
	Phone       string `json:"telefoon"`
	Email       string `json:"email"`
}

func (in *OrganizationInput) Normalize() {
	in.RSIN = strings.TrimSpace(in.RSIN)
	in.KVK = strings.TrimSpace(in.KVK)
	in.VAT = strings.TrimSpace(in.VAT)
	in.EORI = strings.TrimSpace(in.EORI)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in *OrganizationInput) Validate() error {
	return validation.Schema{
		{Name: "rsin", Value: in.RSIN, Rules: []validation.Rule{
			validation.Required("Het RSIN is verplicht."),
			rsinRule,
		}},
		{Name: "kvk", Value: in.KVK, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 20, "", "Het KVK-nummer mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "btw", Value: in.VAT, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 32, "", "Het BTW-nummer mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "eori", Value: in.EORI, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 32, "", "Het EORI-nummer mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "naam", Value: in.Name, Rules: []validation.Rule{
			validation.Required("De naam is verplicht."),
			validation.Length(0, 255, "", "De naam mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "beschrijving", Value: in.Description, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 2000, "", "De beschrijving mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "telefoon", Value: in.Phone, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 32, "", "Het telefoonnummer mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "email", Value: in.Email, Optional: true, Rules: []validation.Rule{
			validation.Email(),
			validation.Length(0, 255, "", "Het e-mailadres mag maximaal {{ limit }} karakters lang zijn."),
		}},
	}.Validate()
}

var rsinRule = validation.RuleFunc(func(v string) *string {
	if _, err := id.ParseRSIN(v); err != nil {
		msg := err.Error()
		if e, ok := dErrors.As(err); ok {
			msg = e.Message
		}
		return &msg
	}
	return nil
})

// NewOrganization builds an organization from validated input.
func NewOrganization(orgID id.OrganizationID, in OrganizationInput, owner id.ApplicationID, now time.Time) (*Organization, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization id cannot be nil")
	}
	o := &Organization{ID: orgID, OwnerApplication: owner, CreatedAt: now}
	o.apply(in)
	return o, nil
}

// Replace overwrites every writable field. Owner and creation time are kept.
func (o *Organization) Replace(in OrganizationInput, now time.Time) {
	o.apply(in)
	o.UpdatedAt = &now
}

func (o *Organization) apply(in OrganizationInput) {
	o.RSIN = id.RSIN(in.RSIN)
	o.KVK = in.KVK
	o.VAT = in.VAT
	o.EORI = in.EORI
	o.Name = in.Name
	o.Description = in.Description
	o.Phone = in.Phone
	o.Email = in.Email
}

// Tracked returns the fields recorded in the change log.
func (o *Organization) Tracked() map[string]any {
	return map[string]any{
		"rsin":         o.RSIN,
		"kvk":          o.KVK,
		"btw":          o.VAT,
		"eori":         o.EORI,
		"naam":         o.Name,
		"beschrijving": o.Description,
		"telefoon":     o.Phone,
		"email":        o.Email,
	}
}

// OrganizationFilter narrows List results. NameOrder is "", "asc" or "desc".
type OrganizationFilter struct {
	RSIN      id.RSIN
	NameOrder string
}
