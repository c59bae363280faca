// Package models holds officiant assignments: a person assigned to conduct,
// usher or handle a marriage.
package models

import (
	"strings"
	"time"

	tokenmodels "trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/validation"
)

// ObjectType names officiants in tokens and the change log.
const ObjectType = "officiant"

// DefaultStatus is the status of a freshly invited officiant.
const DefaultStatus = "Uitgenodigd"

// Role is the part an officiant plays at the ceremony.
type Role string

const (
	RoleOfficiant Role = "officiant"
	RoleUsher     Role = "usher"
	RoleHandler   Role = "handler"
)

var roleAliases = map[string]Role{
	"officiant":      RoleOfficiant,
	"trouwambtenaar": RoleOfficiant,
	"usher":          RoleUsher,
	"bode":           RoleUsher,
	"handler":        RoleHandler,
	"behandelaar":    RoleHandler,
}

// ParseRole accepts the English role names and their Dutch equivalents.
// An empty value yields RoleOfficiant.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleOfficiant, nil
	}
	r, ok := roleAliases[s]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "De rol moet officiant, usher of handler zijn.")
	}
	return r, nil
}

// Officiant assigns a person to a marriage.
//
// Invariants:
//   - Role is one of officiant, usher, handler
//   - at most one officiant per marriage is Primary (enforced by the store)
//   - SourceOrganization and OwnerApplication come from the caller
type Officiant struct {
	ID                 id.OfficiantID   `json:"id"`
	SourceOrganization id.RSIN          `json:"bronOrganisatie"`
	Marriage           id.MarriageID    `json:"huwelijk"`
	Primary            bool             `json:"primair"`
	Consent            string           `json:"instemming"`
	Status             string           `json:"status"`
	OfficiantRef       string           `json:"ambtenaar"`
	Role               Role             `json:"rol"`
	ContactPerson      string           `json:"contactPersoon"`
	OwnerApplication   id.ApplicationID `json:"eigenaar"`
	CreatedAt          time.Time        `json:"registratiedatum"`
	UpdatedAt          *time.Time       `json:"wijzigingsdatum,omitempty"`
}

// String renders the officiant as the reference it links to.
func (o *Officiant) String() string {
	return o.OfficiantRef
}

type Input struct {
	Marriage      string `json:"huwelijk"`
	Primary       bool   `json:"primair"`
	Consent       string `json:"instemming"`
	Status        string `json:"status"`
	OfficiantRef  string `json:"ambtenaar"`
	Role          string `json:"rol"`
	ContactPerson string `json:"contactPersoon"`
}

func (in *Input) Normalize() {
	in.Marriage = strings.TrimSpace(in.Marriage)
	in.Consent = strings.TrimSpace(in.Consent)
	in.Status = strings.TrimSpace(in.Status)
	in.OfficiantRef = strings.TrimSpace(in.OfficiantRef)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Status == "" {
		in.Status = DefaultStatus
	}
}

func (in *Input) Validate() error {
	return validation.Schema{
		{Name: "huwelijk", Value: in.Marriage, Optional: true, Rules: []validation.Rule{uuidRule}},
		{Name: "rol", Value: in.Role, Optional: true, Rules: []validation.Rule{
			validation.Choice("officiant", "usher", "handler", "trouwambtenaar", "bode", "behandelaar"),
		}},
		{Name: "instemming", Value: in.Consent, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "De instemming mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "ambtenaar", Value: in.OfficiantRef, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "De ambtenaar mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "contactPersoon", Value: in.ContactPerson, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "Het contactpersoon mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "status", Value: in.Status, Rules: []validation.Rule{
			validation.Length(0, 255, "", "De status mag maximaal {{ limit }} karakters lang zijn."),
		}},
	}.Validate()
}

var uuidRule = validation.RuleFunc(func(v string) *string {
	if _, err := id.ParseMarriageID(v); err != nil {
		msg := "Deze waarde is geen geldige verwijzing."
		return &msg
	}
	return nil
})

// NewOfficiant builds an officiant owned by the calling application.
func NewOfficiant(officiantID id.OfficiantID, in Input, rsin id.RSIN, owner id.ApplicationID, now time.Time) (*Officiant, error) {
	if officiantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "officiant id cannot be nil")
	}
	o := &Officiant{
		ID:                 officiantID,
		SourceOrganization: rsin,
		OwnerApplication:   owner,
		CreatedAt:          now,
	}
	if err := o.apply(in); err != nil {
		return nil, err
	}
	return o, nil
}

// Replace overwrites the writable fields.
func (o *Officiant) Replace(in Input, now time.Time) error {
	if err := o.apply(in); err != nil {
		return err
	}
	o.UpdatedAt = &now
	return nil
}

func (o *Officiant) apply(in Input) error {
	role, err := ParseRole(in.Role)
	if err != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	var marriage id.MarriageID
	if in.Marriage != "" {
		marriage, err = id.ParseMarriageID(in.Marriage)
		if err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "invalid marriage reference")
		}
	}
	if in.Primary && marriage.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "a primary officiant must belong to a marriage")
	}
	o.Marriage = marriage
	o.Primary = in.Primary
	o.Consent = in.Consent
	o.Status = in.Status
	if o.Status == "" {
		o.Status = DefaultStatus
	}
	o.OfficiantRef = in.OfficiantRef
	o.Role = role
	o.ContactPerson = in.ContactPerson
	return nil
}

// Tracked returns the fields recorded in the change log.
func (o *Officiant) Tracked() map[string]any {
	return map[string]any{
		"ambtenaar":      o.OfficiantRef,
		"contactPersoon": o.ContactPerson,
	}
}

// OfficiantCreated is raised once a new officiant is stored.
type OfficiantCreated struct {
	OfficiantID   id.OfficiantID
	ContactPerson string
}

// Created is a new officiant with the invitation issued for it. The
// invitation code is only shown in this response.
type Created struct {
	*Officiant
	Invitation *tokenmodels.Issued `json:"uitnodiging,omitempty"`
}

// Filter narrows List results.
type Filter struct {
	Marriage           id.MarriageID
	SourceOrganization id.RSIN
	CreatedOrder       string
}
