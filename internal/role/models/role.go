// Package models holds participant roles on a marriage. Roles form a tree: a
// witness role may point at the partner role it witnesses for.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/validation"
)

// ObjectType names roles in the change log.
const ObjectType = "role"

const DefaultStatus = "uitgenodigd"

// MaxDepth bounds how many levels of child roles are rendered.
const MaxDepth = 3

type Kind string

const (
	KindPartner   Kind = "partner"
	KindWitness   Kind = "witness"
	KindOfficiant Kind = "officiant"
)

var kindAliases = map[string]Kind{
	"partner":   KindPartner,
	"witness":   KindWitness,
	"getuige":   KindWitness,
	"officiant": KindOfficiant,
	"ambtenaar": KindOfficiant,
}

// ParseKind accepts the English kind names and their Dutch equivalents. An
// empty value yields KindWitness.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindWitness, nil
	}
	k, ok := kindAliases[s]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "De soort moet partner, witness of officiant zijn.")
	}
	return k, nil
}

// Role is one participant's part in a marriage.
//
// Invariants:
//   - Kind is one of partner, witness, officiant
//   - Parent, when set, is another role of the same marriage and never the
//     role itself or one of its descendants (checked by the service)
type Role struct {
	ID                 id.RoleID        `json:"id"`
	SourceOrganization id.RSIN          `json:"bronOrganisatie"`
	Consent            string           `json:"instemming"`
	Kind               Kind             `json:"soort"`
	Status             string           `json:"status"`
	Marriage           id.MarriageID    `json:"huwelijk"`
	Parent             id.RoleID        `json:"rol"`
	Holder             string           `json:"houder"`
	OwnerApplication   id.ApplicationID `json:"eigenaar"`
	CreatedAt          time.Time        `json:"registratiedatum"`
	UpdatedAt          *time.Time       `json:"wijzigingsdatum,omitempty"`
}

func (r *Role) String() string {
	return "Role: " + r.ID.String()
}

func (r *Role) HasParent() bool {
	return !r.Parent.IsNil()
}

type Input struct {
	Consent  string `json:"instemming"`
	Kind     string `json:"soort"`
	Status   string `json:"status"`
	Marriage string `json:"huwelijk"`
	Parent   string `json:"rol"`
	Holder   string `json:"houder"`
}

func (in *Input) Normalize() {
	in.Consent = strings.TrimSpace(in.Consent)
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.Status = strings.TrimSpace(in.Status)
	in.Marriage = strings.TrimSpace(in.Marriage)
	in.Parent = strings.TrimSpace(in.Parent)
	in.Holder = strings.TrimSpace(in.Holder)
	if in.Status == "" {
		in.Status = DefaultStatus
	}
}

func (in *Input) Validate() error {
	return validation.Schema{
		{Name: "soort", Value: in.Kind, Optional: true, Rules: []validation.Rule{
			validation.Choice("partner", "witness", "officiant", "getuige", "ambtenaar"),
		}},
		{Name: "huwelijk", Value: in.Marriage, Optional: true, Rules: []validation.Rule{reference}},
		{Name: "rol", Value: in.Parent, Optional: true, Rules: []validation.Rule{reference}},
		{Name: "instemming", Value: in.Consent, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "De instemming mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "houder", Value: in.Holder, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "De houder mag maximaal {{ limit }} karakters lang zijn."),
		}},
		{Name: "status", Value: in.Status, Rules: []validation.Rule{
			validation.Length(0, 255, "", "De status mag maximaal {{ limit }} karakters lang zijn."),
		}},
	}.Validate()
}

var reference = validation.RuleFunc(func(v string) *string {
	if u, err := uuid.Parse(v); err != nil || u == uuid.Nil {
		msg := "Deze waarde is geen geldige verwijzing."
		return &msg
	}
	return nil
})

func NewRole(roleID id.RoleID, in Input, rsin id.RSIN, owner id.ApplicationID, now time.Time) (*Role, error) {
	if roleID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role id cannot be nil")
	}
	r := &Role{
		ID:                 roleID,
		SourceOrganization: rsin,
		OwnerApplication:   owner,
		CreatedAt:          now,
	}
	if err := r.apply(in); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Role) Replace(in Input, now time.Time) error {
	if err := r.apply(in); err != nil {
		return err
	}
	r.UpdatedAt = &now
	return nil
}

func (r *Role) apply(in Input) error {
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	var marriage id.MarriageID
	if in.Marriage != "" {
		if marriage, err = id.ParseMarriageID(in.Marriage); err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "invalid marriage reference")
		}
	}
	var parent id.RoleID
	if in.Parent != "" {
		if parent, err = id.ParseRoleID(in.Parent); err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "invalid parent role reference")
		}
	}
	if parent == r.ID {
		return dErrors.New(dErrors.CodeInvariantViolation, "a role cannot be its own parent")
	}
	r.Consent = in.Consent
	r.Kind = kind
	r.Status = in.Status
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	r.Marriage = marriage
	r.Parent = parent
	r.Holder = in.Holder
	return nil
}

// Tracked returns the fields recorded in the change log.
func (r *Role) Tracked() map[string]any {
	return map[string]any{"houder": r.Holder}
}

// Node is a role rendered with its descendants.
type Node struct {
	ID       id.RoleID `json:"id"`
	Kind     Kind      `json:"soort"`
	Holder   string    `json:"houder"`
	Children []*Node   `json:"rollen"`
}

// Detail is a role together with its child roles up to MaxDepth levels.
type Detail struct {
	*Role
	Children []*Node `json:"rollen"`
}

type Filter struct {
	Marriage id.MarriageID
	Parent   id.RoleID
}
