// Package models holds the marriage-type catalog: the kinds of ceremony an
// organization offers, with their products, locations and officiants.
package models

import (
	"fmt"
	"strings"
	"time"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	strutil "trouwen/pkg/platform/strings"
	"trouwen/pkg/platform/validation"
)

// ObjectType names catalog entries in the change log.
const ObjectType = "marriage_type"

// MarriageType is one catalog entry.
//
// Invariants:
//   - Name is 5-255 runes, Summary and Description 25-2000 runes
//   - Identifier is at most 40 runes and unique per SourceOrganization
//   - Language is a BCP 47 tag of 2-17 runes
type MarriageType struct {
	ID                 id.MarriageTypeID `json:"id"`
	Identifier         string            `json:"identificatie"`
	SourceOrganization id.RSIN           `json:"bronOrganisatie"`
	Name               string            `json:"naam"`
	Summary            string            `json:"samenvatting"`
	Description        string            `json:"beschrijving"`
	Product            string            `json:"product"`
	ExtraProducts      []string          `json:"extraProducten"`
	Locations          []string          `json:"locaties"`
	Officiants         []string          `json:"ambtenaren"`
	Language           string            `json:"taal"`
	ContactPerson      string            `json:"contactPersoon"`
	OwnerApplication   id.ApplicationID  `json:"eigenaar"`
	CreatedAt          time.Time         `json:"registratiedatum"`
	UpdatedAt          *time.Time        `json:"wijzigingsdatum,omitempty"`
}

func (t *MarriageType) String() string {
	return t.Name
}

// URL is the public page of the entry under base.
func (t *MarriageType) URL(base string) string {
	return strings.TrimRight(base, "/") + "/type/" + t.ID.String()
}

type Input struct {
	Identifier    string   `json:"identificatie"`
	Name          string   `json:"naam"`
	Summary       string   `json:"samenvatting"`
	Description   string   `json:"beschrijving"`
	Product       string   `json:"product"`
	ExtraProducts []string `json:"extraProducten"`
	Locations     []string `json:"locaties"`
	Officiants    []string `json:"ambtenaren"`
	Language      string   `json:"taal"`
	ContactPerson string   `json:"contactPersoon"`
}

func (in *Input) Normalize() {
	in.Identifier = strings.TrimSpace(in.Identifier)
	in.Name = strings.TrimSpace(in.Name)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Description = strings.TrimSpace(in.Description)
	in.Product = strings.TrimSpace(in.Product)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Language = strings.TrimSpace(in.Language)
	if in.Language == "" {
		in.Language = id.DefaultLanguage
	}
	in.ExtraProducts = compact(in.ExtraProducts)
	in.Locations = compact(in.Locations)
	in.Officiants = compact(in.Officiants)
}

// compact trims list entries and drops blanks and repeats.
func compact(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	return strutil.DedupeAndTrim(values)
}

func (in *Input) Validate() error {
	schema := validation.Schema{
		{Name: "identificatie", Value: in.Identifier, Optional: true, Rules: []validation.Rule{
			validation.Length(0, 40, "", "De identificatie kan niet langer dan {{ limit }} karakters zijn."),
		}},
		{Name: "naam", Value: in.Name, Rules: []validation.Rule{
			validation.Required("De naam mag niet leeg zijn."),
			validation.Length(5, 255, "De naam moet minimaal {{ limit }} karakters lang zijn.", "De naam mag maximaal {{ limit }} karakters zijn."),
		}},
		{Name: "samenvatting", Value: in.Summary, Rules: []validation.Rule{
			validation.Required("De samenvatting mag niet leeg zijn."),
			validation.Length(25, 2000, "De samenvatting moet minimaal {{ limit }} karakters lang zijn.", "De samenvatting mag maximaal {{ limit }} karakters zijn."),
		}},
		{Name: "beschrijving", Value: in.Description, Rules: []validation.Rule{
			validation.Required("De beschrijving mag niet leeg zijn."),
			validation.Length(25, 2000, "De beschrijving moet minimaal {{ limit }} karakters lang zijn.", "De beschrijving mag maximaal {{ limit }} karakters zijn."),
		}},
		{Name: "product", Value: in.Product, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "Het product mag maximaal {{ limit }} karakters zijn."),
		}},
		{Name: "taal", Value: in.Language, Rules: []validation.Rule{
			validation.Length(2, 17, "De taal moet minimaal {{ limit }} karakters lang zijn.", "De taal mag maximaal {{ limit }} karakters zijn."),
			validation.Language(),
		}},
		{Name: "contactPersoon", Value: in.ContactPerson, Optional: true, Rules: []validation.Rule{
			validation.URL(),
			validation.Length(0, 255, "", "Het contactpersoon mag maximaal {{ limit }} karakters zijn."),
		}},
	}
	lists := []struct {
		field  string
		values []string
	}{
		{"extraProducten", in.ExtraProducts},
		{"locaties", in.Locations},
		{"ambtenaren", in.Officiants},
	}
	for _, list := range lists {
		for i, v := range list.values {
			schema = append(schema, validation.Field{
				Name:  fmt.Sprintf("%s[%d]", list.field, i),
				Value: v,
				Rules: []validation.Rule{validation.URL()},
			})
		}
	}
	return schema.Validate()
}

func NewMarriageType(typeID id.MarriageTypeID, in Input, rsin id.RSIN, owner id.ApplicationID, now time.Time) (*MarriageType, error) {
	if typeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "marriage type id cannot be nil")
	}
	if rsin == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "marriage type requires a source organization")
	}
	t := &MarriageType{
		ID:                 typeID,
		SourceOrganization: rsin,
		OwnerApplication:   owner,
		CreatedAt:          now,
	}
	if err := t.apply(in); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *MarriageType) Replace(in Input, now time.Time) error {
	if err := t.apply(in); err != nil {
		return err
	}
	t.UpdatedAt = &now
	return nil
}

func (t *MarriageType) apply(in Input) error {
	lang, err := id.NormalizeLanguage(in.Language)
	if err != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	t.Identifier = in.Identifier
	t.Name = in.Name
	t.Summary = in.Summary
	t.Description = in.Description
	t.Product = in.Product
	t.ExtraProducts = in.ExtraProducts
	t.Locations = in.Locations
	t.Officiants = in.Officiants
	t.Language = lang
	t.ContactPerson = in.ContactPerson
	return nil
}

// Tracked returns the fields recorded in the change log.
func (t *MarriageType) Tracked() map[string]any {
	return map[string]any{
		"identificatie":  t.Identifier,
		"naam":           t.Name,
		"samenvatting":   t.Summary,
		"beschrijving":   t.Description,
		"product":        t.Product,
		"taal":           t.Language,
		"contactPersoon": t.ContactPerson,
	}
}

// Restored returns the input that reproduces t with its tracked fields set
// from state. Fields missing from state keep their current value.
func (t *MarriageType) Restored(state map[string]any) Input {
	str := func(key, current string) string {
		if v, ok := state[key].(string); ok {
			return v
		}
		return current
	}
	return Input{
		Identifier:    str("identificatie", t.Identifier),
		Name:          str("naam", t.Name),
		Summary:       str("samenvatting", t.Summary),
		Description:   str("beschrijving", t.Description),
		Product:       str("product", t.Product),
		ExtraProducts: t.ExtraProducts,
		Locations:     t.Locations,
		Officiants:    t.Officiants,
		Language:      str("taal", t.Language),
		ContactPerson: str("contactPersoon", t.ContactPerson),
	}
}

type Filter struct {
	SourceOrganization id.RSIN
	Identifier         string
}
