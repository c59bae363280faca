package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
)

func zuiddrecht() OrganizationInput {
	return OrganizationInput{
		RSIN:        "0022.20.647",
		KVK:         "30280353",
		VAT:         "NL 0022.20.647.B01",
		EORI:        "NL 0022.20.647",
		Name:        "Gemeente Zuiddrecht",
		Description: "Gelegen in het prachtige zuidelijke deel van de provincie Drecht",
	}
}

func fields(err error) []string {
	var out []string
	for _, v := range dErrors.ViolationsOf(err) {
		out = append(out, v.Field)
	}
	return out
}

func TestOrganizationInputValidate(t *testing.T) {
	t.Run("fixture organization is valid", func(t *testing.T) {
		in := zuiddrecht()
		in.Normalize()
		assert.NoError(t, in.Validate())
	})

	t.Run("reports every violation", func(t *testing.T) {
		in := OrganizationInput{RSIN: "123", Email: "geen-adres", Name: strings.Repeat("x", 256)}
		err := in.Validate()
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.ElementsMatch(t, []string{"rsin", "naam", "email"}, fields(err))
	})

	t.Run("rsin with more than nine digits is rejected", func(t *testing.T) {
		in := zuiddrecht()
		in.RSIN = "1234567890"
		assert.Equal(t, []string{"rsin"}, fields(in.Validate()))
	})
}

func TestOrganization(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	owner := id.NewApplicationID()

	org, err := NewOrganization(id.NewOrganizationID(), zuiddrecht(), owner, now)
	require.NoError(t, err)

	assert.Equal(t, "Gemeente Zuiddrecht", org.String())
	assert.Equal(t, id.RSIN("0022.20.647"), org.RSIN)
	assert.Nil(t, org.UpdatedAt)

	later := now.Add(time.Hour)
	in := zuiddrecht()
	in.Name = "Gemeente Noorddrecht"
	org.Replace(in, later)

	assert.Equal(t, "Gemeente Noorddrecht", org.Name)
	assert.Equal(t, owner, org.OwnerApplication)
	assert.Equal(t, now, org.CreatedAt)
	require.NotNil(t, org.UpdatedAt)
	assert.Equal(t, later, *org.UpdatedAt)

	_, err = NewOrganization(id.OrganizationID{}, zuiddrecht(), owner, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func john(org id.OrganizationID) PersonInput {
	return PersonInput{
		Organization: org.String(),
		GivenNames:   "John",
		FamilyName:   "Doh",
		Email:        "john@do.com",
		Phone:        "0645536677",
		Language:     "nl",
	}
}

func TestPerson(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	org := id.NewOrganizationID()

	t.Run("fixture person is valid and renders its full name", func(t *testing.T) {
		in := john(org)
		in.Normalize()
		require.NoError(t, in.Validate())

		p, err := NewPerson(id.NewPersonID(), org, in, id.ApplicationID{}, now)
		require.NoError(t, err)
		assert.Equal(t, "John Doh", p.String())
		assert.Equal(t, now, p.RegisteredAt)
		assert.Equal(t, org, p.Organization)
	})

	t.Run("language defaults to nl", func(t *testing.T) {
		in := john(org)
		in.Language = ""
		in.Normalize()
		require.NoError(t, in.Validate())
		assert.Equal(t, "nl", in.Language)
	})

	t.Run("invalid language is rejected", func(t *testing.T) {
		in := john(org)
		in.Language = "x"
		assert.Contains(t, fields(in.Validate()), "taal")
	})

	t.Run("replace keeps the registration timestamp", func(t *testing.T) {
		p, err := NewPerson(id.NewPersonID(), org, john(org), id.ApplicationID{}, now)
		require.NoError(t, err)

		in := john(org)
		in.GivenNames = "Jan"
		require.NoError(t, p.Replace(org, in, now.Add(time.Hour)))

		assert.Equal(t, "Jan Doh", p.String())
		assert.Equal(t, now, p.RegisteredAt)
	})

	t.Run("requires an organization", func(t *testing.T) {
		_, err := NewPerson(id.NewPersonID(), id.OrganizationID{}, john(org), id.ApplicationID{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
