package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trouwen/pkg/domain-errors"
)

func TestSchemaValidate(t *testing.T) {
	nameRule := Length(5, 255, "De naam moet minimaal {{ limit }} karakters lang zijn.", "De naam mag maximaal {{ limit }} karakters zijn.")

	t.Run("passes valid values", func(t *testing.T) {
		err := Schema{{Name: "naam", Value: "Trouwzaal", Rules: []Rule{nameRule}}}.Validate()
		assert.NoError(t, err)
	})

	t.Run("reports every violation", func(t *testing.T) {
		err := Schema{
			{Name: "naam", Value: "abc", Rules: []Rule{nameRule}},
			{Name: "rol", Value: "priester", Rules: []Rule{Choice("trouwambtenaar", "bode")}},
			{Name: "taal", Value: "!!", Rules: []Rule{Language()}},
		}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		violations := dErrors.ViolationsOf(err)
		require.Len(t, violations, 3)
		assert.Equal(t, "naam", violations[0].Field)
		assert.Equal(t, "De naam moet minimaal 5 karakters lang zijn.", violations[0].Message)
		assert.Equal(t, "rol", violations[1].Field)
		assert.Equal(t, "taal", violations[2].Field)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		err := Schema{{Name: "naam", Value: "ééééé", Rules: []Rule{nameRule}}}.Validate()
		assert.NoError(t, err)
	})

	t.Run("enforces upper bound", func(t *testing.T) {
		err := Schema{{Name: "naam", Value: strings.Repeat("x", 256), Rules: []Rule{nameRule}}}.Validate()
		require.Error(t, err)
		assert.Equal(t, "De naam mag maximaal 255 karakters zijn.", dErrors.ViolationsOf(err)[0].Message)
	})

	t.Run("skips empty optional fields", func(t *testing.T) {
		err := Schema{{Name: "product", Optional: true, Rules: []Rule{URL()}}}.Validate()
		assert.NoError(t, err)
	})

	t.Run("required rejects whitespace", func(t *testing.T) {
		err := Schema{{Name: "naam", Value: "  ", Rules: []Rule{Required("naam is verplicht")}}}.Validate()
		require.Error(t, err)
	})
}

func TestURL(t *testing.T) {
	assert.Nil(t, URL().Check("https://ref.tst.vng.cloud/zrc/api/v1/zaken/1"))
	assert.NotNil(t, URL().Check("ftp://example.com"))
	assert.NotNil(t, URL().Check("not a url"))
}

func TestEmail(t *testing.T) {
	rule := Email()
	assert.Nil(t, rule.Check("john@do.com"))
	assert.NotNil(t, rule.Check("John <john@do.com>"))
	assert.NotNil(t, rule.Check("geen-adres"))
}
