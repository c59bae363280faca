package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	dErrors "trouwen/pkg/domain-errors"
)

// RSIN is the registration number of the organization owning a record.
// Invariant: once trimmed it is 8 to 11 characters long and holds at most 9
// digits, so both "002220647" and the dotted "0022.20.647" used by the
// fixtures are accepted. Separators are kept as given.
type RSIN string

const (
	rsinMinLength = 8
	rsinMaxLength = 11
)

// ParseRSIN trims and length-checks an RSIN.
func ParseRSIN(s string) (RSIN, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < rsinMinLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Het RSIN moet minimaal 8 karakters lang zijn.")
	}
	if n > rsinMaxLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Het RSIN mag maximaal 11 karakters lang zijn.")
	}
	if digits(s) > 9 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Het RSIN mag maximaal 9 cijfers bevatten.")
	}
	return RSIN(s), nil
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func (r RSIN) String() string { return string(r) }

// DefaultLanguage is used when a record does not specify one.
const DefaultLanguage = "nl"

// NormalizeLanguage canonicalizes a language tag ("NL" -> "nl").
// Returns an error for tags that do not parse.
func NormalizeLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "De taal is geen geldige taalcode.")
	}
	return tag.String(), nil
}
