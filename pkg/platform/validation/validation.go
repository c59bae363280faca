// Package validation interprets declarative field rules. Models describe their
// constraints as a Schema; Validate evaluates every rule and reports all
// violations at once rather than stopping at the first.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	dErrors "trouwen/pkg/domain-errors"
)

// Rule checks one field value. A nil return means the value passes.
type Rule interface {
	Check(value string) *string
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(value string) *string

func (f RuleFunc) Check(value string) *string { return f(value) }

// Field binds a value to the rules it must satisfy.
type Field struct {
	Name     string
	Value    string
	Optional bool
	Rules    []Rule
}

// Schema is an ordered set of fields.
type Schema []Field

// Validate evaluates the schema. Optional fields with an empty value are skipped.
func (s Schema) Validate() error {
	var violations []dErrors.Violation
	for _, f := range s {
		if f.Optional && f.Value == "" {
			continue
		}
		for _, rule := range f.Rules {
			if msg := rule.Check(f.Value); msg != nil {
				violations = append(violations, dErrors.Violation{Field: f.Name, Message: *msg})
			}
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return dErrors.NewValidation(summary(violations), violations)
}

func summary(v []dErrors.Violation) string {
	if len(v) == 1 {
		return v[0].Field + ": " + v[0].Message
	}
	return fmt.Sprintf("%s: %s (and %d more)", v[0].Field, v[0].Message, len(v)-1)
}

func fail(msg string) *string { return &msg }

// Required rejects empty or whitespace-only values.
func Required(msg string) Rule {
	return RuleFunc(func(v string) *string {
		if strings.TrimSpace(v) == "" {
			return fail(msg)
		}
		return nil
	})
}

// Length bounds the rune count of a value. A max of 0 means unbounded.
// The {{ limit }} placeholder in messages is replaced by the bound.
func Length(min, max int, minMsg, maxMsg string) Rule {
	return RuleFunc(func(v string) *string {
		n := utf8.RuneCountInString(v)
		if n < min {
			return fail(limit(minMsg, min))
		}
		if max > 0 && n > max {
			return fail(limit(maxMsg, max))
		}
		return nil
	})
}

func limit(msg string, n int) string {
	return strings.ReplaceAll(msg, "{{ limit }}", fmt.Sprint(n))
}

// Choice accepts only the listed values.
func Choice(values ...string) Rule {
	return RuleFunc(func(v string) *string {
		if slices.Contains(values, v) {
			return nil
		}
		return fail(fmt.Sprintf("De waarde %q is geen geldige keuze, kies uit: %s.", v, strings.Join(values, ", ")))
	})
}

// Language accepts well-formed BCP 47 language tags.
func Language() Rule {
	return RuleFunc(func(v string) *string {
		if _, err := language.Parse(v); err != nil {
			return fail("Deze waarde is geen geldige taal.")
		}
		return nil
	})
}

// URL accepts absolute http(s) URLs.
func URL() Rule {
	return RuleFunc(func(v string) *string {
		u, err := url.Parse(v)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fail("Deze waarde is geen geldige URL.")
		}
		return nil
	})
}

// Email accepts a bare address such as "john@do.com".
func Email() Rule {
	return RuleFunc(func(v string) *string {
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return fail("Deze waarde is geen geldig e-mailadres.")
		}
		return nil
	})
}
