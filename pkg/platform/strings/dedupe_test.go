package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	const (
		hall   = "https://example.com/locaties/raadszaal"
		garden = "https://example.com/locaties/tuin"
	)
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil stays nil", nil, nil},
		{"empty stays empty", []string{}, []string{}},
		{"trims", []string{"  " + hall + " "}, []string{hall}},
		{"drops repeats keeping order", []string{garden, hall, garden}, []string{garden, hall}},
		{"drops blanks", []string{"", "   ", hall}, []string{hall}},
		{"only blanks", []string{" ", ""}, []string{}},
		{"case sensitive", []string{hall, "HTTPS://EXAMPLE.COM/LOCATIES/RAADSZAAL"}, []string{hall, "HTTPS://EXAMPLE.COM/LOCATIES/RAADSZAAL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}
