package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trouwen/pkg/domain-errors"
)

// TestParseID_Invariants validates that identifiers are valid, non-empty,
// non-nil UUIDs at every trust boundary.
func TestParseID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"invalid format", "not-a-uuid", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"SQL injection attempt", "'; DROP TABLE personen;--", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid UUID", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrganizationID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.NewString()
	parsers := map[string]func(string) error{
		"organization":  func(s string) error { _, err := ParseOrganizationID(s); return err },
		"person":        func(s string) error { _, err := ParsePersonID(s); return err },
		"application":   func(s string) error { _, err := ParseApplicationID(s); return err },
		"officiant":     func(s string) error { _, err := ParseOfficiantID(s); return err },
		"role":          func(s string) error { _, err := ParseRoleID(s); return err },
		"marriage type": func(s string) error { _, err := ParseMarriageTypeID(s); return err },
		"marriage":      func(s string) error { _, err := ParseMarriageID(s); return err },
		"token":         func(s string) error { _, err := ParseTokenID(s); return err },
		"log entry":     func(s string) error { _, err := ParseLogEntryID(s); return err },
	}

	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, parse(valid))
			for _, bad := range []string{"", "invalid", uuid.Nil.String()} {
				require.Error(t, parse(bad), "input %q", bad)
			}
		})
	}
}

func TestIDJSONRoundTrip(t *testing.T) {
	type payload struct {
		ID     RoleID  `json:"id"`
		Parent *RoleID `json:"parent,omitempty"`
	}
	parent := NewRoleID()
	in := payload{ID: NewRoleID(), Parent: &parent}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.ID.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.ID, out.ID)
	require.NotNil(t, out.Parent)
	assert.Equal(t, parent, *out.Parent)
}

func TestNilIDMarshalsEmpty(t *testing.T) {
	raw, err := json.Marshal(struct {
		Marriage MarriageID `json:"huwelijk"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"huwelijk":""}`, string(raw))

	var out struct {
		Marriage MarriageID `json:"huwelijk"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Marriage.IsNil())
}
