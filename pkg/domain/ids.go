// Package domain holds the identifier types and primitives shared across
// modules. Identifiers are distinct UUID-backed types so a PersonID can never
// be passed where an OrganizationID is expected.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "trouwen/pkg/domain-errors"
)

// maxIDLength bounds raw input before it reaches the UUID parser.
const maxIDLength = 45

func parseID[T ~[16]byte](kind, raw string) (T, error) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(raw) > maxIDLength || !utf8.ValidString(raw) {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(parsed), nil
}

// marshalID renders the nil identifier as an empty string.
func marshalID[T ~[16]byte](v T) ([]byte, error) {
	u := uuid.UUID(v)
	if u == uuid.Nil {
		return []byte{}, nil
	}
	return u.MarshalText()
}

func unmarshalID[T ~[16]byte](dst *T, text []byte) error {
	if len(text) == 0 {
		*dst = T(uuid.Nil)
		return nil
	}
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid identifier")
	}
	*dst = T(parsed)
	return nil
}

// OrganizationID identifies a organization.
type OrganizationID uuid.UUID

// ParseOrganizationID parses external input into an OrganizationID.
func ParseOrganizationID(s string) (OrganizationID, error) { return parseID[OrganizationID]("organization id", s) }

// NewOrganizationID generates a random OrganizationID.
func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }

func (i OrganizationID) String() string { return uuid.UUID(i).String() }
func (i OrganizationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i OrganizationID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *OrganizationID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// PersonID identifies a person.
type PersonID uuid.UUID

// ParsePersonID parses external input into a PersonID.
func ParsePersonID(s string) (PersonID, error) { return parseID[PersonID]("person id", s) }

// NewPersonID generates a random PersonID.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

func (i PersonID) String() string { return uuid.UUID(i).String() }
func (i PersonID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i PersonID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *PersonID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// ApplicationID identifies a application.
type ApplicationID uuid.UUID

// ParseApplicationID parses external input into an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) { return parseID[ApplicationID]("application id", s) }

// NewApplicationID generates a random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

func (i ApplicationID) String() string { return uuid.UUID(i).String() }
func (i ApplicationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i ApplicationID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *ApplicationID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// OfficiantID identifies a officiant.
type OfficiantID uuid.UUID

// ParseOfficiantID parses external input into an OfficiantID.
func ParseOfficiantID(s string) (OfficiantID, error) { return parseID[OfficiantID]("officiant id", s) }

// NewOfficiantID generates a random OfficiantID.
func NewOfficiantID() OfficiantID { return OfficiantID(uuid.New()) }

func (i OfficiantID) String() string { return uuid.UUID(i).String() }
func (i OfficiantID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i OfficiantID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *OfficiantID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// RoleID identifies a role.
type RoleID uuid.UUID

// ParseRoleID parses external input into a RoleID.
func ParseRoleID(s string) (RoleID, error) { return parseID[RoleID]("role id", s) }

// NewRoleID generates a random RoleID.
func NewRoleID() RoleID { return RoleID(uuid.New()) }

func (i RoleID) String() string { return uuid.UUID(i).String() }
func (i RoleID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i RoleID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *RoleID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// MarriageTypeID identifies a marriage type.
type MarriageTypeID uuid.UUID

// ParseMarriageTypeID parses external input into a MarriageTypeID.
func ParseMarriageTypeID(s string) (MarriageTypeID, error) { return parseID[MarriageTypeID]("marriage type id", s) }

// NewMarriageTypeID generates a random MarriageTypeID.
func NewMarriageTypeID() MarriageTypeID { return MarriageTypeID(uuid.New()) }

func (i MarriageTypeID) String() string { return uuid.UUID(i).String() }
func (i MarriageTypeID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i MarriageTypeID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *MarriageTypeID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// MarriageID identifies a marriage.
type MarriageID uuid.UUID

// ParseMarriageID parses external input into a MarriageID.
func ParseMarriageID(s string) (MarriageID, error) { return parseID[MarriageID]("marriage id", s) }

// NewMarriageID generates a random MarriageID.
func NewMarriageID() MarriageID { return MarriageID(uuid.New()) }

func (i MarriageID) String() string { return uuid.UUID(i).String() }
func (i MarriageID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i MarriageID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *MarriageID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// TokenID identifies a token.
type TokenID uuid.UUID

// ParseTokenID parses external input into a TokenID.
func ParseTokenID(s string) (TokenID, error) { return parseID[TokenID]("token id", s) }

// NewTokenID generates a random TokenID.
func NewTokenID() TokenID { return TokenID(uuid.New()) }

func (i TokenID) String() string { return uuid.UUID(i).String() }
func (i TokenID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i TokenID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *TokenID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }

// LogEntryID identifies a log entry.
type LogEntryID uuid.UUID

// ParseLogEntryID parses external input into an LogEntryID.
func ParseLogEntryID(s string) (LogEntryID, error) { return parseID[LogEntryID]("log entry id", s) }

// NewLogEntryID generates a random LogEntryID.
func NewLogEntryID() LogEntryID { return LogEntryID(uuid.New()) }

func (i LogEntryID) String() string { return uuid.UUID(i).String() }
func (i LogEntryID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i LogEntryID) MarshalText() ([]byte, error) { return marshalID(i) }
func (i *LogEntryID) UnmarshalText(b []byte) error { return unmarshalID(i, b) }
