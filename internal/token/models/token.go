// Package models holds single-use action tokens, such as the invitation an
// officiant accepts to conduct a marriage.
package models

import (
	"time"

	"github.com/google/uuid"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
)

const (
	ActionAcceptInvitation      = "Accepteer uitnodiging"
	DescriptionAcceptInvitation = "Accepteer de uitnodiging om als ambtenaar dit huwelijk te sluiten"
)

// Token grants its holder one action on one object.
//
// Invariants:
//   - Action, ObjectType and ObjectID are set
//   - CodeHash is the bcrypt hash of the code handed to the holder
//   - UsedAt is set at most once
type Token struct {
	ID          id.TokenID `json:"id"`
	Action      string     `json:"actie"`
	Description string     `json:"beschrijving"`
	Person      string     `json:"persoon"`
	ObjectType  string     `json:"objectType"`
	ObjectID    uuid.UUID  `json:"objectId"`
	CodeHash    string     `json:"-"`
	CreatedAt   time.Time  `json:"registratiedatum"`
	UsedAt      *time.Time `json:"gebruiktOp,omitempty"`

	OwnerApplication id.ApplicationID `json:"eigenaar"`
}

func NewToken(tokenID id.TokenID, action, description, person, objectType string, objectID uuid.UUID, codeHash string, now time.Time) (*Token, error) {
	if tokenID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token id cannot be nil")
	}
	if action == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token action cannot be empty")
	}
	if objectType == "" || objectID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token must target an object")
	}
	if codeHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token code hash cannot be empty")
	}
	return &Token{
		ID:          tokenID,
		Action:      action,
		Description: description,
		Person:      person,
		ObjectType:  objectType,
		ObjectID:    objectID,
		CodeHash:    codeHash,
		CreatedAt:   now,
	}, nil
}

func (t *Token) IsUsed() bool {
	return t.UsedAt != nil
}

func (t *Token) String() string {
	return t.Action
}

// Issued is a freshly created token together with its cleartext code. The
// code is not stored and cannot be retrieved later.
type Issued struct {
	Token *Token `json:"token"`
	Code  string `json:"code"`
}
