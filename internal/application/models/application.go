// Package models holds the registered applications that own records.
package models

import (
	"strings"
	"time"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
)

// Application is a registered API consumer. Every record it creates is
// stamped with its ID and RSIN.
//
// Invariants:
//   - ClientID is non-empty and unique across applications
//   - Secret is non-empty; it is the HMAC key of the application's tokens
//   - RSIN identifies the organization the application acts for
type Application struct {
	ID        id.ApplicationID `json:"id"`
	ClientID  string           `json:"clientId"`
	Name      string           `json:"naam"`
	Secret    string           `json:"-"`
	RSIN      id.RSIN          `json:"rsin"`
	CreatedAt time.Time        `json:"createdAt"`
}

func NewApplication(appID id.ApplicationID, clientID, name, secret string, rsin id.RSIN, now time.Time) (*Application, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id cannot be empty")
	}
	if secret == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application secret cannot be empty")
	}
	if rsin == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application rsin cannot be empty")
	}
	if name == "" {
		name = clientID
	}
	return &Application{
		ID:        appID,
		ClientID:  clientID,
		Name:      name,
		Secret:    secret,
		RSIN:      rsin,
		CreatedAt: now,
	}, nil
}
