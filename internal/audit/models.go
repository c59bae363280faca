// Package audit keeps the change log of loggable records. Every create,
// update and delete appends a versioned LogEntry holding the tracked fields
// that changed, so any prior version can be reconstructed and restored.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "trouwen/pkg/domain"
)

// Action is the kind of change a log entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Data holds tracked field values keyed by their wire name.
type Data map[string]any

// LogEntry is one version of one object.
//
// Invariants:
//   - Version starts at 1 and increases by exactly 1 per object
//   - Data holds every tracked field on create and only changed fields after
type LogEntry struct {
	ID          id.LogEntryID    `json:"id"`
	Action      Action           `json:"action"`
	ObjectClass string           `json:"objectClass"`
	ObjectID    uuid.UUID        `json:"objectId"`
	Version     int              `json:"version"`
	Data        Data             `json:"data"`
	LoggedAt    time.Time        `json:"loggedAt"`
	Application id.ApplicationID `json:"application"`
}
