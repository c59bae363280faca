package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors:
//   - ErrNotFound: record does not exist
//   - ErrAlreadyUsed: a uniqueness pair is already taken
//   - ErrHasDependents: record is still referenced and cannot be removed
//   - ErrInvalidState: record is in the wrong state for the operation
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyUsed   = errors.New("already used")
	ErrHasDependents = errors.New("has dependents")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)
