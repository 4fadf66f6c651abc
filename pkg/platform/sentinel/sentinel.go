package sentinel

import "errors"

// Store errors. Stores return these, possibly wrapped, and services
// translate them into domain errors exactly once.
var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed reports a unique key collision such as a second
	// application by the same citizen to the same scheme.
	ErrAlreadyUsed = errors.New("already used")
	// ErrConflict reports a lost compare-and-set on status.
	ErrConflict = errors.New("conflict")
)
