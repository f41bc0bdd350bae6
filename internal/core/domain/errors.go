package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAnchor indicates an anchor with inconsistent or missing fields.
	// Relocation of such an anchor must be aborted, never guessed.
	ErrInvalidAnchor = errors.New("invalid anchor")

	// ErrCorruptSnapshot indicates a snapshot whose structural index does not
	// agree with its full text. Any relocation against it is aborted.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrSessionActive indicates a non-terminal analysis session already
	// exists for the project. At most one may exist at a time.
	ErrSessionActive = errors.New("analysis session already active")

	// ErrNoActiveSession indicates no analysis session is registered for
	// the project.
	ErrNoActiveSession = errors.New("no active analysis session")

	// ErrInvalidTransition indicates a session state change that the
	// lifecycle does not permit.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrBackwardMigration indicates a migration task whose target version
	// is lower than its origin version. Migration only moves forward.
	ErrBackwardMigration = errors.New("migration target version precedes origin version")
)
