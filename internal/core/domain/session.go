package domain

import "time"

// SessionState is the lifecycle state of an analysis session.
type SessionState string

const (
	// SessionPending means the session exists but extraction has not begun.
	SessionPending SessionState = "PENDING"

	// SessionRunning means extraction work is in flight.
	SessionRunning SessionState = "RUNNING"

	// SessionInvalidated means the session was cancelled before extraction
	// began. Pure bookkeeping; in-flight work is never interrupted.
	SessionInvalidated SessionState = "INVALIDATED"

	// SessionCompleted means extraction finished.
	SessionCompleted SessionState = "COMPLETED"

	// SessionMigrating means a pending migration is being applied after
	// completion, before the session is finalised.
	SessionMigrating SessionState = "MIGRATING"
)

// Terminal reports whether the state ends the session's lifecycle.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionInvalidated
}

// AnalysisSession is one run of the extraction pipeline bound to exactly one
// snapshot version. At most one non-terminal session exists per project.
type AnalysisSession struct {
	// ID is the unique session identifier.
	ID string

	// ProjectID identifies the owning project.
	ProjectID string

	// SnapshotVersion is the snapshot this session is bound to. It never
	// changes after creation; later imports schedule migrations instead.
	SnapshotVersion int

	// State is the current lifecycle state.
	State SessionState

	// PendingMigration is set when the document changed while this session
	// was active. Applied at completion time against the latest snapshot.
	PendingMigration *MigrationTask

	// StartedAt is when the session was created.
	StartedAt time.Time
}

// MigrationTask records that alerts anchored at FromVersion must be
// relocated to ToVersion. Migration only moves forward.
type MigrationTask struct {
	// FromVersion is the snapshot version the alerts are anchored at.
	FromVersion int

	// ToVersion is the snapshot version to migrate to.
	ToVersion int
}

// Validate enforces the forward-only invariant.
func (t *MigrationTask) Validate() error {
	if t.ToVersion < t.FromVersion {
		return ErrBackwardMigration
	}
	return nil
}
