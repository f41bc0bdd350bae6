package driving

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// ChangeAction describes what HandleDocumentChange did beyond creating the
// new snapshot.
type ChangeAction string

const (
	// ChangeMigrated means existing alerts were migrated immediately.
	ChangeMigrated ChangeAction = "migrated"

	// ChangeDeferred means a migration was recorded against the active
	// session, to run when the session completes.
	ChangeDeferred ChangeAction = "deferred"

	// ChangeNone means there was nothing to migrate.
	ChangeNone ChangeAction = "none"
)

// ChangeOutcome reports the result of handling a document change.
type ChangeOutcome struct {
	// NewVersion is the version of the snapshot created for the change.
	NewVersion int

	// Action is what happened to existing alerts.
	Action ChangeAction

	// MigrationNeeded is true when a migration was scheduled rather than
	// executed.
	MigrationNeeded bool
}

// SessionView is a read-only projection of a project's analysis state for
// the controlling layer.
type SessionView struct {
	// ProjectID identifies the project.
	ProjectID string

	// HasSession is true when a session is registered for the project.
	HasSession bool

	// State is the session's lifecycle state, empty without a session.
	State domain.SessionState

	// BoundVersion is the snapshot version the session is bound to.
	BoundVersion int

	// LatestVersion is the project's newest snapshot version.
	LatestVersion int

	// Migrating is true while a migration batch is in progress.
	Migrating bool
}

// Coordinator manages the lifecycle of analysis sessions and decides when
// alert migration runs.
type Coordinator interface {
	// StartAnalysis creates a new snapshot, creates a PENDING session
	// bound to it and registers it as the project's active session.
	// Returns domain.ErrSessionActive if a non-terminal session exists.
	StartAnalysis(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*domain.AnalysisSession, error)

	// MarkRunning transitions the project's session from PENDING to
	// RUNNING, signalling that extraction work has begun.
	MarkRunning(ctx context.Context, projectID string) error

	// Invalidate cancels a session that has not yet left PENDING.
	// In-flight work is never interrupted.
	Invalidate(ctx context.Context, projectID string) error

	// HandleDocumentChange always creates a new snapshot. With an active
	// session the migration is deferred and the session left untouched;
	// without one, existing alerts are migrated immediately.
	HandleDocumentChange(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*ChangeOutcome, error)

	// CompleteAnalysis transitions the session to COMPLETED, runs any
	// pending migration against the latest snapshot (via MIGRATING), and
	// removes the session from the active registry.
	CompleteAnalysis(ctx context.Context, projectID string) error

	// View returns the read-only session projection for a project.
	View(ctx context.Context, projectID string) (*SessionView, error)
}
