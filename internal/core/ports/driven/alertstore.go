package driven

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// AlertStore persists alerts and the migration idempotency ledger.
//
// Migration never deletes alert records: it writes updated anchor
// coordinates, status transitions and append-only audit notes.
type AlertStore interface {
	// Save stores or updates an alert.
	Save(ctx context.Context, alert *domain.Alert) error

	// Get retrieves an alert by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Alert, error)

	// ListByProject returns all alerts of a project.
	ListByProject(ctx context.Context, projectID string) ([]domain.Alert, error)

	// UpdateAnchor rewrites an alert's anchor coordinates, optionally
	// changes its status, and appends an audit note when note is non-empty.
	UpdateAnchor(ctx context.Context, id string, anchor domain.Anchor, status domain.AlertStatus, note string) error

	// UpdateStatus changes an alert's status and appends an audit note
	// when note is non-empty.
	UpdateStatus(ctx context.Context, id string, status domain.AlertStatus, note string) error

	// GetMigration returns the recorded outcome for the idempotency key
	// (alertID, toVersion), or domain.ErrNotFound if none is recorded.
	GetMigration(ctx context.Context, alertID string, toVersion int) (*domain.MigrationOutcome, error)

	// RecordMigration stores a completed migration outcome under its
	// idempotency key. Recording the same key twice is a no-op.
	RecordMigration(ctx context.Context, outcome *domain.MigrationOutcome) error
}
