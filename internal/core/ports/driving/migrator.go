package driving

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// Migrator applies the relocation cascade to stored alerts when moving a
// project from an older snapshot to a newer one.
type Migrator interface {
	// MigrateAlerts relocates each alert's anchor against the target
	// snapshot and applies the status transition table. Per-alert
	// failures are isolated; already-migrated (alertID, target.Version)
	// keys are replayed from the ledger as no-ops.
	MigrateAlerts(ctx context.Context, alerts []domain.Alert, target *domain.Snapshot) ([]domain.MigrationOutcome, error)

	// MigrateProject loads all of a project's alerts and migrates them
	// to the target snapshot.
	MigrateProject(ctx context.Context, projectID string, target *domain.Snapshot) ([]domain.MigrationOutcome, error)
}
