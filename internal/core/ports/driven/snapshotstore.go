package driven

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// SnapshotStore persists immutable document snapshots.
//
// The store is append-only: versions are assigned strictly monotonically per
// project with no reuse, snapshots are never mutated or deleted, and any
// relocation computed against a version remains reproducible later.
type SnapshotStore interface {
	// Create captures a new snapshot of the parsed document, assigning
	// version max(existing)+1 for the project (1 for the first import).
	// Concurrent imports are serialized, never rejected: the second
	// request simply receives the next version number.
	Create(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*domain.Snapshot, error)

	// Get retrieves one snapshot by project and version.
	// Returns domain.ErrNotFound if the version does not exist.
	Get(ctx context.Context, projectID string, version int) (*domain.Snapshot, error)

	// Latest retrieves the highest-version snapshot for a project.
	// Returns domain.ErrNotFound if the project has no snapshots.
	Latest(ctx context.Context, projectID string) (*domain.Snapshot, error)

	// LatestVersion returns the highest version number for a project,
	// or 0 if the project has no snapshots.
	LatestVersion(ctx context.Context, projectID string) (int, error)
}
