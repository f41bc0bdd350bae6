package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Create captures a new snapshot with version max(existing)+1 for the
// project. The version read and the insert share one immediate transaction,
// so concurrent imports queue for the write lock and each reads the version
// the previous one committed: imports are serialized, never rejected.
func (s *snapshotStore) Create(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*domain.Snapshot, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current int
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM snapshots WHERE project_id = ?", projectID)
	if err := row.Scan(&current); err != nil {
		return nil, fmt.Errorf("getting latest version: %w", err)
	}

	snap, err := domain.NewSnapshot(projectID, current+1, doc)
	if err != nil {
		return nil, err
	}

	structureJSON, err := json.Marshal(snap.Index)
	if err != nil {
		return nil, fmt.Errorf("marshalling structural index: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (project_id, version, full_text, structure, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ProjectID, snap.Version, snap.FullText, string(structureJSON), snap.CreatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return snap, nil
}

// Get retrieves one snapshot by project and version.
func (s *snapshotStore) Get(ctx context.Context, projectID string, version int) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT project_id, version, full_text, structure, created_at
		FROM snapshots WHERE project_id = ? AND version = ?
	`, projectID, version)

	return scanSnapshot(row)
}

// Latest retrieves the highest-version snapshot for a project.
func (s *snapshotStore) Latest(ctx context.Context, projectID string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT project_id, version, full_text, structure, created_at
		FROM snapshots WHERE project_id = ?
		ORDER BY version DESC LIMIT 1
	`, projectID)

	return scanSnapshot(row)
}

// LatestVersion returns the highest version number, or 0 without snapshots.
func (s *snapshotStore) LatestVersion(ctx context.Context, projectID string) (int, error) {
	var version int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM snapshots WHERE project_id = ?", projectID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("getting latest version: %w", err)
	}
	return version, nil
}

// scanSnapshot scans a single snapshot row.
func scanSnapshot(row *sql.Row) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var structureJSON string
	var createdAt sql.NullTime

	if err := row.Scan(&snap.ProjectID, &snap.Version, &snap.FullText,
		&structureJSON, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(structureJSON), &snap.Index); err != nil {
		return nil, fmt.Errorf("unmarshaling structural index: %w", err)
	}
	if createdAt.Valid {
		snap.CreatedAt = createdAt.Time
	}

	return &snap, nil
}
