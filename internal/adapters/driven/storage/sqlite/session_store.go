package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Get retrieves the stored session for a project.
func (s *sessionStore) Get(ctx context.Context, projectID string) (*domain.AnalysisSession, error) {
	var sess domain.AnalysisSession
	var state string
	var pendingJSON sql.NullString
	var startedAt sql.NullTime

	err := s.store.db.QueryRowContext(ctx, `
		SELECT project_id, id, snapshot_version, state, pending_migration, started_at
		FROM sessions WHERE project_id = ?
	`, projectID).Scan(&sess.ProjectID, &sess.ID, &sess.SnapshotVersion, &state, &pendingJSON, &startedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	sess.State = domain.SessionState(state)
	if pendingJSON.Valid && pendingJSON.String != "" {
		var task domain.MigrationTask
		if err := json.Unmarshal([]byte(pendingJSON.String), &task); err != nil {
			return nil, fmt.Errorf("unmarshaling pending migration: %w", err)
		}
		sess.PendingMigration = &task
	}
	if startedAt.Valid {
		sess.StartedAt = startedAt.Time
	}

	return &sess, nil
}

// Put stores the session, replacing any previous one for the project.
func (s *sessionStore) Put(ctx context.Context, sess *domain.AnalysisSession) error {
	if sess == nil || sess.ProjectID == "" {
		return domain.ErrInvalidInput
	}

	var pendingJSON sql.NullString
	if sess.PendingMigration != nil {
		raw, err := json.Marshal(sess.PendingMigration)
		if err != nil {
			return fmt.Errorf("marshalling pending migration: %w", err)
		}
		pendingJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (project_id, id, snapshot_version, state, pending_migration, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			id = excluded.id,
			snapshot_version = excluded.snapshot_version,
			state = excluded.state,
			pending_migration = excluded.pending_migration,
			started_at = excluded.started_at
	`, sess.ProjectID, sess.ID, sess.SnapshotVersion, string(sess.State), pendingJSON, sess.StartedAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Delete removes the project's stored session.
func (s *sessionStore) Delete(ctx context.Context, projectID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
