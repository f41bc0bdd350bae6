package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// alertStore implements driven.AlertStore.
type alertStore struct {
	store *Store
}

var _ driven.AlertStore = (*alertStore)(nil)

// Save stores or updates an alert.
func (s *alertStore) Save(ctx context.Context, alert *domain.Alert) error {
	if alert == nil || alert.ID == "" {
		return domain.ErrInvalidInput
	}

	anchorJSON, err := json.Marshal(alert.Anchor)
	if err != nil {
		return fmt.Errorf("marshalling anchor: %w", err)
	}
	auditJSON, err := marshalAuditLog(alert.AuditLog)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO alerts (id, project_id, description, severity, status, anchor, audit_log, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			description = excluded.description,
			severity = excluded.severity,
			status = excluded.status,
			anchor = excluded.anchor,
			audit_log = excluded.audit_log,
			updated_at = excluded.updated_at
	`, alert.ID, alert.ProjectID, alert.Description, alert.Severity, string(alert.Status),
		string(anchorJSON), auditJSON, alert.CreatedAt, alert.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by ID.
func (s *alertStore) Get(ctx context.Context, id string) (*domain.Alert, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_id, description, severity, status, anchor, audit_log, created_at, updated_at
		FROM alerts WHERE id = ?
	`, id)

	return scanAlert(row)
}

// ListByProject returns all alerts of a project, ordered by creation time
// for deterministic batches.
func (s *alertStore) ListByProject(ctx context.Context, projectID string) ([]domain.Alert, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, description, severity, status, anchor, audit_log, created_at, updated_at
		FROM alerts WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert //nolint:prealloc // size unknown from query
	for rows.Next() {
		alert, err := scanAlertRows(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}

	return alerts, nil
}

// UpdateAnchor rewrites an alert's anchor, status and audit log.
func (s *alertStore) UpdateAnchor(ctx context.Context, id string, anchor domain.Anchor, status domain.AlertStatus, note string) error {
	return s.update(ctx, id, &anchor, status, note)
}

// UpdateStatus changes an alert's status and appends an audit note.
func (s *alertStore) UpdateStatus(ctx context.Context, id string, status domain.AlertStatus, note string) error {
	return s.update(ctx, id, nil, status, note)
}

// update applies an anchor rewrite and/or a status change with an optional
// audit note in one transaction. The audit log is read-modify-write because
// notes are append-only.
func (s *alertStore) update(ctx context.Context, id string, anchor *domain.Anchor, status domain.AlertStatus, note string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var anchorJSON, auditJSON string
	row := tx.QueryRowContext(ctx, "SELECT anchor, audit_log FROM alerts WHERE id = ?", id)
	if err := row.Scan(&anchorJSON, &auditJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reading alert: %w", err)
	}

	if anchor != nil {
		raw, err := json.Marshal(anchor)
		if err != nil {
			return fmt.Errorf("marshalling anchor: %w", err)
		}
		anchorJSON = string(raw)
	}

	if note != "" {
		var log []domain.AuditNote
		if err := json.Unmarshal([]byte(auditJSON), &log); err != nil {
			return fmt.Errorf("unmarshaling audit log: %w", err)
		}
		log = append(log, domain.AuditNote{At: time.Now().UTC(), Note: note})
		auditJSON, err = marshalAuditLog(log)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE alerts SET anchor = ?, status = ?, audit_log = ?, updated_at = ?
		WHERE id = ?
	`, anchorJSON, string(status), auditJSON, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating alert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetMigration returns the recorded outcome for an idempotency key.
func (s *alertStore) GetMigration(ctx context.Context, alertID string, toVersion int) (*domain.MigrationOutcome, error) {
	var outcomeJSON string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT outcome FROM migration_ledger WHERE alert_id = ? AND to_version = ?
	`, alertID, toVersion).Scan(&outcomeJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading ledger entry: %w", err)
	}

	var outcome domain.MigrationOutcome
	if err := json.Unmarshal([]byte(outcomeJSON), &outcome); err != nil {
		return nil, fmt.Errorf("unmarshaling ledger entry: %w", err)
	}
	return &outcome, nil
}

// RecordMigration stores a migration outcome; recording twice is a no-op.
func (s *alertStore) RecordMigration(ctx context.Context, outcome *domain.MigrationOutcome) error {
	if outcome == nil || outcome.AlertID == "" {
		return domain.ErrInvalidInput
	}

	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshalling ledger entry: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO migration_ledger (alert_id, to_version, outcome)
		VALUES (?, ?, ?)
		ON CONFLICT(alert_id, to_version) DO NOTHING
	`, outcome.AlertID, outcome.ToVersion, string(outcomeJSON))
	if err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}
	return nil
}

// marshalAuditLog serializes the audit log, normalising nil to an empty array
// so the column never holds JSON null.
func marshalAuditLog(log []domain.AuditNote) (string, error) {
	if log == nil {
		log = []domain.AuditNote{}
	}
	raw, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("marshalling audit log: %w", err)
	}
	return string(raw), nil
}

// scanAlert scans a single alert row.
func scanAlert(row *sql.Row) (*domain.Alert, error) {
	var alert domain.Alert
	var status, anchorJSON, auditJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&alert.ID, &alert.ProjectID, &alert.Description, &alert.Severity,
		&status, &anchorJSON, &auditJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning alert: %w", err)
	}

	return decodeAlert(&alert, status, anchorJSON, auditJSON, createdAt, updatedAt)
}

// scanAlertRows scans an alert from *sql.Rows.
func scanAlertRows(rows *sql.Rows) (*domain.Alert, error) {
	var alert domain.Alert
	var status, anchorJSON, auditJSON string
	var createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&alert.ID, &alert.ProjectID, &alert.Description, &alert.Severity,
		&status, &anchorJSON, &auditJSON, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning alert: %w", err)
	}

	return decodeAlert(&alert, status, anchorJSON, auditJSON, createdAt, updatedAt)
}

// decodeAlert fills the JSON-encoded and nullable columns of a scanned alert.
func decodeAlert(alert *domain.Alert, status, anchorJSON, auditJSON string, createdAt, updatedAt sql.NullTime) (*domain.Alert, error) {
	alert.Status = domain.AlertStatus(status)

	if err := json.Unmarshal([]byte(anchorJSON), &alert.Anchor); err != nil {
		return nil, fmt.Errorf("unmarshaling anchor: %w", err)
	}
	if err := json.Unmarshal([]byte(auditJSON), &alert.AuditLog); err != nil {
		return nil, fmt.Errorf("unmarshaling audit log: %w", err)
	}

	if createdAt.Valid {
		alert.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		alert.UpdatedAt = updatedAt.Time
	}

	return alert, nil
}
