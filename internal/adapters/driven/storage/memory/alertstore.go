package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// Ensure AlertStore implements the interface.
var _ driven.AlertStore = (*AlertStore)(nil)

// AlertStore is an in-memory implementation of driven.AlertStore.
type AlertStore struct {
	mu         sync.RWMutex
	alerts     map[string]domain.Alert
	migrations map[string]domain.MigrationOutcome
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		alerts:     make(map[string]domain.Alert),
		migrations: make(map[string]domain.MigrationOutcome),
	}
}

// Save stores or updates an alert.
func (s *AlertStore) Save(_ context.Context, alert *domain.Alert) error {
	if alert == nil || alert.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = *alert
	return nil
}

// Get retrieves an alert by ID.
func (s *AlertStore) Get(_ context.Context, id string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &alert, nil
}

// ListByProject returns all alerts of a project, ordered by creation time
// for deterministic batches.
func (s *AlertStore) ListByProject(_ context.Context, projectID string) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Alert
	for id := range s.alerts {
		if s.alerts[id].ProjectID == projectID {
			result = append(result, s.alerts[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateAnchor rewrites an alert's anchor, status and audit log.
func (s *AlertStore) UpdateAnchor(_ context.Context, id string, anchor domain.Anchor, status domain.AlertStatus, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}

	alert.Anchor = anchor
	alert.Status = status
	if note != "" {
		alert.AuditLog = append(alert.AuditLog, domain.AuditNote{At: time.Now(), Note: note})
	}
	alert.UpdatedAt = time.Now()
	s.alerts[id] = alert
	return nil
}

// UpdateStatus changes an alert's status and appends an audit note.
func (s *AlertStore) UpdateStatus(_ context.Context, id string, status domain.AlertStatus, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}

	alert.Status = status
	if note != "" {
		alert.AuditLog = append(alert.AuditLog, domain.AuditNote{At: time.Now(), Note: note})
	}
	alert.UpdatedAt = time.Now()
	s.alerts[id] = alert
	return nil
}

// GetMigration returns the recorded outcome for an idempotency key.
func (s *AlertStore) GetMigration(_ context.Context, alertID string, toVersion int) (*domain.MigrationOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.migrations[migrationKey(alertID, toVersion)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &outcome, nil
}

// RecordMigration stores a migration outcome; recording twice is a no-op.
func (s *AlertStore) RecordMigration(_ context.Context, outcome *domain.MigrationOutcome) error {
	if outcome == nil || outcome.AlertID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := migrationKey(outcome.AlertID, outcome.ToVersion)
	if _, exists := s.migrations[key]; exists {
		return nil
	}
	s.migrations[key] = *outcome
	return nil
}

// migrationKey builds the ledger key for (alertID, toVersion).
func migrationKey(alertID string, toVersion int) string {
	return fmt.Sprintf("%s@%d", alertID, toVersion)
}
