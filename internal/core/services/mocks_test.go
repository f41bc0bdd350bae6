package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
	"github.com/custodia-labs/anclora/internal/core/ports/driving"
)

var (
	_ driven.SnapshotStore = (*fakeSnapshotStore)(nil)
	_ driven.AlertStore    = (*fakeAlertStore)(nil)
	_ driven.SessionStore  = (*fakeSessionStore)(nil)
	_ driving.Migrator     = (*fakeMigrator)(nil)
)

// fakeSnapshotStore is an append-only in-memory stand-in for the driven port.
type fakeSnapshotStore struct {
	mu        sync.Mutex
	byProject map[string][]*domain.Snapshot
	createErr error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{byProject: make(map[string][]*domain.Snapshot)}
}

func (s *fakeSnapshotStore) Create(_ context.Context, projectID string, doc *domain.ParsedDocument) (*domain.Snapshot, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := domain.NewSnapshot(projectID, len(s.byProject[projectID])+1, doc)
	if err != nil {
		return nil, err
	}
	s.byProject[projectID] = append(s.byProject[projectID], snap)
	return snap, nil
}

func (s *fakeSnapshotStore) Get(_ context.Context, projectID string, version int) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps := s.byProject[projectID]
	if version < 1 || version > len(snaps) {
		return nil, domain.ErrNotFound
	}
	return snaps[version-1], nil
}

func (s *fakeSnapshotStore) Latest(_ context.Context, projectID string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps := s.byProject[projectID]
	if len(snaps) == 0 {
		return nil, domain.ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

func (s *fakeSnapshotStore) LatestVersion(_ context.Context, projectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byProject[projectID]), nil
}

// fakeAlertStore keeps alerts and the migration ledger in maps, preserving
// insertion order for deterministic batches.
type fakeAlertStore struct {
	mu         sync.Mutex
	order      []string
	alerts     map[string]domain.Alert
	migrations map[string]domain.MigrationOutcome

	updateAnchorErr error
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{
		alerts:     make(map[string]domain.Alert),
		migrations: make(map[string]domain.MigrationOutcome),
	}
}

func (s *fakeAlertStore) Save(_ context.Context, alert *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.alerts[alert.ID]; !exists {
		s.order = append(s.order, alert.ID)
	}
	s.alerts[alert.ID] = *alert
	return nil
}

func (s *fakeAlertStore) Get(_ context.Context, id string) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &alert, nil
}

func (s *fakeAlertStore) ListByProject(_ context.Context, projectID string) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Alert
	for _, id := range s.order {
		if s.alerts[id].ProjectID == projectID {
			result = append(result, s.alerts[id])
		}
	}
	return result, nil
}

func (s *fakeAlertStore) UpdateAnchor(_ context.Context, id string, anchor domain.Anchor, status domain.AlertStatus, note string) error {
	if s.updateAnchorErr != nil {
		return s.updateAnchorErr
	}
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
	s.alerts[id] = alert
	return nil
}

func (s *fakeAlertStore) UpdateStatus(_ context.Context, id string, status domain.AlertStatus, note string) error {
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
	s.alerts[id] = alert
	return nil
}

func (s *fakeAlertStore) GetMigration(_ context.Context, alertID string, toVersion int) (*domain.MigrationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.migrations[fmt.Sprintf("%s@%d", alertID, toVersion)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &outcome, nil
}

func (s *fakeAlertStore) RecordMigration(_ context.Context, outcome *domain.MigrationOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s@%d", outcome.AlertID, outcome.ToVersion)
	if _, exists := s.migrations[key]; exists {
		return nil
	}
	s.migrations[key] = *outcome
	return nil
}

// fakeSessionStore keeps one session per project, copied on the way in and
// out so coordinators sharing the store never alias each other's state.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.AnalysisSession
	putErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.AnalysisSession)}
}

func (s *fakeSessionStore) Get(_ context.Context, projectID string) (*domain.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := sess
	if sess.PendingMigration != nil {
		task := *sess.PendingMigration
		out.PendingMigration = &task
	}
	return &out, nil
}

func (s *fakeSessionStore) Put(_ context.Context, sess *domain.AnalysisSession) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	if sess.PendingMigration != nil {
		task := *sess.PendingMigration
		stored.PendingMigration = &task
	}
	s.sessions[sess.ProjectID] = stored
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, projectID)
	return nil
}

// fakeMigrator records the target versions it was asked to migrate to.
type fakeMigrator struct {
	mu       sync.Mutex
	targets  []int
	outcomes []domain.MigrationOutcome
	err      error
}

func (m *fakeMigrator) MigrateAlerts(_ context.Context, _ []domain.Alert, target *domain.Snapshot) ([]domain.MigrationOutcome, error) {
	return m.record(target)
}

func (m *fakeMigrator) MigrateProject(_ context.Context, _ string, target *domain.Snapshot) ([]domain.MigrationOutcome, error) {
	return m.record(target)
}

func (m *fakeMigrator) record(target *domain.Snapshot) ([]domain.MigrationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.targets = append(m.targets, target.Version)
	return m.outcomes, nil
}
