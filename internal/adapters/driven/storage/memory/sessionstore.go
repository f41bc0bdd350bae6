package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.AnalysisSession
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.AnalysisSession),
	}
}

// Get retrieves the stored session for a project.
func (s *SessionStore) Get(_ context.Context, projectID string) (*domain.AnalysisSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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

// Put stores a copy of the session, replacing any previous one.
func (s *SessionStore) Put(_ context.Context, sess *domain.AnalysisSession) error {
	if sess == nil || sess.ProjectID == "" {
		return domain.ErrInvalidInput
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

// Delete removes the project's stored session.
func (s *SessionStore) Delete(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, projectID)
	return nil
}
