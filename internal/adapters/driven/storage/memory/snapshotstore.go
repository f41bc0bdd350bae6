package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
// Snapshots are kept as an append-only arena indexed by version number.
type SnapshotStore struct {
	mu sync.RWMutex
	// byProject maps project ID to snapshots ordered by version (index 0
	// holds version 1). Entries are never mutated after insertion.
	byProject map[string][]*domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		byProject: make(map[string][]*domain.Snapshot),
	}
}

// Create captures a new snapshot with version max(existing)+1.
// The lock serializes version assignment under concurrent imports.
func (s *SnapshotStore) Create(_ context.Context, projectID string, doc *domain.ParsedDocument) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := len(s.byProject[projectID]) + 1
	snap, err := domain.NewSnapshot(projectID, version, doc)
	if err != nil {
		return nil, err
	}

	s.byProject[projectID] = append(s.byProject[projectID], snap)
	return snap, nil
}

// Get retrieves one snapshot by project and version.
func (s *SnapshotStore) Get(_ context.Context, projectID string, version int) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.byProject[projectID]
	if version < 1 || version > len(snaps) {
		return nil, domain.ErrNotFound
	}
	return snaps[version-1], nil
}

// Latest retrieves the highest-version snapshot for a project.
func (s *SnapshotStore) Latest(_ context.Context, projectID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.byProject[projectID]
	if len(snaps) == 0 {
		return nil, domain.ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

// LatestVersion returns the highest version number, or 0 without snapshots.
func (s *SnapshotStore) LatestVersion(_ context.Context, projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byProject[projectID]), nil
}
