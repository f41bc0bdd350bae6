package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
	"github.com/custodia-labs/anclora/internal/core/ports/driving"
	"github.com/custodia-labs/anclora/internal/logger"
)

// Ensure SessionCoordinator implements the interface.
var _ driving.Coordinator = (*SessionCoordinator)(nil)

// SessionCoordinator manages per-project analysis sessions and decides when
// alert migration runs. Session registry mutations happen under a per-project
// lock; migration batches run outside any lock so long relocations never
// block imports or status queries on other projects.
//
// With a session store configured, every session mutation is written through
// and unknown projects are rehydrated from it, so the lifecycle spans
// separate processes (each CLI invocation constructs a fresh coordinator).
type SessionCoordinator struct {
	snapshots driven.SnapshotStore
	migrator  driving.Migrator
	store     driven.SessionStore

	// mu guards the two maps. Session field mutations are additionally
	// serialized by the project's own lock.
	mu       sync.Mutex
	sessions map[string]*domain.AnalysisSession
	locks    map[string]*sync.Mutex
}

// CoordinatorOption configures a SessionCoordinator.
type CoordinatorOption func(*SessionCoordinator)

// WithSessionStore persists sessions through the given store so the
// lifecycle survives coordinator re-construction.
func WithSessionStore(store driven.SessionStore) CoordinatorOption {
	return func(c *SessionCoordinator) {
		c.store = store
	}
}

// NewSessionCoordinator creates a coordinator over the given snapshot store
// and migrator.
func NewSessionCoordinator(snapshots driven.SnapshotStore, migrator driving.Migrator, opts ...CoordinatorOption) *SessionCoordinator {
	c := &SessionCoordinator{
		snapshots: snapshots,
		migrator:  migrator,
		sessions:  make(map[string]*domain.AnalysisSession),
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// projectLock returns the lock serializing all session and snapshot
// bookkeeping for one project, creating it on first use.
func (c *SessionCoordinator) projectLock(projectID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[projectID] = lock
	}
	return lock
}

// session returns the project's session, rehydrating from the session store
// on a registry miss. Callers must hold the project lock.
func (c *SessionCoordinator) session(ctx context.Context, projectID string) (*domain.AnalysisSession, error) {
	c.mu.Lock()
	sess, ok := c.sessions[projectID]
	c.mu.Unlock()
	if ok || c.store == nil {
		return sess, nil
	}

	stored, err := c.store.Get(ctx, projectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session for project %s: %w", projectID, err)
	}

	c.mu.Lock()
	c.sessions[projectID] = stored
	c.mu.Unlock()
	return stored, nil
}

// persist writes the session through to the store, then registers it. A
// failed write leaves the registry untouched so the error is retryable.
func (c *SessionCoordinator) persist(ctx context.Context, sess *domain.AnalysisSession) error {
	if c.store != nil {
		if err := c.store.Put(ctx, sess); err != nil {
			return fmt.Errorf("persisting session %s: %w", sess.ID, err)
		}
	}

	c.mu.Lock()
	c.sessions[sess.ProjectID] = sess
	c.mu.Unlock()
	return nil
}

// discard removes the session from the registry and the store.
func (c *SessionCoordinator) discard(ctx context.Context, projectID string) {
	c.mu.Lock()
	delete(c.sessions, projectID)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, projectID); err != nil {
		logger.Error("removing stored session for project %s: %v", projectID, err)
	}
}

// StartAnalysis creates a new snapshot, binds a PENDING session to it and
// registers the session as the project's active one.
func (c *SessionCoordinator) StartAnalysis(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*domain.AnalysisSession, error) {
	if projectID == "" || doc == nil {
		return nil, domain.ErrInvalidInput
	}

	lock := c.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := c.session(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if sess != nil && !sess.State.Terminal() {
		return nil, fmt.Errorf("%w: session %s is %s", domain.ErrSessionActive, sess.ID, sess.State)
	}

	snap, err := c.snapshots.Create(ctx, projectID, doc)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot for project %s: %w", projectID, err)
	}

	sess = &domain.AnalysisSession{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		SnapshotVersion: snap.Version,
		State:           domain.SessionPending,
		StartedAt:       time.Now(),
	}
	if err := c.persist(ctx, sess); err != nil {
		return nil, err
	}
	logger.Info("session %s started for project %s, bound to v%d", sess.ID, projectID, snap.Version)

	out := *sess
	return &out, nil
}

// MarkRunning transitions the project's session from PENDING to RUNNING.
func (c *SessionCoordinator) MarkRunning(ctx context.Context, projectID string) error {
	lock := c.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := c.session(ctx, projectID)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrNoActiveSession
	}
	if sess.State != domain.SessionPending {
		return fmt.Errorf("%w: cannot mark %s session as running", domain.ErrInvalidTransition, sess.State)
	}
	sess.State = domain.SessionRunning
	if err := c.persist(ctx, sess); err != nil {
		return err
	}
	logger.Debug("session %s now running", sess.ID)
	return nil
}

// Invalidate cancels a session that has not yet left PENDING. Once extraction
// is running the session must finish; invalidation never interrupts work.
func (c *SessionCoordinator) Invalidate(ctx context.Context, projectID string) error {
	lock := c.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := c.session(ctx, projectID)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrNoActiveSession
	}
	if sess.State != domain.SessionPending {
		return fmt.Errorf("%w: cannot invalidate %s session", domain.ErrInvalidTransition, sess.State)
	}
	sess.State = domain.SessionInvalidated
	c.discard(ctx, projectID)
	logger.Info("session %s invalidated", sess.ID)
	return nil
}

// HandleDocumentChange always creates a new snapshot. With an active session
// the session stays bound to its original version and a migration is recorded
// against it; without one, the project's alerts are migrated immediately.
func (c *SessionCoordinator) HandleDocumentChange(ctx context.Context, projectID string, doc *domain.ParsedDocument) (*driving.ChangeOutcome, error) {
	if projectID == "" || doc == nil {
		return nil, domain.ErrInvalidInput
	}

	lock := c.projectLock(projectID)
	lock.Lock()

	sess, err := c.session(ctx, projectID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	snap, err := c.snapshots.Create(ctx, projectID, doc)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("creating snapshot for project %s: %w", projectID, err)
	}
	outcome := &driving.ChangeOutcome{NewVersion: snap.Version}

	if sess != nil && !sess.State.Terminal() {
		if sess.PendingMigration == nil {
			sess.PendingMigration = &domain.MigrationTask{
				FromVersion: sess.SnapshotVersion,
				ToVersion:   snap.Version,
			}
		} else {
			// Repeated changes fold into one task targeting the newest
			// version; intermediate versions are skipped, not chained.
			sess.PendingMigration.ToVersion = snap.Version
		}
		err := c.persist(ctx, sess)
		lock.Unlock()
		if err != nil {
			return nil, err
		}
		outcome.Action = driving.ChangeDeferred
		outcome.MigrationNeeded = true
		logger.Info("document change on project %s deferred behind session %s", projectID, sess.ID)
		return outcome, nil
	}
	lock.Unlock()

	// No active session: relocation runs now, outside the project lock.
	results, err := c.migrator.MigrateProject(ctx, projectID, snap)
	if err != nil {
		return nil, fmt.Errorf("migrating project %s to v%d: %w", projectID, snap.Version, err)
	}
	if len(results) == 0 {
		outcome.Action = driving.ChangeNone
	} else {
		outcome.Action = driving.ChangeMigrated
	}
	return outcome, nil
}

// CompleteAnalysis transitions the session to COMPLETED and, when the
// document changed during the session, runs the pending migration against the
// latest snapshot via the MIGRATING state. Changes arriving while the batch
// runs fold into a fresh pending task, so the loop drains until the alerts
// are current. The session is always removed from the registry on return.
func (c *SessionCoordinator) CompleteAnalysis(ctx context.Context, projectID string) error {
	lock := c.projectLock(projectID)
	lock.Lock()

	sess, err := c.session(ctx, projectID)
	if err != nil {
		lock.Unlock()
		return err
	}
	if sess == nil {
		lock.Unlock()
		return domain.ErrNoActiveSession
	}
	if sess.State != domain.SessionRunning {
		lock.Unlock()
		return fmt.Errorf("%w: cannot complete %s session", domain.ErrInvalidTransition, sess.State)
	}
	sess.State = domain.SessionCompleted

	for sess.PendingMigration != nil {
		task := *sess.PendingMigration
		sess.PendingMigration = nil
		sess.State = domain.SessionMigrating
		if err := c.persist(ctx, sess); err != nil {
			lock.Unlock()
			return err
		}
		lock.Unlock()

		// The batch always targets the newest snapshot, which may be
		// ahead of the version the task recorded.
		target, err := c.snapshots.Latest(ctx, projectID)
		if err == nil && target.Version > task.FromVersion {
			_, err = c.migrator.MigrateProject(ctx, projectID, target)
		}
		if err != nil {
			c.discard(ctx, projectID)
			return fmt.Errorf("completing session %s: %w", sess.ID, err)
		}

		lock.Lock()
		sess.State = domain.SessionCompleted
	}

	c.discard(ctx, projectID)
	lock.Unlock()
	logger.Info("session %s completed", sess.ID)
	return nil
}

// View returns the read-only session projection for a project.
func (c *SessionCoordinator) View(ctx context.Context, projectID string) (*driving.SessionView, error) {
	lock := c.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := c.snapshots.LatestVersion(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("reading latest version of project %s: %w", projectID, err)
	}

	view := &driving.SessionView{ProjectID: projectID, LatestVersion: latest}
	sess, err := c.session(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		view.HasSession = true
		view.State = sess.State
		view.BoundVersion = sess.SnapshotVersion
		view.Migrating = sess.State == domain.SessionMigrating
	}
	return view, nil
}
