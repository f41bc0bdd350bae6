package driven

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// SessionStore persists the project's active analysis session so the
// lifecycle survives process restarts. At most one session is stored per
// project; terminal sessions are deleted, not kept.
type SessionStore interface {
	// Get retrieves the stored session for a project.
	// Returns domain.ErrNotFound when no session is stored.
	Get(ctx context.Context, projectID string) (*domain.AnalysisSession, error)

	// Put stores the session, replacing any previous one for the project.
	Put(ctx context.Context, sess *domain.AnalysisSession) error

	// Delete removes the project's stored session. Deleting a project
	// without a stored session is a no-op.
	Delete(ctx context.Context, projectID string) error
}
