package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

func sampleAlert(id, projectID string) *domain.Alert {
	return &domain.Alert{
		ID:          id,
		ProjectID:   projectID,
		Description: "atributo inconsistente",
		Severity:    "warning",
		Status:      domain.StatusPending,
		Anchor: domain.Anchor{
			SnapshotVersion: 1,
			CharStart:       10,
			CharEnd:         30,
			ReferencedText:  "sus ojos eran verdes",
		},
		CreatedAt: time.Now(),
	}
}

func TestAlertStore_SaveGetList(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleAlert("a1", "p1")))
	require.NoError(t, store.Save(ctx, sampleAlert("a2", "p1")))
	require.NoError(t, store.Save(ctx, sampleAlert("b1", "p2")))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProjectID)

	list, err := store.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Save(ctx, &domain.Alert{}), domain.ErrInvalidInput)
}

func TestAlertStore_UpdateAnchorAppendsNote(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleAlert("a1", "p1")))

	newAnchor := domain.Anchor{
		SnapshotVersion: 2,
		CharStart:       50,
		CharEnd:         70,
		ReferencedText:  "sus ojos eran azules",
	}
	err := store.UpdateAnchor(ctx, "a1", newAnchor, domain.StatusNeedsReverification, "relocated with confidence 0.72")
	require.NoError(t, err)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReverification, got.Status)
	assert.Equal(t, 50, got.Anchor.CharStart)
	require.Len(t, got.AuditLog, 1)
	assert.Contains(t, got.AuditLog[0].Note, "0.72")

	// Empty note appends nothing.
	require.NoError(t, store.UpdateAnchor(ctx, "a1", newAnchor, domain.StatusNeedsReverification, ""))
	got, err = store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, got.AuditLog, 1)

	assert.ErrorIs(t, store.UpdateAnchor(ctx, "nope", newAnchor, domain.StatusPending, ""), domain.ErrNotFound)
}

func TestAlertStore_UpdateStatus(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleAlert("a1", "p1")))

	require.NoError(t, store.UpdateStatus(ctx, "a1", domain.StatusRelocationFailed, "text not found in v3"))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRelocationFailed, got.Status)
	require.Len(t, got.AuditLog, 1)
}

func TestAlertStore_MigrationLedgerIdempotency(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	outcome := &domain.MigrationOutcome{
		AlertID:   "a1",
		ToVersion: 3,
		Status:    domain.StatusNeedsReverification,
		Result:    domain.RelocationResult{Found: true, Method: domain.MethodContext, Confidence: 0.72},
	}

	_, err := store.GetMigration(ctx, "a1", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.RecordMigration(ctx, outcome))

	// Re-recording the same key is a no-op, not an error.
	altered := *outcome
	altered.Status = domain.StatusObsolete
	require.NoError(t, store.RecordMigration(ctx, &altered))

	got, err := store.GetMigration(ctx, "a1", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReverification, got.Status, "first recording wins")
}
