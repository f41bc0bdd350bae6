package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// snapshotOf builds a single-chapter snapshot from paragraphs joined by "\n\n".
func snapshotOf(t *testing.T, version int, paragraphs ...string) *domain.Snapshot {
	t.Helper()
	doc := docOf(paragraphs...)
	snap, err := domain.NewSnapshot("p1", version, doc)
	require.NoError(t, err)
	return snap
}

// docOf builds the parsed document the snapshot helpers and the coordinator
// tests share.
func docOf(paragraphs ...string) *domain.ParsedDocument {
	doc := &domain.ParsedDocument{}
	ch := domain.ParsedChapter{}
	offset := 0
	for i, p := range paragraphs {
		if i > 0 {
			doc.FullText += "\n\n"
			offset += 2
		}
		ch.Paragraphs = append(ch.Paragraphs, domain.ParsedParagraph{Start: offset, End: offset + len(p)})
		doc.FullText += p
		offset += len(p)
	}
	doc.Chapters = []domain.ParsedChapter{ch}
	return doc
}

// anchorOn creates an anchor on the first occurrence of text in the snapshot.
func anchorOn(t *testing.T, snap *domain.Snapshot, text string) *domain.Anchor {
	t.Helper()
	start := strings.Index(snap.FullText, text)
	require.GreaterOrEqual(t, start, 0, "anchor text not present in snapshot")
	chapter, paragraph, err := snap.Locate(start)
	require.NoError(t, err)
	anchor, err := domain.NewAnchor(snap, chapter, paragraph, 0, start, start+len(text))
	require.NoError(t, err)
	return anchor
}

func alertWith(id string, status domain.AlertStatus, anchor *domain.Anchor) *domain.Alert {
	return &domain.Alert{
		ID:          id,
		ProjectID:   "p1",
		Description: "atributo inconsistente",
		Severity:    "warning",
		Status:      status,
		Anchor:      *anchor,
		CreatedAt:   time.Now(),
	}
}

func TestMigrateAlerts_ExactMatchUpdatesAnchorSilently(t *testing.T) {
	v1 := snapshotOf(t, 1,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran verdes.",
		"El viento soplaba desde el norte.",
	)
	anchor := anchorOn(t, v1, "sus ojos eran verdes")

	v2 := snapshotOf(t, 2,
		"Prólogo añadido mucho después.",
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran verdes.",
		"El viento soplaba desde el norte.",
	)

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusPending, anchor)))

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].Err)
	assert.Equal(t, domain.MethodExact, outcomes[0].Result.Method)
	assert.Equal(t, domain.StatusPending, outcomes[0].Status)
	assert.False(t, outcomes[0].NoteAppended)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, 2, got.Anchor.SnapshotVersion)
	assert.Equal(t, strings.Index(v2.FullText, "sus ojos eran verdes"), got.Anchor.CharStart)
	assert.Empty(t, got.AuditLog, "silent update, no note")

	_, err = store.GetMigration(ctx, "a1", 2)
	assert.NoError(t, err, "outcome must land in the ledger")
}

func TestMigrateAlerts_ChangedTextNeedsReverification(t *testing.T) {
	v1 := snapshotOf(t, 1,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran verdes.",
		"El viento soplaba desde el norte.",
	)
	anchor := anchorOn(t, v1, "sus ojos eran verdes")

	v2 := snapshotOf(t, 2,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran azules.",
		"El viento soplaba desde el norte.",
	)

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusPending, anchor)))

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusNeedsReverification, outcomes[0].Status)
	assert.True(t, outcomes[0].NoteAppended)
	assert.True(t, outcomes[0].Result.TextChanged)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReverification, got.Status)
	assert.Equal(t, "sus ojos eran azules", got.Anchor.ReferencedText)
	require.Len(t, got.AuditLog, 1)
	assert.Contains(t, got.AuditLog[0].Note, "relocated to v2 via context")
}

func TestMigrateAlerts_SettledAlertKeepsStatusOnChange(t *testing.T) {
	v1 := snapshotOf(t, 1,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran verdes.",
		"El viento soplaba desde el norte.",
	)
	anchor := anchorOn(t, v1, "sus ojos eran verdes")

	v2 := snapshotOf(t, 2,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran azules.",
		"El viento soplaba desde el norte.",
	)

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusResolved, anchor)))

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusResolved, outcomes[0].Status, "settled alerts are never resurfaced")
	assert.True(t, outcomes[0].NoteAppended)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
	require.Len(t, got.AuditLog, 1)
}

func TestMigrateAlerts_LostText(t *testing.T) {
	v1 := snapshotOf(t, 1,
		"Una mañana clara sobre la sierra.",
		"Al amanecer, sus ojos eran verdes.",
		"El viento soplaba desde el norte.",
	)
	anchor := anchorOn(t, v1, "sus ojos eran verdes")

	v2 := snapshotOf(t, 2,
		"Texto completamente distinto en todos los sentidos.",
		"Ninguna de las frases originales sobrevive aquí.",
	)

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("activa", domain.StatusPending, anchor)))
	require.NoError(t, store.Save(ctx, alertWith("cerrada", domain.StatusDismissed, anchor)))

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	active, err := store.Get(ctx, "activa")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRelocationFailed, active.Status)
	require.Len(t, active.AuditLog, 1)
	assert.Contains(t, active.AuditLog[0].Note, "text not found in v2")
	assert.Equal(t, 1, active.Anchor.SnapshotVersion, "anchor keeps the last version the text was seen at")

	settled, err := store.Get(ctx, "cerrada")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusObsolete, settled.Status)
}

func TestMigrateAlerts_LedgerReplayIsNoOp(t *testing.T) {
	v1 := snapshotOf(t, 1, "Al amanecer, sus ojos eran verdes.")
	anchor := anchorOn(t, v1, "sus ojos eran verdes")
	v2 := snapshotOf(t, 2, "Al amanecer, sus ojos eran azules.")

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusPending, anchor)))
	m := NewMigrator(store)

	first, err := m.MigrateAlerts(ctx, mustList(t, store, "p1"), v2)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Replayed)

	second, err := m.MigrateAlerts(ctx, mustList(t, store, "p1"), v2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Replayed)
	assert.Equal(t, first[0].Status, second[0].Status)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, got.AuditLog, 1, "replay must not append a second note")
}

func TestMigrateAlerts_BackwardMigrationIsIsolated(t *testing.T) {
	v1 := snapshotOf(t, 1, "Primera frase estable.", "Segunda frase estable.")
	okAnchor := anchorOn(t, v1, "Primera frase estable.")

	// An anchor claiming a newer origin than the target version.
	badAnchor := *okAnchor
	badAnchor.SnapshotVersion = 5

	v2 := snapshotOf(t, 2, "Primera frase estable.", "Segunda frase estable.", "Cierre.")

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("adelantada", domain.StatusPending, &badAnchor)))
	require.NoError(t, store.Save(ctx, alertWith("normal", domain.StatusPending, okAnchor)))

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err, "per-alert failures never fail the batch")
	require.Len(t, outcomes, 2)

	assert.NotEmpty(t, outcomes[0].Err)
	_, err = store.GetMigration(ctx, "adelantada", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound, "failed alerts get no ledger entry")
	untouched, err := store.Get(ctx, "adelantada")
	require.NoError(t, err)
	assert.Equal(t, 5, untouched.Anchor.SnapshotVersion)

	assert.Empty(t, outcomes[1].Err)
	assert.Equal(t, domain.MethodExact, outcomes[1].Result.Method)
}

func TestMigrateAlerts_StoreErrorIsIsolated(t *testing.T) {
	v1 := snapshotOf(t, 1, "Frase que sobrevive tal cual.")
	anchor := anchorOn(t, v1, "Frase que sobrevive tal cual.")
	v2 := snapshotOf(t, 2, "Preámbulo.", "Frase que sobrevive tal cual.")

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusPending, anchor)))
	store.updateAnchorErr = errors.New("disk full")

	outcomes, err := NewMigrator(store).MigrateAlerts(ctx, mustList(t, store, "p1"), v2)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Contains(t, outcomes[0].Err, "disk full")

	_, err = store.GetMigration(ctx, "a1", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound, "a failed write-back must stay retryable")
}

func TestMigrateProject(t *testing.T) {
	v1 := snapshotOf(t, 1, "Texto original del proyecto.")
	anchor := anchorOn(t, v1, "Texto original")
	v2 := snapshotOf(t, 2, "Texto original del proyecto, ampliado.")

	store := newFakeAlertStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, alertWith("a1", domain.StatusPending, anchor)))
	m := NewMigrator(store)

	outcomes, err := m.MigrateProject(ctx, "p1", v2)
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)

	// A project without alerts migrates to nothing.
	outcomes, err = m.MigrateProject(ctx, "vacío", v2)
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	_, err = m.MigrateProject(ctx, "p1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func mustList(t *testing.T, store *fakeAlertStore, projectID string) []domain.Alert {
	t.Helper()
	alerts, err := store.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	return alerts
}
