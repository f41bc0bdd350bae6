package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
	"github.com/custodia-labs/anclora/internal/core/ports/driving"
	"github.com/custodia-labs/anclora/internal/logger"
	"github.com/custodia-labs/anclora/internal/relocate"
)

// Ensure Migrator implements the interface.
var _ driving.Migrator = (*Migrator)(nil)

// defaultMigrationWorkers bounds the parallel relocation phase.
const defaultMigrationWorkers = 4

// Migrator relocates stored alerts to newer snapshots in two phases:
// a parallel, read-only relocation phase followed by a sequential
// write-back phase that applies the status transition table and records
// each outcome in the idempotency ledger.
type Migrator struct {
	alerts  driven.AlertStore
	cascade *relocate.Cascade
	workers int
}

// MigratorOption configures a Migrator.
type MigratorOption func(*Migrator)

// WithCascade replaces the default relocation cascade.
func WithCascade(c *relocate.Cascade) MigratorOption {
	return func(m *Migrator) {
		if c != nil {
			m.cascade = c
		}
	}
}

// WithMigrationWorkers sets the relocation-phase parallelism.
func WithMigrationWorkers(n int) MigratorOption {
	return func(m *Migrator) {
		if n > 0 {
			m.workers = n
		}
	}
}

// NewMigrator creates a migration processor backed by the given alert store.
func NewMigrator(alerts driven.AlertStore, opts ...MigratorOption) *Migrator {
	m := &Migrator{
		alerts:  alerts,
		cascade: relocate.New(),
		workers: defaultMigrationWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MigrateProject loads all of a project's alerts and migrates them to the
// target snapshot.
func (m *Migrator) MigrateProject(ctx context.Context, projectID string, target *domain.Snapshot) ([]domain.MigrationOutcome, error) {
	if target == nil {
		return nil, domain.ErrInvalidInput
	}
	alerts, err := m.alerts.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing alerts for project %s: %w", projectID, err)
	}
	return m.MigrateAlerts(ctx, alerts, target)
}

// MigrateAlerts relocates each alert against the target snapshot and applies
// the status transition table:
//
//	found, text unchanged   -> anchor updated silently, status kept
//	found, text changed     -> active alerts become needs_reverification with
//	                           an audit note; settled alerts keep their status
//	                           and only gain the note
//	not found               -> active alerts become relocation_failed; settled
//	                           alerts become obsolete
//
// Alerts whose (ID, target.Version) key is already in the ledger are replayed
// without touching the store. A per-alert data error (invalid anchor, corrupt
// coordinates) is reported in that alert's outcome and isolates the rest of
// the batch; no ledger entry is written for it so a later run can retry.
func (m *Migrator) MigrateAlerts(ctx context.Context, alerts []domain.Alert, target *domain.Snapshot) ([]domain.MigrationOutcome, error) {
	if target == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	logger.Debug("migrating %d alerts of project %s to v%d", len(alerts), target.ProjectID, target.Version)

	outcomes := make([]domain.MigrationOutcome, len(alerts))

	// Phase 1: relocation. Read-only against the store, so it can run in
	// parallel without holding any project lock.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i := range alerts {
		i := i
		g.Go(func() error {
			outcomes[i] = m.plan(gctx, &alerts[i], target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 2: write-back. Sequential, so audit notes and ledger entries
	// land in batch order.
	for i := range alerts {
		m.apply(ctx, &alerts[i], target, &outcomes[i])
	}

	return outcomes, nil
}

// plan computes the relocation for one alert without writing anything.
func (m *Migrator) plan(ctx context.Context, alert *domain.Alert, target *domain.Snapshot) domain.MigrationOutcome {
	outcome := domain.MigrationOutcome{AlertID: alert.ID, ToVersion: target.Version}

	prev, err := m.alerts.GetMigration(ctx, alert.ID, target.Version)
	if err == nil {
		logger.Debug("alert %s already migrated to v%d, replaying ledger entry", alert.ID, target.Version)
		replayed := *prev
		replayed.Replayed = true
		return replayed
	}
	if !errors.Is(err, domain.ErrNotFound) {
		outcome.Err = err.Error()
		return outcome
	}

	task := domain.MigrationTask{FromVersion: alert.Anchor.SnapshotVersion, ToVersion: target.Version}
	if err := task.Validate(); err != nil {
		outcome.Err = fmt.Sprintf("alert %s anchored at v%d: %v", alert.ID, alert.Anchor.SnapshotVersion, err)
		return outcome
	}

	result, err := m.cascade.Relocate(&alert.Anchor, target)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.Result = result
	return outcome
}

// apply writes one planned outcome back to the alert store and records it in
// the ledger. Replayed and errored outcomes are left untouched.
func (m *Migrator) apply(ctx context.Context, alert *domain.Alert, target *domain.Snapshot, outcome *domain.MigrationOutcome) {
	if outcome.Replayed {
		return
	}
	if outcome.Err != "" {
		logger.Error("alert %s not migrated to v%d: %s", alert.ID, target.Version, outcome.Err)
		return
	}

	var err error
	if outcome.Result.Found {
		err = m.applyRelocated(ctx, alert, target, outcome)
	} else {
		err = m.applyLost(ctx, alert, target, outcome)
	}
	if err != nil {
		outcome.Err = err.Error()
		logger.Error("alert %s not migrated to v%d: %s", alert.ID, target.Version, outcome.Err)
		return
	}

	if err := m.alerts.RecordMigration(ctx, outcome); err != nil {
		outcome.Err = err.Error()
	}
}

// applyRelocated re-anchors the alert at the relocated span. The new anchor
// is derived from the target snapshot, so it captures the matched text and
// fresh context.
func (m *Migrator) applyRelocated(ctx context.Context, alert *domain.Alert, target *domain.Snapshot, outcome *domain.MigrationOutcome) error {
	r := outcome.Result
	anchor, err := domain.NewAnchor(target, r.NewChapter, r.NewParagraph, alert.Anchor.SentenceIndex, r.NewCharStart, r.NewCharEnd)
	if err != nil {
		return fmt.Errorf("re-anchoring alert %s: %w", alert.ID, err)
	}

	switch {
	case !r.TextChanged:
		outcome.Status = alert.Status
		return m.alerts.UpdateAnchor(ctx, alert.ID, *anchor, alert.Status, "")
	case alert.Status.Settled():
		// The user already acted on this alert; the note preserves the
		// history without resurfacing it.
		outcome.Status = alert.Status
		outcome.NoteAppended = true
		return m.alerts.UpdateAnchor(ctx, alert.ID, *anchor, alert.Status, domain.MigrationNote(target.Version, r))
	default:
		outcome.Status = domain.StatusNeedsReverification
		outcome.NoteAppended = true
		return m.alerts.UpdateAnchor(ctx, alert.ID, *anchor, outcome.Status, domain.MigrationNote(target.Version, r))
	}
}

// applyLost handles an alert whose text could not be re-found. The record is
// never deleted; active alerts surface the failure, settled ones age out.
func (m *Migrator) applyLost(ctx context.Context, alert *domain.Alert, target *domain.Snapshot, outcome *domain.MigrationOutcome) error {
	if alert.Status.Settled() {
		outcome.Status = domain.StatusObsolete
	} else {
		outcome.Status = domain.StatusRelocationFailed
	}
	outcome.NoteAppended = true
	note := fmt.Sprintf("text not found in v%d, last seen at v%d", target.Version, alert.Anchor.SnapshotVersion)
	return m.alerts.UpdateStatus(ctx, alert.ID, outcome.Status, note)
}
