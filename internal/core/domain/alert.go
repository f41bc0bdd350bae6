package domain

import (
	"fmt"
	"time"
)

// AlertStatus is the migration-relevant status of an alert.
type AlertStatus string

const (
	// StatusPending means the alert awaits user review.
	StatusPending AlertStatus = "pending"

	// StatusNeedsReverification means the alert's text changed during a
	// migration and the finding should be re-checked.
	StatusNeedsReverification AlertStatus = "needs_reverification"

	// StatusResolved means the user addressed the finding.
	StatusResolved AlertStatus = "resolved"

	// StatusDismissed means the user rejected the finding.
	StatusDismissed AlertStatus = "dismissed"

	// StatusRelocationFailed means an active alert's text could not be
	// re-found. Surfaced to the user, never hidden.
	StatusRelocationFailed AlertStatus = "relocation_failed"

	// StatusObsolete means a settled alert's text disappeared.
	StatusObsolete AlertStatus = "obsolete"
)

// Active reports whether the alert still demands user attention.
// Active alerts that cannot be relocated become relocation_failed;
// settled ones become obsolete.
func (s AlertStatus) Active() bool {
	return s == StatusPending || s == StatusNeedsReverification
}

// Settled reports whether the user already acted on the alert.
func (s AlertStatus) Settled() bool {
	return s == StatusResolved || s == StatusDismissed
}

// Alert is a finding raised against a document. The engine owns only its
// anchor, status and audit log; the finding's meaning belongs to the
// extraction pipeline.
type Alert struct {
	// ID is the unique alert identifier.
	ID string

	// ProjectID identifies the owning project.
	ProjectID string

	// Description is the finding text, opaque to this engine.
	Description string

	// Severity is the pipeline-assigned severity, opaque to this engine.
	Severity string

	// Status is the current lifecycle status.
	Status AlertStatus

	// Anchor positions the alert in the document. Updated by migration.
	Anchor Anchor

	// AuditLog is the append-only history of migration notes.
	AuditLog []AuditNote

	// CreatedAt is when the alert was raised.
	CreatedAt time.Time

	// UpdatedAt is when the alert was last modified.
	UpdatedAt time.Time
}

// AuditNote is one free-text entry in an alert's audit log.
type AuditNote struct {
	// At is when the note was appended.
	At time.Time

	// Note is the free-text content.
	Note string
}

// Finding is the extraction pipeline's output for one detected issue.
// This engine consumes only the Anchor; description and severity pass
// through to the alert store untouched.
type Finding struct {
	// Description is the finding text.
	Description string

	// Severity is the pipeline-assigned severity.
	Severity string

	// Anchor positions the finding in the analysed snapshot.
	Anchor Anchor
}

// MigrationOutcome records what migration did to one alert for one target
// version. The (AlertID, ToVersion) pair is the idempotency key: re-applying
// a recorded migration is a no-op returning the stored outcome.
type MigrationOutcome struct {
	// AlertID identifies the migrated alert.
	AlertID string

	// ToVersion is the target snapshot version.
	ToVersion int

	// Result is the relocation outcome applied to the alert.
	Result RelocationResult

	// Status is the alert's status after applying the transition table.
	Status AlertStatus

	// NoteAppended is true when an audit note was added.
	NoteAppended bool

	// Replayed is true when the outcome was read from the idempotency
	// ledger instead of recomputed.
	Replayed bool

	// Err holds a per-alert fatal data error (invalid anchor, corrupt
	// snapshot). The alert is left untouched and no ledger entry is made.
	Err string
}

// MigrationNote formats the audit note appended when a relocated alert's
// text changed.
func MigrationNote(toVersion int, r RelocationResult) string {
	return fmt.Sprintf("relocated to v%d via %s (confidence %.2f), text changed",
		toVersion, r.Method, r.Confidence)
}
