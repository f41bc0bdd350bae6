// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - SnapshotStore: Append-only versioned snapshot persistence
//   - AlertStore: Alert persistence and the migration idempotency ledger
//   - SessionStore: Active analysis session persistence across restarts
//
// # Boundary Interfaces
//
// These represent external collaborators specified only at their boundary:
//
//   - DocumentParser: Turns a raw file into structured text
//   - ExtractionPipeline: Produces findings for a snapshot (opaque black box)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
