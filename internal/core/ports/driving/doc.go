// Package driving defines the interfaces through which the outside world
// drives the engine.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI and watcher adapters depend on these interfaces; core services
// implement them.
//
//   - Coordinator: Analysis session lifecycle and document-change handling
//   - Migrator: Batch relocation of a project's alerts to a newer snapshot
//
// The SessionView projection is observational only and carries no write
// authority back into the engine.
package driving
