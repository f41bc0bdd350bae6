// Package services contains the core business logic for Anclora.
//
// Services implement the driving ports and depend only on domain types,
// driven ports and the relocation cascade:
//
//   - Coordinator: Analysis session lifecycle, per-project locking, and the
//     decision of when alert migration runs
//   - Migrator: Batch relocation of a project's alerts to a newer snapshot
//
// # Import Rules
//
//   - Can Import: domain, ports, relocate, logger
//   - Cannot Import: Any adapter package
package services
