// Package domain defines the core business entities for Anclora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Snapshot: Immutable versioned full text + structural index of a document
//   - Anchor: A resilient reference to a span of text within a snapshot
//   - RelocationResult: The outcome of re-finding an anchor in a newer snapshot
//   - AnalysisSession: One analysis run bound to exactly one snapshot version
//   - Alert: A finding raised against a document, positioned via its Anchor
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
