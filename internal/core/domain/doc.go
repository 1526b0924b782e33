// Package domain defines the core business entities for sercha-ingest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: One unit fetched from an upstream source
//   - Fragment: A typed payload extracted from an Item
//   - Document: The persisted output derived from fragments
//   - Cursor: The durable high-water mark of processed items
//   - RunResult: The outcome of one worker run
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
