// Package domain defines the core business entities for PocketMCP.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a logical source item (file, URL, or raw text)
//   - Segment: a logical division of a document (page or section)
//   - Chunk: a bounded slice of a segment, the unit of embedding and retrieval
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
