// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: document/segment/chunk persistence with atomic replace
//   - ChunkSearcher: nearest-neighbour retrieval over stored chunks
//   - EmbeddingService: turns text into fixed-length normalised vectors
//   - Extractor / ExtractorRegistry: file content extraction
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - VectorIndex: the native similarity index (HNSWlib bindings). The
//     store probes it at construction and falls back to brute-force
//     cosine search when it is unavailable; callers never notice.
//   - FileSource: the watched directory tree. Only needed in watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
