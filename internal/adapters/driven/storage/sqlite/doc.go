// Package sqlite provides the SQLite-backed implementation of the
// document store and chunk search ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. A single
// database connection backs both interfaces:
//
//   - DocumentStore: document, segment, and chunk persistence
//   - ChunkSearcher: nearest-neighbour retrieval over stored chunks
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Chunk embeddings are stored inline as
// little-endian float32 BLOBs.
//
// # Search Strategy
//
// At construction the store probes the native vector index once. When
// the probe reports domain.ErrNotImplemented (a build without the HNSW
// bindings), every search runs as a brute-force cosine scan over the
// chunks table instead. Both strategies produce the same result shape.
//
// # Data Location
//
// By default, the database is stored at ~/.pocketmcp/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
