// Package mcp provides the Model Context Protocol server adapter.
// It exposes the index to MCP clients as tools (search, upsert,
// delete, list, rescan) and doc:// resources for exact chunk reads.
package mcp

import "errors"

// Errors returned when a required port is not provided.
var (
	ErrMissingSearcher       = errors.New("mcp: searcher is required")
	ErrMissingIngestor       = errors.New("mcp: ingestor is required")
	ErrMissingDocumentReader = errors.New("mcp: document reader is required")

	// ErrWatcherUnavailable is returned by the rescan tool when the
	// server was built without a watcher.
	ErrWatcherUnavailable = errors.New("mcp: no watcher configured")
)
