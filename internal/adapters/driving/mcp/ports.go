package mcp

import (
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers similarity queries.
	Search driving.Searcher

	// Ingest upserts and deletes documents.
	Ingest driving.Ingestor

	// Documents provides read access to indexed documents.
	Documents driving.DocumentReader

	// Watch drives rescans. Optional: without it the rescan tool
	// reports that no watcher is configured.
	Watch driving.Watcher
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearcher
	}
	if p.Ingest == nil {
		return ErrMissingIngestor
	}
	if p.Documents == nil {
		return ErrMissingDocumentReader
	}
	return nil
}
