// Package tui provides an interactive terminal user interface for PocketMCP.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides semantic search over the index.
	Search driving.Searcher

	// Documents provides index statistics for the status bar.
	Documents driving.DocumentReader
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.Searcher, documents driving.DocumentReader) *Ports {
	return &Ports{
		Search:    search,
		Documents: documents,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearcher
	}
	if p.Documents == nil {
		return ErrMissingDocumentReader
	}
	return nil
}
