// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Matches []domain.Match
	Err     error
}

// StatsLoaded carries index statistics for the status bar.
type StatsLoaded struct {
	Stats *domain.IndexStats
	Err   error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
