package driving

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// Searcher answers similarity queries over the index.
type Searcher interface {
	// Search embeds the query and returns the nearest chunks as
	// matches with stable resource addresses. An empty or nonexistent
	// index yields an empty list, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error)

	// Strategy reports the active search strategy, for diagnostics.
	Strategy() string
}
