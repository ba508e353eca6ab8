package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// SearchService answers similarity queries: it embeds the query text
// and delegates nearest-neighbour retrieval to whichever strategy the
// store selected at startup.
type SearchService struct {
	embedder driven.EmbeddingService
	searcher driven.ChunkSearcher
}

// NewSearchService creates a search service.
func NewSearchService(embedder driven.EmbeddingService, searcher driven.ChunkSearcher) *SearchService {
	return &SearchService{
		embedder: embedder,
		searcher: searcher,
	}
}

// Search embeds the query and returns the top matches. An empty query
// is a validation error; an empty index yields an empty list.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	// 1. VALIDATE
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	k := opts.TopK
	if k <= 0 {
		k = domain.DefaultTopK
	}

	// 2. EMBED THE QUERY
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 3. RETRIEVE
	hits, err := s.searcher.SearchChunks(ctx, vector, k, opts.DocIDs)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	// 4. SHAPE MATCHES
	matches := make([]domain.Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, domain.Match{
			ChunkID:  hit.Chunk.ID,
			DocID:    hit.Chunk.DocumentID,
			Title:    hit.DocTitle,
			Score:    hit.Score,
			Preview:  preview(hit.Chunk.Text),
			Text:     hit.Chunk.Text,
			Resource: domain.ResourceAddress(hit.Chunk.DocumentID, hit.Chunk.ID),
		})
	}

	logger.Debug("Returning %d matches (strategy: %s)", len(matches), s.searcher.StrategyName())
	return matches, nil
}

// Strategy reports the active retrieval strategy, for diagnostics.
func (s *SearchService) Strategy() string {
	return s.searcher.StrategyName()
}

// preview truncates chunk text to the preview limit, in runes so a
// multibyte character is never split.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= domain.PreviewLimit {
		return text
	}
	return string(runes[:domain.PreviewLimit]) + "…"
}
