package driven

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// ChunkSearcher performs nearest-neighbour retrieval over stored chunks.
//
// The store selects one of two strategies at construction time: the
// native vector index when its capability probe succeeds, brute-force
// cosine otherwise. Both produce the same result shape; which one is
// active shows up only in diagnostics, never in the call contract.
type ChunkSearcher interface {
	// SearchChunks returns up to k hits for the query vector, ordered
	// by descending score, ties broken by insertion order. An empty
	// docIDs slice means no document filter.
	SearchChunks(ctx context.Context, query []float32, k int, docIDs []string) ([]ChunkHit, error)

	// StrategyName reports which strategy is active ("native" or
	// "fallback"), for diagnostics.
	StrategyName() string
}

// ChunkHit is one similarity search result, hydrated from storage.
type ChunkHit struct {
	// Chunk is the matched chunk with text and offsets.
	Chunk domain.Chunk

	// DocTitle is the parent document's title.
	DocTitle string

	// Score is the similarity score. The native strategy reports
	// clamp(1−distance, 0, 1); the fallback reports raw cosine.
	Score float64
}
