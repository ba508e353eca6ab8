package driven

import "context"

// VectorIndex is the native similarity index over chunk vectors.
// Backed by HNSWlib for approximate nearest-neighbour search.
//
// Builds without the native bindings ship a stub whose operations
// return domain.ErrNotImplemented; the store's capability probe
// detects this and selects the fallback strategy instead.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a native index search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the index's distance metric (cosine distance:
	// 0 identical, growing with dissimilarity).
	Distance float64
}
