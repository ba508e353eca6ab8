package driving

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// DocumentReader exposes read access to indexed documents.
type DocumentReader interface {
	// List returns one page of documents ordered by UpdatedAt
	// descending. Limit below one falls back to a sensible default.
	List(ctx context.Context, limit int, cursor string) (*domain.DocumentPage, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, docID string) (*domain.Document, error)

	// ReadResource resolves a chunk address to its stored text,
	// offsets, and parent document metadata. Unknown chunks return
	// domain.ErrNotFound.
	ReadResource(ctx context.Context, docID, chunkID string) (*domain.ChunkResource, error)

	// Stats reports index totals for diagnostics.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
