package driven

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// DocumentStore persists documents, segments, and chunks.
// Backed by SQLite.
//
// The store is the only shared mutable resource in the system; all
// mutation goes through its transactional replace/upsert/delete
// operations. A concurrent reader observes either the pre- or
// post-replace state of a document, never a mix.
type DocumentStore interface {
	// UpsertDocument stores or updates a document row alone, leaving
	// any existing segments and chunks in place. Used for documents
	// that carry no indexable text (skipped, needs_ocr, too_large,
	// error statuses).
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// ReplaceDocument upserts the document row and replaces ALL of its
	// segments and chunks in a single transaction. Interruption before
	// commit leaves the previous consistent version in place.
	ReplaceDocument(ctx context.Context, doc *domain.Document, segments []domain.Segment, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByExternalID retrieves a document by its uniqueness key.
	GetDocumentByExternalID(ctx context.Context, externalID string) (*domain.Document, error)

	// GetSegments retrieves a document's segments ordered by position.
	GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// GetChunk retrieves a specific chunk by ID, embedding included.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in insertion order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// CountChunks returns the number of chunks stored for a document.
	CountChunks(ctx context.Context, documentID string) (int, error)

	// DeleteDocuments removes documents and cascades to their segments
	// and chunks. Unknown IDs are ignored, not errors. Returns the IDs
	// actually removed and the number of chunks that went with them.
	DeleteDocuments(ctx context.Context, ids []string) (*domain.DeleteResult, error)

	// ListDocuments returns one page of documents ordered by UpdatedAt
	// descending. An empty cursor starts from the newest.
	ListDocuments(ctx context.Context, limit int, cursor string) (*domain.DocumentPage, error)

	// Stats reports index totals for diagnostics.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Close releases store resources.
	Close() error
}
