package driving

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// Ingestor coordinates extraction, chunking, embedding, and storage
// into idempotent upsert/delete operations per document.
type Ingestor interface {
	// IngestBatch upserts the given documents. Results are positional:
	// one per request, in order. A failing entry reports its error in
	// the result and never aborts the rest of the batch. A batch with
	// no valid entries is a validation error.
	IngestBatch(ctx context.Context, reqs []domain.IngestRequest) ([]domain.IngestResult, error)

	// IngestFile extracts the file at path and upserts it with the
	// normalised path as the external ID.
	IngestFile(ctx context.Context, path string) (*domain.IngestResult, error)

	// DeleteDocuments removes documents by ID and/or external ID.
	// Unknown identifiers are no-ops, not errors.
	DeleteDocuments(ctx context.Context, docIDs, externalIDs []string) (*domain.DeleteResult, error)

	// DeleteByPath removes the document ingested from the given file
	// path, if any.
	DeleteByPath(ctx context.Context, path string) (*domain.DeleteResult, error)
}
