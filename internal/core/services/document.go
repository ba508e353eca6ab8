package services

import (
	"context"
	"fmt"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentReader = (*DocumentService)(nil)

// DocumentService exposes read access to the index: listings, direct
// lookups, chunk resource reads, and stats.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns one page of documents ordered by UpdatedAt descending.
func (s *DocumentService) List(ctx context.Context, limit int, cursor string) (*domain.DocumentPage, error) {
	page, err := s.docStore.ListDocuments(ctx, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return page, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, docID string) (*domain.Document, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	return s.docStore.GetDocument(ctx, docID)
}

// ReadResource resolves a chunk address to its stored text and parent
// document. The chunk must belong to the addressed document.
func (s *DocumentService) ReadResource(ctx context.Context, docID, chunkID string) (*domain.ChunkResource, error) {
	if docID == "" || chunkID == "" {
		return nil, fmt.Errorf("%w: empty resource identifier", domain.ErrInvalidInput)
	}

	chunk, err := s.docStore.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("reading chunk %s: %w", chunkID, err)
	}
	if chunk.DocumentID != docID {
		return nil, fmt.Errorf("%w: chunk %s does not belong to document %s", domain.ErrNotFound, chunkID, docID)
	}

	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", docID, err)
	}

	return &domain.ChunkResource{
		Chunk:    *chunk,
		Document: *doc,
	}, nil
}

// Stats reports index totals for diagnostics.
func (s *DocumentService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	return s.docStore.Stats(ctx)
}
