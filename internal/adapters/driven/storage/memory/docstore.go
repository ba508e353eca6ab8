package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.ChunkSearcher = (*Store)(nil)
)

// defaultListLimit applies when a document listing gives no limit.
const defaultListLimit = 50

// maxListLimit bounds a single listing page.
const maxListLimit = 500

// Store is an in-memory implementation of driven.DocumentStore and
// driven.ChunkSearcher. It mirrors the SQLite store's semantics
// (replace atomicity, keyset pagination, brute-force cosine search)
// without touching disk, which keeps service and front-end tests fast.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	byExternal map[string]string
	segments   map[string][]domain.Segment
	chunks     map[string][]domain.Chunk
	docOrder   []string // first-insert order; search ties break along it
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]domain.Document),
		byExternal: make(map[string]string),
		segments:   make(map[string][]domain.Segment),
		chunks:     make(map[string][]domain.Chunk),
	}
}

// UpsertDocument stores or updates a document row, leaving any
// existing segments and chunks in place.
func (s *Store) UpsertDocument(_ context.Context, doc *domain.Document) error {
	stampDocument(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putDocument(doc)
	return nil
}

// ReplaceDocument upserts the document row and replaces all of its
// segments and chunks in one step.
func (s *Store) ReplaceDocument(
	_ context.Context,
	doc *domain.Document,
	segments []domain.Segment,
	chunks []domain.Chunk,
) error {
	stampDocument(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putDocument(doc)
	s.segments[doc.ID] = append([]domain.Segment(nil), segments...)
	s.chunks[doc.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// stampDocument applies the SQLite store's timestamp behaviour:
// CreatedAt defaults on first write, UpdatedAt refreshes on every one.
func stampDocument(doc *domain.Document) {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
}

// putDocument writes the document row and maintains the external-ID
// lookup and insertion order. Caller holds the write lock.
func (s *Store) putDocument(doc *domain.Document) {
	if prev, ok := s.documents[doc.ID]; ok {
		if prev.ExternalID != "" && prev.ExternalID != doc.ExternalID {
			delete(s.byExternal, prev.ExternalID)
		}
	} else {
		s.docOrder = append(s.docOrder, doc.ID)
	}

	s.documents[doc.ID] = *doc
	if doc.ExternalID != "" {
		s.byExternal[doc.ExternalID] = doc.ID
	}
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByExternalID retrieves a document by its uniqueness key.
func (s *Store) GetDocumentByExternalID(_ context.Context, externalID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byExternal[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// GetSegments retrieves a document's segments ordered by position.
func (s *Store) GetSegments(_ context.Context, documentID string) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segments := append([]domain.Segment(nil), s.segments[documentID]...)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Position < segments[j].Position
	})
	return segments, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for i := range chunks {
			if chunks[i].ID == id {
				chunk := chunks[i]
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document in insertion order.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks[documentID]...), nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *Store) CountChunks(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]), nil
}

// DeleteDocuments removes documents and their segments and chunks.
// Unknown IDs are ignored.
func (s *Store) DeleteDocuments(_ context.Context, ids []string) (*domain.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &domain.DeleteResult{}
	for _, id := range ids {
		doc, ok := s.documents[id]
		if !ok {
			continue
		}

		result.DeletedDocIDs = append(result.DeletedDocIDs, id)
		result.DeletedChunks += len(s.chunks[id])

		delete(s.documents, id)
		delete(s.segments, id)
		delete(s.chunks, id)
		if doc.ExternalID != "" {
			delete(s.byExternal, doc.ExternalID)
		}
		for i, oid := range s.docOrder {
			if oid == id {
				s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
				break
			}
		}
	}

	return result, nil
}

// listCursor is the keyset position encoded into pagination tokens.
// Same shape as the SQLite store's cursor; the two stores paginate
// identically.
type listCursor struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// encodeListCursor serialises a keyset position into an opaque token.
func encodeListCursor(pos listCursor) string {
	data, err := json.Marshal(pos)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// decodeListCursor parses an opaque pagination token.
func decodeListCursor(cursor string) (listCursor, error) {
	var pos listCursor
	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return pos, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(data, &pos); err != nil {
		return pos, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	return pos, nil
}

// ListDocuments returns one page of documents ordered by UpdatedAt
// descending, ties broken by ID. An empty cursor starts from the
// newest.
func (s *Store) ListDocuments(_ context.Context, limit int, cursor string) (*domain.DocumentPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	s.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		}
		return docs[i].ID > docs[j].ID
	})

	if cursor != "" {
		pos, err := decodeListCursor(cursor)
		if err != nil {
			return nil, err
		}
		start := len(docs)
		for i := range docs {
			if docs[i].UpdatedAt.Before(pos.UpdatedAt) ||
				(docs[i].UpdatedAt.Equal(pos.UpdatedAt) && docs[i].ID < pos.ID) {
				start = i
				break
			}
		}
		docs = docs[start:]
	}

	page := &domain.DocumentPage{}
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		page.NextCursor = encodeListCursor(listCursor{UpdatedAt: last.UpdatedAt, ID: last.ID})
	}
	page.Documents = docs

	return page, nil
}

// Stats reports index totals for diagnostics.
func (s *Store) Stats(_ context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.IndexStats{
		Documents: len(s.documents),
		Strategy:  s.StrategyName(),
	}
	for _, segments := range s.segments {
		stats.Segments += len(segments)
	}
	for _, chunks := range s.chunks {
		stats.Chunks += len(chunks)
	}
	return stats, nil
}

// Close releases nothing; present to satisfy the interface.
func (s *Store) Close() error {
	return nil
}

// SearchChunks ranks stored chunks by cosine similarity against the
// query vector, mirroring the SQLite store's fallback strategy.
func (s *Store) SearchChunks(
	_ context.Context,
	query []float32,
	k int,
	docIDs []string,
) ([]driven.ChunkHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	var filter map[string]bool
	if len(docIDs) > 0 {
		filter = make(map[string]bool, len(docIDs))
		for _, id := range docIDs {
			filter[id] = true
		}
	}

	s.mu.RLock()
	var hits []driven.ChunkHit
	for _, docID := range s.docOrder {
		if filter != nil && !filter[docID] {
			continue
		}
		title := s.documents[docID].Title
		for _, chunk := range s.chunks[docID] {
			if len(chunk.Embedding) == 0 {
				continue
			}
			hits = append(hits, driven.ChunkHit{
				Chunk:    chunk,
				DocTitle: title,
				Score:    cosine(query, chunk.Embedding),
			})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// StrategyName reports the active strategy. The in-memory store only
// ever scans, so it is always the fallback.
func (s *Store) StrategyName() string {
	return "fallback"
}

// cosine returns the cosine similarity of two vectors, or 0 when the
// dimensions differ or either vector has zero magnitude.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
