package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Strategy names reported through diagnostics.
const (
	strategyNative   = "native"
	strategyFallback = "fallback"
)

// overFetchFactor widens native index queries when a document filter
// will discard part of the candidate set during hydration.
const overFetchFactor = 4

// searchStrategy is how SearchChunks finds nearest neighbours. Selected
// once at store construction; never re-probed per query.
type searchStrategy interface {
	search(ctx context.Context, query []float32, k int, docIDs []string) ([]driven.ChunkHit, error)
	name() string
}

// probeStrategy selects the search strategy. The stub index answers
// every call with domain.ErrNotImplemented; any other outcome,
// including a dimension complaint from a live index, means the native
// path works.
func probeStrategy(store *Store, index driven.VectorIndex) searchStrategy {
	if index == nil {
		return &fallbackStrategy{store: store}
	}

	if _, err := index.Search(context.Background(), []float32{0}, 1); errors.Is(err, domain.ErrNotImplemented) {
		return &fallbackStrategy{store: store}
	}

	return &nativeStrategy{store: store, index: index}
}

// chunkSearcher implements driven.ChunkSearcher.
type chunkSearcher struct {
	store *Store
}

var _ driven.ChunkSearcher = (*chunkSearcher)(nil)

// SearchChunks returns up to k hits for the query vector, ordered by
// descending score, ties broken by insertion order.
func (s *chunkSearcher) SearchChunks(
	ctx context.Context,
	query []float32,
	k int,
	docIDs []string,
) ([]driven.ChunkHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}
	return s.store.strategy.search(ctx, query, k, docIDs)
}

// StrategyName reports which strategy is active, for diagnostics.
func (s *chunkSearcher) StrategyName() string {
	return s.store.strategy.name()
}

// ==================== Native Strategy ====================

// nativeStrategy queries the HNSW index, then hydrates each hit from
// SQLite. The store is authoritative: a hit whose chunk no longer
// exists is skipped, not an error.
type nativeStrategy struct {
	store *Store
	index driven.VectorIndex
}

func (n *nativeStrategy) name() string { return strategyNative }

func (n *nativeStrategy) search(
	ctx context.Context,
	query []float32,
	k int,
	docIDs []string,
) ([]driven.ChunkHit, error) {
	fetch := k
	var filter map[string]bool
	if len(docIDs) > 0 {
		fetch = k * overFetchFactor
		filter = make(map[string]bool, len(docIDs))
		for _, id := range docIDs {
			filter[id] = true
		}
	}

	vectorHits, err := n.index.Search(ctx, query, fetch)
	if err != nil {
		return nil, fmt.Errorf("searching vector index: %w", err)
	}

	hits := make([]driven.ChunkHit, 0, k)
	for _, vh := range vectorHits {
		chunk, title, err := n.hydrate(ctx, vh.ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			continue // index trails the store; stale entries are skipped
		}
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter[chunk.DocumentID] {
			continue
		}

		hits = append(hits, driven.ChunkHit{
			Chunk:    *chunk,
			DocTitle: title,
			Score:    clampScore(vh.Distance),
		})
		if len(hits) == k {
			break
		}
	}

	return hits, nil
}

// hydrate loads a chunk and its document title in one query.
func (n *nativeStrategy) hydrate(ctx context.Context, chunkID string) (*domain.Chunk, string, error) {
	row := n.store.db.QueryRowContext(ctx, `
		SELECT c.id, c.segment_id, c.document_id, c.position,
		       c.start_char, c.end_char, c.content, d.title
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id = ?
	`, chunkID)

	var chunk domain.Chunk
	var title string
	if err := row.Scan(&chunk.ID, &chunk.SegmentID, &chunk.DocumentID,
		&chunk.Position, &chunk.StartChar, &chunk.EndChar, &chunk.Text, &title); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("hydrating chunk: %w", err)
	}

	return &chunk, title, nil
}

// ==================== Fallback Strategy ====================

// fallbackStrategy scans every stored embedding and ranks by cosine
// similarity. Exact rather than approximate, and entirely sufficient
// for the corpus sizes a local index holds.
type fallbackStrategy struct {
	store *Store
}

func (f *fallbackStrategy) name() string { return strategyFallback }

func (f *fallbackStrategy) search(
	ctx context.Context,
	query []float32,
	k int,
	docIDs []string,
) ([]driven.ChunkHit, error) {
	q := `
		SELECT c.id, c.segment_id, c.document_id, c.position,
		       c.start_char, c.end_char, c.content, c.embedding, d.title
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
	`
	var args []interface{}
	if len(docIDs) > 0 {
		q += ` WHERE c.document_id IN (` + placeholders(len(docIDs)) + `)`
		for _, id := range docIDs {
			args = append(args, id)
		}
	}
	// rowid order makes the stable sort break score ties by insertion.
	q += ` ORDER BY c.rowid`

	rows, err := f.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.ChunkHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var title string
		if err := rows.Scan(&chunk.ID, &chunk.SegmentID, &chunk.DocumentID,
			&chunk.Position, &chunk.StartChar, &chunk.EndChar,
			&chunk.Text, &embeddingBlob, &title); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		embedding := bytesToFloat32Slice(embeddingBlob)
		if len(embedding) == 0 {
			continue
		}

		hits = append(hits, driven.ChunkHit{
			Chunk:    chunk,
			DocTitle: title,
			Score:    cosine(query, embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// ==================== Index Sync ====================

// indexAdd mirrors committed chunks into the native index. The store is
// authoritative: a vector the index never received simply cannot
// surface through native search, and a stale one is skipped at
// hydration, so failures here do not fail the committed write.
func (s *Store) indexAdd(ctx context.Context, chunks []domain.Chunk) {
	if !s.nativeActive() {
		return
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		_ = s.index.Add(ctx, chunk.ID, chunk.Embedding) //nolint:errcheck
	}
}

// indexDelete removes chunk vectors from the native index.
func (s *Store) indexDelete(ctx context.Context, chunkIDs []string) {
	if !s.nativeActive() {
		return
	}
	for _, id := range chunkIDs {
		_ = s.index.Delete(ctx, id) //nolint:errcheck
	}
}

// nativeActive reports whether the native strategy was selected.
func (s *Store) nativeActive() bool {
	_, ok := s.strategy.(*nativeStrategy)
	return ok
}

// clampScore maps a cosine distance to a score in [0, 1].
func clampScore(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// cosine returns the cosine similarity of two vectors, or 0 when the
// dimensions differ or either vector has zero magnitude.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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
