package sqlite

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	added     []string
	deleted   []string
}

func (m *mockVectorIndex) Add(_ context.Context, chunkID string, _ []float32) error {
	m.added = append(m.added, chunkID)
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, chunkID string) error {
	m.deleted = append(m.deleted, chunkID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// setupIndexedStore creates a store wired to the given vector index.
func setupIndexedStore(t *testing.T, index driven.VectorIndex) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pocketmcp-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir, index)
	require.NoError(t, err)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// storeSearchDoc persists one document whose single segment carries the
// given chunk vectors.
func storeSearchDoc(t *testing.T, store *Store, docID string, vectors [][]float32) {
	t.Helper()
	ctx := context.Background()

	doc := testDocument(docID, "")
	seg := testSegment(docID, 0, "segment for "+docID)
	chunks := make([]domain.Chunk, 0, len(vectors))
	for i, vec := range vectors {
		chunks = append(chunks, testChunk(docID, seg.ID, i, "chunk text", vec))
	}

	err := store.DocumentStore().ReplaceDocument(ctx, doc, []domain.Segment{seg}, chunks)
	require.NoError(t, err)
}

// ==================== Strategy Selection Tests ====================

func TestProbeStrategy(t *testing.T) {
	t.Run("nil index selects fallback", func(t *testing.T) {
		store, cleanup := setupIndexedStore(t, nil)
		defer cleanup()

		assert.Equal(t, "fallback", store.Searcher().StrategyName())
	})

	t.Run("stub index selects fallback", func(t *testing.T) {
		index := &mockVectorIndex{searchErr: domain.ErrNotImplemented}
		store, cleanup := setupIndexedStore(t, index)
		defer cleanup()

		assert.Equal(t, "fallback", store.Searcher().StrategyName())
	})

	t.Run("live index selects native", func(t *testing.T) {
		store, cleanup := setupIndexedStore(t, &mockVectorIndex{})
		defer cleanup()

		assert.Equal(t, "native", store.Searcher().StrategyName())
	})
}

// ==================== Fallback Strategy Tests ====================

func TestFallbackSearch_RanksByCosine(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{
		{0, 1, 0, 0}, // orthogonal to the query
		{1, 0, 0, 0}, // identical direction
		{1, 1, 0, 0}, // 45 degrees off
	})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "doc-1:0:1", hits[0].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	assert.Equal(t, "doc-1:0:2", hits[1].Chunk.ID)
	assert.InDelta(t, 1/math.Sqrt2, hits[1].Score, 1e-6)

	assert.Equal(t, "doc-1:0:0", hits[2].Chunk.ID)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-6)

	assert.Equal(t, "Test Document doc-1", hits[0].DocTitle)
}

func TestFallbackSearch_TopKBound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{
		{1, 0}, {0.9, 0.1}, {0.8, 0.2}, {0.7, 0.3},
	})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestFallbackSearch_TiesByInsertionOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// Identical vectors produce identical scores; insertion order decides
	storeSearchDoc(t, store, "doc-a", [][]float32{{1, 0, 0, 0}})
	storeSearchDoc(t, store, "doc-b", [][]float32{{1, 0, 0, 0}})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-a", hits[0].Chunk.DocumentID)
	assert.Equal(t, "doc-b", hits[1].Chunk.DocumentID)
}

func TestFallbackSearch_DocFilter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-a", [][]float32{{1, 0}})
	storeSearchDoc(t, store, "doc-b", [][]float32{{1, 0}})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, []string{"doc-b"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].Chunk.DocumentID)
}

func TestFallbackSearch_EmptyIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Searching an empty index returns an empty list, not an error
	hits, err := store.Searcher().SearchChunks(context.Background(), []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFallbackSearch_SkipsMissingEmbeddings(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := testDocument("doc-1", "")
	seg := testSegment("doc-1", 0, "text")
	chunks := []domain.Chunk{
		testChunk("doc-1", seg.ID, 0, "no vector", nil),
		testChunk("doc-1", seg.ID, 1, "has vector", []float32{1, 0}),
	}
	require.NoError(t, store.DocumentStore().ReplaceDocument(ctx, doc, []domain.Segment{seg}, chunks))

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "has vector", hits[0].Chunk.Text)
}

// ==================== Native Strategy Tests ====================

func TestNativeSearch_HydratesFromStore(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChunkID: "doc-1:0:0", Distance: 0.25},
			{ChunkID: "doc-1:0:1", Distance: 0.5},
		},
	}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 0}, {0, 1}})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "doc-1:0:0", hits[0].Chunk.ID)
	assert.Equal(t, "chunk text", hits[0].Chunk.Text)
	assert.Equal(t, "Test Document doc-1", hits[0].DocTitle)
	assert.InDelta(t, 0.75, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-6)
}

func TestNativeSearch_SkipsStaleHits(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChunkID: "doc-gone:0:0", Distance: 0.1},
			{ChunkID: "doc-1:0:0", Distance: 0.3},
		},
	}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 0}})

	// The index lists a chunk the store no longer has; it is skipped
	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-1:0:0", hits[0].Chunk.ID)
}

func TestNativeSearch_DocFilter(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChunkID: "doc-a:0:0", Distance: 0.1},
			{ChunkID: "doc-b:0:0", Distance: 0.2},
		},
	}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-a", [][]float32{{1, 0}})
	storeSearchDoc(t, store, "doc-b", [][]float32{{1, 0}})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, []string{"doc-b"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].Chunk.DocumentID)
}

func TestNativeSearch_ScoreClamped(t *testing.T) {
	index := &mockVectorIndex{
		hits: []driven.VectorHit{
			{ChunkID: "doc-1:0:0", Distance: 1.8},  // far: clamps to 0
			{ChunkID: "doc-1:0:1", Distance: -0.1}, // rounding artefact: clamps to 1
		},
	}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 0}, {0, 1}})

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0.0, hits[0].Score)
	assert.Equal(t, 1.0, hits[1].Score)
}

// ==================== Index Sync Tests ====================

func TestStore_IndexSync(t *testing.T) {
	index := &mockVectorIndex{}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()
	ctx := context.Background()

	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 0}, {0, 1}})
	assert.Equal(t, []string{"doc-1:0:0", "doc-1:0:1"}, index.added)
	assert.Empty(t, index.deleted)

	// Replacing the document retires the old vectors
	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 1}})
	assert.ElementsMatch(t, []string{"doc-1:0:0", "doc-1:0:1"}, index.deleted)
	assert.Equal(t, "doc-1:0:0", index.added[len(index.added)-1])

	// Deleting the document retires the remaining vector
	index.deleted = nil
	_, err := store.DocumentStore().DeleteDocuments(ctx, []string{"doc-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1:0:0"}, index.deleted)
}

func TestStore_IndexSync_FallbackDoesNotTouchIndex(t *testing.T) {
	index := &mockVectorIndex{searchErr: domain.ErrNotImplemented}
	store, cleanup := setupIndexedStore(t, index)
	defer cleanup()

	storeSearchDoc(t, store, "doc-1", [][]float32{{1, 0}})
	assert.Empty(t, index.added)
}

// ==================== Helper Tests ====================

func TestSearchChunks_InvalidArgs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	hits, err := store.Searcher().SearchChunks(ctx, []float32{1, 0}, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, hits)

	hits, err = store.Searcher().SearchChunks(ctx, nil, 5, nil)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"identical vectors", 0.0, 1.0},
		{"partial match", 0.4, 0.6},
		{"distance beyond one", 1.7, 0.0},
		{"negative distance", -0.2, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, clampScore(tt.distance), 1e-9)
		})
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosine(tt.a, tt.b), 1e-6)
		})
	}
}
