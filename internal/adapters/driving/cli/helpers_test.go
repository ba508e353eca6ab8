package cli

import (
	"context"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/storage/memory"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors"
)

// mockSearcher is a mock implementation of driving.Searcher.
type mockSearcher struct {
	matches  []domain.Match
	strategy string
	err      error

	gotQuery string
	gotOpts  domain.SearchOptions
}

func (m *mockSearcher) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.matches, m.err
}

func (m *mockSearcher) Strategy() string {
	return m.strategy
}

// mockIngestor is a mock implementation of driving.Ingestor.
type mockIngestor struct {
	results    []domain.IngestResult
	fileResult *domain.IngestResult
	deleted    *domain.DeleteResult
	err        error

	gotPaths       []string
	gotDocIDs      []string
	gotExternalIDs []string
}

func (m *mockIngestor) IngestBatch(_ context.Context, _ []domain.IngestRequest) ([]domain.IngestResult, error) {
	return m.results, m.err
}

func (m *mockIngestor) IngestFile(_ context.Context, path string) (*domain.IngestResult, error) {
	m.gotPaths = append(m.gotPaths, path)
	return m.fileResult, m.err
}

func (m *mockIngestor) DeleteDocuments(_ context.Context, docIDs, externalIDs []string) (*domain.DeleteResult, error) {
	m.gotDocIDs = docIDs
	m.gotExternalIDs = externalIDs
	return m.deleted, m.err
}

func (m *mockIngestor) DeleteByPath(_ context.Context, _ string) (*domain.DeleteResult, error) {
	return m.deleted, m.err
}

// mockDocumentReader is a mock implementation of driving.DocumentReader.
type mockDocumentReader struct {
	page     *domain.DocumentPage
	document *domain.Document
	resource *domain.ChunkResource
	stats    *domain.IndexStats
	err      error

	gotLimit  int
	gotCursor string
	gotDocID  string
}

func (m *mockDocumentReader) List(_ context.Context, limit int, cursor string) (*domain.DocumentPage, error) {
	m.gotLimit = limit
	m.gotCursor = cursor
	return m.page, m.err
}

func (m *mockDocumentReader) Get(_ context.Context, docID string) (*domain.Document, error) {
	m.gotDocID = docID
	return m.document, m.err
}

func (m *mockDocumentReader) ReadResource(_ context.Context, _, _ string) (*domain.ChunkResource, error) {
	return m.resource, m.err
}

func (m *mockDocumentReader) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

// mockWatcher is a mock implementation of driving.Watcher.
type mockWatcher struct {
	enqueued int
	status   driving.WatchStatus
	startErr error
	stopErr  error
	scanErr  error
}

func (m *mockWatcher) Start(_ context.Context) error {
	return m.startErr
}

func (m *mockWatcher) Stop() error {
	return m.stopErr
}

func (m *mockWatcher) Rescan(_ context.Context) (int, error) {
	return m.enqueued, m.scanErr
}

func (m *mockWatcher) Status() driving.WatchStatus {
	return m.status
}

// Compile-time interface checks for the mocks.
var (
	_ driving.Searcher       = (*mockSearcher)(nil)
	_ driving.Ingestor       = (*mockIngestor)(nil)
	_ driving.DocumentReader = (*mockDocumentReader)(nil)
	_ driving.Watcher        = (*mockWatcher)(nil)
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
}

func sampleMatchFixtures() []domain.Match {
	return []domain.Match{
		{
			ChunkID:  "chunk-1",
			DocID:    "doc-1",
			Title:    "Meeting Notes",
			Score:    0.92,
			Preview:  "quarterly planning discussion",
			Resource: "doc://doc-1#chunk-1",
		},
		{
			ChunkID:  "chunk-2",
			DocID:    "doc-2",
			Title:    "Project README",
			Score:    0.81,
			Preview:  "installation and setup",
			Resource: "doc://doc-2#chunk-2",
		},
	}
}

func sampleDocumentFixture() *domain.Document {
	return &domain.Document{
		ID:           "doc-1",
		ExternalID:   "/notes/meeting.md",
		Source:       domain.SourceFile,
		URI:          "/notes/meeting.md",
		Title:        "Meeting Notes",
		ContentType:  "text/markdown",
		SizeBytes:    2048,
		ContentHash:  "abc123",
		IngestStatus: domain.IngestStatusOK,
		CreatedAt:    testTime(),
		UpdatedAt:    testTime(),
	}
}

// setupTestServices swaps the package-level services for mocks and
// disables real wiring, so commands run without touching the
// filesystem or any backend. The returned cleanup restores the
// originals.
func setupTestServices() func() {
	origWire := wireServices
	origNewWatcher := newWatcher
	origSettings := appSettings
	origConfig := configStore
	origSearch := searchService
	origIngest := ingestService
	origDocs := documentService
	origExtractors := extractorSet
	origEmbedder := embedder

	wireServices = func() error { return nil }
	newWatcher = func(_ string) (driving.Watcher, error) {
		return &mockWatcher{}, nil
	}
	appSettings = domain.DefaultSettings()
	configStore = memory.NewConfigStore()
	searchService = &mockSearcher{matches: sampleMatchFixtures(), strategy: "native"}
	ingestService = &mockIngestor{
		fileResult: &domain.IngestResult{
			DocID: "doc-1", Status: domain.ResultInserted,
			IngestStatus: domain.IngestStatusOK, ChunkCount: 4,
		},
		deleted: &domain.DeleteResult{DeletedDocIDs: []string{"doc-1"}, DeletedChunks: 4},
	}
	documentService = &mockDocumentReader{
		page:     &domain.DocumentPage{Documents: []domain.Document{*sampleDocumentFixture()}},
		document: sampleDocumentFixture(),
		stats:    &domain.IndexStats{Documents: 3, Segments: 5, Chunks: 42, Strategy: "native"},
	}
	extractorSet = extractors.Defaults()
	embedder = nil

	return func() {
		wireServices = origWire
		newWatcher = origNewWatcher
		appSettings = origSettings
		configStore = origConfig
		searchService = origSearch
		ingestService = origIngest
		documentService = origDocs
		extractorSet = origExtractors
		embedder = origEmbedder
	}
}
