package mcp

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
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

	gotReqs        []domain.IngestRequest
	gotDocIDs      []string
	gotExternalIDs []string
}

func (m *mockIngestor) IngestBatch(_ context.Context, reqs []domain.IngestRequest) ([]domain.IngestResult, error) {
	m.gotReqs = reqs
	return m.results, m.err
}

func (m *mockIngestor) IngestFile(_ context.Context, _ string) (*domain.IngestResult, error) {
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
}

func (m *mockDocumentReader) List(_ context.Context, limit int, cursor string) (*domain.DocumentPage, error) {
	m.gotLimit = limit
	m.gotCursor = cursor
	return m.page, m.err
}

func (m *mockDocumentReader) Get(_ context.Context, _ string) (*domain.Document, error) {
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
	err      error
}

func (m *mockWatcher) Start(_ context.Context) error {
	return m.err
}

func (m *mockWatcher) Stop() error {
	return m.err
}

func (m *mockWatcher) Rescan(_ context.Context) (int, error) {
	return m.enqueued, m.err
}

func (m *mockWatcher) Status() driving.WatchStatus {
	return m.status
}

// testPorts returns Ports with every required port mocked; tests
// override individual fields before building the server.
func testPorts() *Ports {
	return &Ports{
		Search:    &mockSearcher{},
		Ingest:    &mockIngestor{},
		Documents: &mockDocumentReader{},
	}
}
