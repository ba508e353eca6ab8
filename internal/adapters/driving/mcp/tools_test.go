package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns shaped matches", func(t *testing.T) {
		mockSearch := &mockSearcher{
			matches: []domain.Match{
				{
					ChunkID:  "d-1:0:0",
					DocID:    "d-1",
					Title:    "Notes",
					Score:    0.93,
					Preview:  "the matched text",
					Text:     "the matched text",
					Resource: "doc://d-1#d-1:0:0",
				},
			},
			strategy: "native",
		}

		ports := testPorts()
		ports.Search = mockSearch
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "matched", TopK: 5, DocIDs: []string{"d-1"}}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "native", output.Strategy)
		require.Len(t, output.Matches, 1)
		assert.Equal(t, "d-1:0:0", output.Matches[0].ChunkID)
		assert.Equal(t, "d-1", output.Matches[0].DocID)
		assert.Equal(t, "Notes", output.Matches[0].Title)
		assert.Equal(t, 0.93, output.Matches[0].Score)
		assert.Equal(t, "doc://d-1#d-1:0:0", output.Matches[0].Resource)

		// Options pass through untouched; the core applies defaults.
		assert.Equal(t, "matched", mockSearch.gotQuery)
		assert.Equal(t, 5, mockSearch.gotOpts.TopK)
		assert.Equal(t, []string{"d-1"}, mockSearch.gotOpts.DocIDs)
	})

	t.Run("empty index yields empty matches", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "anything"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Matches)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		ports := testPorts()
		ports.Search = &mockSearcher{err: errors.New("search failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("maps documents and segments to requests", func(t *testing.T) {
		mockIngest := &mockIngestor{
			results: []domain.IngestResult{
				{DocID: "d-1", ExternalID: "a", Status: domain.ResultInserted, IngestStatus: domain.IngestStatusOK, ChunkCount: 2},
				{DocID: "d-2", Status: domain.ResultUpdated, IngestStatus: domain.IngestStatusOK, ChunkCount: 1},
			},
		}

		ports := testPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		skip := false
		input := UpsertInput{Documents: []DocumentInput{
			{ExternalID: "a", Title: "Raw", Text: "plain text", SkipIfUnchanged: &skip},
			{Title: "Paged", Segments: []SegmentInput{
				{Kind: "page", Page: 1, Meta: "Intro", Text: "page one"},
			}},
		}}

		_, output, err := server.handleUpsert(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, mockIngest.gotReqs, 2)
		assert.Equal(t, "plain text", mockIngest.gotReqs[0].Text)
		assert.Nil(t, mockIngest.gotReqs[0].Segments)
		assert.False(t, mockIngest.gotReqs[0].ShouldSkipUnchanged())
		require.Len(t, mockIngest.gotReqs[1].Segments, 1)
		assert.Equal(t, domain.SegmentKindPage, mockIngest.gotReqs[1].Segments[0].Kind)
		assert.Equal(t, 1, mockIngest.gotReqs[1].Segments[0].Page)
		assert.Equal(t, "Intro", mockIngest.gotReqs[1].Segments[0].Meta)

		require.Len(t, output.Results, 2)
		assert.Equal(t, "d-1", output.Results[0].DocID)
		assert.Equal(t, "inserted", output.Results[0].Status)
		assert.Equal(t, 2, output.Results[0].Chunks)
		assert.Empty(t, output.Results[0].Error)
	})

	t.Run("empty segment list survives as deliberate empty document", func(t *testing.T) {
		mockIngest := &mockIngestor{results: []domain.IngestResult{{DocID: "d-1"}}}
		ports := testPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := UpsertInput{Documents: []DocumentInput{
			{ExternalID: "blank", Segments: []SegmentInput{}},
		}}

		_, _, err = server.handleUpsert(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, mockIngest.gotReqs, 1)
		assert.NotNil(t, mockIngest.gotReqs[0].Segments)
		assert.Empty(t, mockIngest.gotReqs[0].Segments)
	})

	t.Run("per-entry failures become result errors", func(t *testing.T) {
		mockIngest := &mockIngestor{
			results: []domain.IngestResult{
				{DocID: "d-1", Status: domain.ResultInserted, ChunkCount: 1},
				{Status: domain.ResultError, IngestStatus: domain.IngestStatusError, Err: errors.New("embed batch: connection refused")},
			},
		}

		ports := testPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := UpsertInput{Documents: []DocumentInput{
			{Text: "ok"}, {Text: "fails"},
		}}

		_, output, err := server.handleUpsert(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Results, 2)
		assert.Empty(t, output.Results[0].Error)
		assert.Equal(t, "error", output.Results[1].Status)
		assert.Contains(t, output.Results[1].Error, "connection refused")
	})

	t.Run("batch rejection is a tool error", func(t *testing.T) {
		ports := testPorts()
		ports.Ingest = &mockIngestor{err: domain.ErrInvalidInput}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleUpsert(ctx, nil, UpsertInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("reports deleted documents and chunks", func(t *testing.T) {
		mockIngest := &mockIngestor{
			deleted: &domain.DeleteResult{DeletedDocIDs: []string{"d-1", "d-2"}, DeletedChunks: 5},
		}

		ports := testPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := DeleteInput{DocIDs: []string{"d-1"}, ExternalIDs: []string{"b"}}
		_, output, err := server.handleDelete(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, []string{"d-1", "d-2"}, output.DeletedDocIDs)
		assert.Equal(t, 5, output.DeletedChunks)
		assert.Equal(t, []string{"d-1"}, mockIngest.gotDocIDs)
		assert.Equal(t, []string{"b"}, mockIngest.gotExternalIDs)
	})

	t.Run("nothing deleted serialises as empty list", func(t *testing.T) {
		ports := testPorts()
		ports.Ingest = &mockIngestor{deleted: &domain.DeleteResult{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleDelete(ctx, nil, DeleteInput{DocIDs: []string{"d-gone"}})

		require.NoError(t, err)
		assert.NotNil(t, output.DeletedDocIDs)
		assert.Empty(t, output.DeletedDocIDs)
	})

	t.Run("returns error on delete failure", func(t *testing.T) {
		ports := testPorts()
		ports.Ingest = &mockIngestor{err: domain.ErrInvalidInput}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleDelete(ctx, nil, DeleteInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document summaries with cursor", func(t *testing.T) {
		updated := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		mockDocs := &mockDocumentReader{
			page: &domain.DocumentPage{
				Documents: []domain.Document{{
					ID:           "d-1",
					ExternalID:   "/notes/a.md",
					Source:       domain.SourceFile,
					URI:          "/notes/a.md",
					Title:        "a.md",
					ContentType:  "text/markdown",
					SizeBytes:    420,
					IngestStatus: domain.IngestStatusOK,
					UpdatedAt:    updated,
				}},
				NextCursor: "next-token",
			},
		}

		ports := testPorts()
		ports.Documents = mockDocs
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ListInput{Limit: 25, Cursor: "prev-token"}
		_, output, err := server.handleList(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 25, mockDocs.gotLimit)
		assert.Equal(t, "prev-token", mockDocs.gotCursor)
		assert.Equal(t, "next-token", output.NextCursor)
		require.Len(t, output.Documents, 1)
		assert.Equal(t, "d-1", output.Documents[0].ID)
		assert.Equal(t, "file", output.Documents[0].Source)
		assert.Equal(t, "ok", output.Documents[0].IngestStatus)
		assert.Equal(t, "2025-06-01T12:30:00Z", output.Documents[0].UpdatedAt)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ports := testPorts()
		ports.Documents = &mockDocumentReader{err: errors.New("storage error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleList(ctx, nil, ListInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage error")
	})
}

func TestServer_handleRescan(t *testing.T) {
	ctx := context.Background()

	t.Run("no watcher configured returns error", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleRescan(ctx, nil, RescanInput{})

		assert.ErrorIs(t, err, ErrWatcherUnavailable)
	})

	t.Run("reports enqueued count and watcher state", func(t *testing.T) {
		ports := testPorts()
		ports.Watch = &mockWatcher{
			enqueued: 7,
			status:   driving.WatchStatus{Running: true},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleRescan(ctx, nil, RescanInput{})

		require.NoError(t, err)
		assert.Equal(t, 7, output.Enqueued)
		assert.True(t, output.Running)
	})

	t.Run("returns error on rescan failure", func(t *testing.T) {
		ports := testPorts()
		ports.Watch = &mockWatcher{err: errors.New("walk failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleRescan(ctx, nil, RescanInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "walk failed")
	})
}
