package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string   `json:"query" jsonschema:"the natural-language query to match against indexed chunks"`
	TopK   int      `json:"top_k,omitempty" jsonschema:"maximum number of matches to return (default 8)"`
	DocIDs []string `json:"doc_ids,omitempty" jsonschema:"restrict matching to these document ids"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Matches  []MatchOutput `json:"matches"`
	Count    int           `json:"count"`
	Strategy string        `json:"strategy"`
}

// MatchOutput represents a single search match.
type MatchOutput struct {
	ChunkID  string  `json:"chunk_id"`
	DocID    string  `json:"doc_id"`
	Title    string  `json:"title,omitempty"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
	Resource string  `json:"resource"`
}

// SegmentInput is one pre-split division of an upserted document.
type SegmentInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"page or section (default section)"`
	Page int    `json:"page,omitempty" jsonschema:"1-based page number for page segments"`
	Meta string `json:"meta,omitempty" jsonschema:"free-form provenance such as the heading text"`
	Text string `json:"text" jsonschema:"the segment text"`
}

// DocumentInput is one document in an upsert batch.
type DocumentInput struct {
	ExternalID      string         `json:"external_id,omitempty" jsonschema:"uniqueness key; re-using it updates the same document instead of creating a new one"`
	URI             string         `json:"uri,omitempty" jsonschema:"original location of the content"`
	Title           string         `json:"title,omitempty" jsonschema:"human-readable title"`
	ContentType     string         `json:"content_type,omitempty" jsonschema:"MIME type of the original content"`
	Text            string         `json:"text,omitempty" jsonschema:"raw document text; mutually exclusive with segments"`
	Segments        []SegmentInput `json:"segments,omitempty" jsonschema:"pre-split divisions; mutually exclusive with text"`
	SkipIfUnchanged *bool          `json:"skip_if_unchanged,omitempty" jsonschema:"skip re-ingestion when the content hash is unchanged (default true)"`
}

// UpsertInput is the input schema for the upsert_documents tool.
type UpsertInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"the documents to insert or update"`
}

// UpsertOutput is the output schema for the upsert_documents tool.
type UpsertOutput struct {
	Results []UpsertResultOutput `json:"results"`
}

// UpsertResultOutput reports the outcome for one upserted document.
type UpsertResultOutput struct {
	DocID      string `json:"doc_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Status     string `json:"status"`
	Chunks     int    `json:"chunks"`
	Error      string `json:"error,omitempty"`
}

// DeleteInput is the input schema for the delete_documents tool.
type DeleteInput struct {
	DocIDs      []string `json:"doc_ids,omitempty" jsonschema:"document ids to delete"`
	ExternalIDs []string `json:"external_ids,omitempty" jsonschema:"external ids to delete"`
}

// DeleteOutput is the output schema for the delete_documents tool.
type DeleteOutput struct {
	DeletedDocIDs []string `json:"deleted_doc_ids"`
	DeletedChunks int      `json:"deleted_chunks"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum documents per page (default 50)"`
	Cursor string `json:"cursor,omitempty" jsonschema:"opaque cursor from a previous page"`
}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents  []DocumentOutput `json:"documents"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// DocumentOutput is one document summary in a listing.
type DocumentOutput struct {
	ID           string `json:"id"`
	ExternalID   string `json:"external_id,omitempty"`
	Source       string `json:"source"`
	URI          string `json:"uri,omitempty"`
	Title        string `json:"title,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	IngestStatus string `json:"ingest_status"`
	Notes        string `json:"notes,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

// RescanInput is the input schema for the rescan tool.
type RescanInput struct{}

// RescanOutput is the output schema for the rescan tool.
type RescanOutput struct {
	Enqueued int  `json:"enqueued"`
	Running  bool `json:"running"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documents by semantic similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upsert_documents",
		Description: "Insert or update documents in the index",
	}, s.handleUpsert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_documents",
		Description: "Delete documents by id or external id",
	}, s.handleDelete)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents, newest first",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rescan",
		Description: "Re-walk the watched directory and re-index changed files",
	}, s.handleRescan)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		TopK:   input.TopK,
		DocIDs: input.DocIDs,
	}

	matches, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Matches:  make([]MatchOutput, len(matches)),
		Count:    len(matches),
		Strategy: s.ports.Search.Strategy(),
	}

	for i := range matches {
		output.Matches[i] = MatchOutput{
			ChunkID:  matches[i].ChunkID,
			DocID:    matches[i].DocID,
			Title:    matches[i].Title,
			Score:    matches[i].Score,
			Preview:  matches[i].Preview,
			Resource: matches[i].Resource,
		}
	}

	return nil, output, nil
}

// handleUpsert handles the upsert_documents tool invocation.
// Per-document failures are reported in the results, not as a tool
// error; only a batch-level rejection fails the call.
func (s *Server) handleUpsert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpsertInput,
) (*mcp.CallToolResult, UpsertOutput, error) {
	reqs := make([]domain.IngestRequest, len(input.Documents))
	for i, doc := range input.Documents {
		// A nil segment list means "no segments supplied"; an empty
		// one is a deliberate empty document. Keep the distinction.
		var segments []domain.SegmentInput
		if doc.Segments != nil {
			segments = make([]domain.SegmentInput, len(doc.Segments))
			for j, seg := range doc.Segments {
				segments[j] = domain.SegmentInput{
					Kind: domain.SegmentKind(seg.Kind),
					Page: seg.Page,
					Meta: seg.Meta,
					Text: seg.Text,
				}
			}
		}

		reqs[i] = domain.IngestRequest{
			ExternalID:      doc.ExternalID,
			URI:             doc.URI,
			Title:           doc.Title,
			ContentType:     doc.ContentType,
			Text:            doc.Text,
			Segments:        segments,
			SkipIfUnchanged: doc.SkipIfUnchanged,
		}
	}

	results, err := s.ports.Ingest.IngestBatch(ctx, reqs)
	if err != nil {
		return nil, UpsertOutput{}, err
	}

	output := UpsertOutput{
		Results: make([]UpsertResultOutput, len(results)),
	}

	for i := range results {
		output.Results[i] = UpsertResultOutput{
			DocID:      results[i].DocID,
			ExternalID: results[i].ExternalID,
			Status:     string(results[i].Status),
			Chunks:     results[i].ChunkCount,
		}
		if results[i].Err != nil {
			output.Results[i].Error = results[i].Err.Error()
		}
	}

	return nil, output, nil
}

// handleDelete handles the delete_documents tool invocation.
func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	result, err := s.ports.Ingest.DeleteDocuments(ctx, input.DocIDs, input.ExternalIDs)
	if err != nil {
		return nil, DeleteOutput{}, err
	}

	deleted := result.DeletedDocIDs
	if deleted == nil {
		deleted = []string{}
	}

	return nil, DeleteOutput{
		DeletedDocIDs: deleted,
		DeletedChunks: result.DeletedChunks,
	}, nil
}

// handleList handles the list_documents tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	page, err := s.ports.Documents.List(ctx, input.Limit, input.Cursor)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents:  make([]DocumentOutput, len(page.Documents)),
		NextCursor: page.NextCursor,
	}

	for i := range page.Documents {
		doc := &page.Documents[i]
		output.Documents[i] = DocumentOutput{
			ID:           doc.ID,
			ExternalID:   doc.ExternalID,
			Source:       string(doc.Source),
			URI:          doc.URI,
			Title:        doc.Title,
			ContentType:  doc.ContentType,
			SizeBytes:    doc.SizeBytes,
			IngestStatus: string(doc.IngestStatus),
			Notes:        doc.Notes,
			UpdatedAt:    doc.UpdatedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleRescan handles the rescan tool invocation.
func (s *Server) handleRescan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RescanInput,
) (*mcp.CallToolResult, RescanOutput, error) {
	if s.ports.Watch == nil {
		return nil, RescanOutput{}, ErrWatcherUnavailable
	}

	enqueued, err := s.ports.Watch.Rescan(ctx)
	if err != nil {
		return nil, RescanOutput{}, err
	}

	return nil, RescanOutput{
		Enqueued: enqueued,
		Running:  s.ports.Watch.Status().Running,
	}, nil
}
