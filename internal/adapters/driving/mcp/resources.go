package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// uriScheme is the custom URI scheme for index resources.
const uriScheme = "doc://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for documents and chunks. The fragment addresses a
	// single chunk: doc://<doc_id>#<chunk_id>.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{doc_id}{#chunk_id}",
		Name:        "document",
		Description: "An indexed document, or one of its chunks when a fragment is given",
		MIMEType:    "application/json",
	}, s.handleDocResource)
}

// handleDocResource resolves doc:// reads. Without a fragment it
// returns the document's metadata; with one, the addressed chunk's
// text and offsets plus the parent document.
func (s *Server) handleDocResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, chunkID, ok := parseDocURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	if chunkID == "" {
		return s.readDocument(ctx, req.Params.URI, docID)
	}
	return s.readChunk(ctx, req.Params.URI, docID, chunkID)
}

// readDocument returns the metadata of a single document.
func (s *Server) readDocument(ctx context.Context, uri, docID string) (*mcp.ReadResourceResult, error) {
	doc, err := s.ports.Documents.Get(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	type docInfo struct {
		ID           string `json:"id"`
		ExternalID   string `json:"external_id,omitempty"`
		Source       string `json:"source"`
		URI          string `json:"uri,omitempty"`
		Title        string `json:"title,omitempty"`
		ContentType  string `json:"content_type,omitempty"`
		SizeBytes    int64  `json:"size_bytes,omitempty"`
		IngestStatus string `json:"ingest_status"`
		Notes        string `json:"notes,omitempty"`
	}

	data, err := json.MarshalIndent(docInfo{
		ID:           doc.ID,
		ExternalID:   doc.ExternalID,
		Source:       string(doc.Source),
		URI:          doc.URI,
		Title:        doc.Title,
		ContentType:  doc.ContentType,
		SizeBytes:    doc.SizeBytes,
		IngestStatus: string(doc.IngestStatus),
		Notes:        doc.Notes,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// readChunk returns one chunk's text and offsets with its parent
// document's metadata.
func (s *Server) readChunk(ctx context.Context, uri, docID, chunkID string) (*mcp.ReadResourceResult, error) {
	resource, err := s.ports.Documents.ReadResource(ctx, docID, chunkID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunk resource: %w", err)
	}

	type chunkInfo struct {
		ChunkID   string `json:"chunk_id"`
		SegmentID string `json:"segment_id"`
		Position  int    `json:"position"`
		StartChar int    `json:"start_char"`
		EndChar   int    `json:"end_char"`
		Text      string `json:"text"`

		DocID    string `json:"doc_id"`
		DocTitle string `json:"doc_title,omitempty"`
		DocURI   string `json:"doc_uri,omitempty"`
	}

	data, err := json.MarshalIndent(chunkInfo{
		ChunkID:   resource.Chunk.ID,
		SegmentID: resource.Chunk.SegmentID,
		Position:  resource.Chunk.Position,
		StartChar: resource.Chunk.StartChar,
		EndChar:   resource.Chunk.EndChar,
		Text:      resource.Chunk.Text,
		DocID:     resource.Document.ID,
		DocTitle:  resource.Document.Title,
		DocURI:    resource.Document.URI,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chunk: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseDocURI splits a URI like doc://<doc_id> or
// doc://<doc_id>#<chunk_id>. An empty document id is invalid; an
// absent fragment leaves chunkID empty.
func parseDocURI(uri string) (docID, chunkID string, ok bool) {
	rest, found := strings.CutPrefix(uri, uriScheme)
	if !found {
		return "", "", false
	}

	docID, chunkID, _ = strings.Cut(rest, "#")
	if docID == "" {
		return "", "", false
	}

	return docID, chunkID, true
}
