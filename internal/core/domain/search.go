package domain

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of matches returned when the caller
// does not specify one.
const DefaultTopK = 8

// PreviewLimit is the maximum preview length in runes; longer chunk
// text is truncated with a trailing ellipsis.
const PreviewLimit = 240

// SearchOptions configures a search query.
type SearchOptions struct {
	// TopK is the maximum number of matches. Defaults to DefaultTopK
	// when zero or negative. Never exceeded.
	TopK int

	// DocIDs restricts matching to the given documents. Empty means all.
	DocIDs []string
}

// Match is a single search hit.
type Match struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocID identifies the chunk's document.
	DocID string

	// Title is the document title.
	Title string

	// Score is the similarity score. Native search reports
	// clamp(1−distance, 0, 1); fallback search reports raw cosine.
	Score float64

	// Preview is the chunk text truncated to PreviewLimit runes.
	Preview string

	// Text is the full chunk text.
	Text string

	// Resource is the stable address of the chunk,
	// of the form doc://<doc_id>#<chunk_id>.
	Resource string
}

// ChunkResource bundles a chunk with its parent document,
// as returned by resource reads.
type ChunkResource struct {
	// Chunk is the addressed chunk with text and offsets.
	Chunk Chunk

	// Document is the parent document's metadata.
	Document Document
}

// DocumentPage is one page of a document listing, ordered by
// UpdatedAt descending.
type DocumentPage struct {
	// Documents are the page's entries.
	Documents []Document

	// NextCursor is the opaque token for the next page;
	// empty when this is the last page.
	NextCursor string
}

// IndexStats summarises the index for diagnostics.
type IndexStats struct {
	// Documents is the number of document rows.
	Documents int

	// Segments is the number of segment rows.
	Segments int

	// Chunks is the number of chunk rows.
	Chunks int

	// Strategy names the active search strategy (native or fallback).
	Strategy string
}

// resourceScheme prefixes every chunk resource address.
const resourceScheme = "doc://"

// ResourceAddress builds the stable address for a chunk.
func ResourceAddress(docID, chunkID string) string {
	return resourceScheme + docID + "#" + chunkID
}

// ParseResourceAddress splits a resource address into its document
// and chunk identifiers. Malformed addresses return ErrInvalidInput.
func ParseResourceAddress(resource string) (docID, chunkID string, err error) {
	rest, ok := strings.CutPrefix(resource, resourceScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: resource %q lacks %s scheme", ErrInvalidInput, resource, resourceScheme)
	}

	docID, chunkID, ok = strings.Cut(rest, "#")
	if !ok || docID == "" || chunkID == "" {
		return "", "", fmt.Errorf("%w: resource %q is not doc://<doc_id>#<chunk_id>", ErrInvalidInput, resource)
	}

	return docID, chunkID, nil
}
