package domain

import "time"

// DocumentSource identifies where a document's content came from.
type DocumentSource string

// Available document sources.
const (
	// SourceFile is a document ingested from a local file.
	SourceFile DocumentSource = "file"

	// SourceURL is a document whose content was supplied for a remote URL.
	SourceURL DocumentSource = "url"

	// SourceRaw is a document built from caller-supplied text.
	SourceRaw DocumentSource = "raw"
)

// IsValid returns true if the document source is recognised.
func (s DocumentSource) IsValid() bool {
	switch s {
	case SourceFile, SourceURL, SourceRaw:
		return true
	default:
		return false
	}
}

// Document represents one logical source item in the index.
// Its text lives in the Segments owned by it; the document row
// carries identity and ingestion metadata only.
type Document struct {
	// ID is the stable identity of the document.
	ID string

	// ExternalID is the caller- or path-derived uniqueness key.
	// Unique when present: re-ingesting the same ExternalID updates
	// the same document rather than creating a duplicate.
	ExternalID string

	// Source identifies how the document entered the index.
	Source DocumentSource

	// URI is the original location (file path, URL).
	URI string

	// Title is the human-readable title.
	Title string

	// ContentType is the MIME type of the original content.
	ContentType string

	// SizeBytes is the size of the original content, when known.
	SizeBytes int64

	// ContentHash is the digest of the concatenated segment text,
	// used to detect no-op re-ingestion.
	ContentHash string

	// MTime is the source modification time, when known.
	MTime time.Time

	// IngestStatus records the outcome of the last ingestion.
	IngestStatus IngestStatus

	// Notes carries diagnostic detail for non-ok statuses,
	// truncated to a bounded length.
	Notes string

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// SegmentKind classifies the logical division a segment represents.
type SegmentKind string

// Available segment kinds.
const (
	// SegmentKindPage is a page of a paginated format (PDF).
	SegmentKindPage SegmentKind = "page"

	// SegmentKindSection is a heading-delimited or synthetic section.
	SegmentKindSection SegmentKind = "section"
)

// IsValid returns true if the segment kind is recognised.
func (k SegmentKind) IsValid() bool {
	return k == SegmentKindPage || k == SegmentKindSection
}

// Segment is a logical division of a document: a page or a section.
// Segments are owned exclusively by their document and are replaced
// as a unit whenever the document is re-ingested.
type Segment struct {
	// ID is unique and deterministic from the document ID and position.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Kind classifies the division (page or section).
	Kind SegmentKind

	// Page is the 1-based page number for page segments; 0 otherwise.
	Page int

	// Meta carries free-form provenance, e.g. the heading text.
	Meta string

	// Text is the segment's extracted text.
	Text string
}

// Chunk is a contiguous, length-bounded slice of a segment's text.
// It is the unit of embedding and retrieval. Chunks never span
// segment boundaries.
type Chunk struct {
	// ID is unique and deterministic from the segment ID and index.
	ID string

	// SegmentID links to the owning Segment.
	SegmentID string

	// DocumentID links to the owning Document.
	// Denormalised so search results resolve without a join.
	DocumentID string

	// Position is the chunk index within its segment.
	Position int

	// StartChar is the offset of the chunk's first character
	// within the segment text.
	StartChar int

	// EndChar is the offset one past the chunk's last character.
	EndChar int

	// Text is the chunk content.
	Text string

	// Embedding is the L2-normalised vector representation.
	Embedding []float32
}
