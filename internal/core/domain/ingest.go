package domain

import "time"

// SegmentInput is a segment supplied by an extractor or caller,
// before identity assignment.
type SegmentInput struct {
	// Kind classifies the division; defaults to section when empty.
	Kind SegmentKind

	// Page is the 1-based page number for page segments; 0 otherwise.
	Page int

	// Meta carries free-form provenance, e.g. the heading text.
	Meta string

	// Text is the segment text.
	Text string
}

// IngestRequest describes one document to upsert. It carries either
// raw Text or pre-built Segments, never both.
type IngestRequest struct {
	// ExternalID is the caller-supplied uniqueness key. Optional;
	// when present it pins document identity across re-ingestion.
	ExternalID string

	// Source identifies how the content was obtained.
	// Defaults to raw when empty.
	Source DocumentSource

	// URI is the original location, when applicable.
	URI string

	// Title is the human-readable title. Optional.
	Title string

	// ContentType is the MIME type of the original content. Optional.
	ContentType string

	// SizeBytes is the original content size, when known.
	SizeBytes int64

	// MTime is the source modification time, when known.
	MTime time.Time

	// Text is raw content to be wrapped in a single synthetic segment.
	Text string

	// Segments are pre-built divisions from an extractor.
	Segments []SegmentInput

	// Notes carries extractor diagnostics to persist with the document.
	Notes string

	// SkipIfUnchanged short-circuits re-ingestion when the content
	// hash matches the stored document. Nil means true.
	SkipIfUnchanged *bool
}

// ShouldSkipUnchanged resolves the SkipIfUnchanged default.
func (r *IngestRequest) ShouldSkipUnchanged() bool {
	return r.SkipIfUnchanged == nil || *r.SkipIfUnchanged
}

// IngestResult reports the outcome of one batch entry.
type IngestResult struct {
	// DocID identifies the affected document. Empty when the entry
	// failed before identity could be resolved.
	DocID string

	// ExternalID echoes the request's uniqueness key.
	ExternalID string

	// Status is what this entry did: inserted, updated, skipped, error.
	Status ResultStatus

	// IngestStatus is the status persisted on the document row.
	IngestStatus IngestStatus

	// ChunkCount is the number of chunks now stored for the document.
	ChunkCount int

	// Err carries the per-entry failure; nil on success. Batch
	// operations never fail as a whole because one entry did.
	Err error
}

// DeleteResult reports a deletion's effect.
type DeleteResult struct {
	// DeletedDocIDs lists the documents actually removed.
	DeletedDocIDs []string

	// DeletedChunks is the total number of chunks removed with them.
	DeletedChunks int
}

// Extraction is the output of an extraction collaborator for one file:
// segments plus provenance the orchestrator persists on the document.
type Extraction struct {
	// Segments are the extracted divisions in document order.
	Segments []SegmentInput

	// Title is the extractor's best-effort title, when one was found.
	Title string

	// ContentType is the MIME type the extractor recognised.
	ContentType string

	// Notes carries non-fatal extractor diagnostics.
	Notes string
}
