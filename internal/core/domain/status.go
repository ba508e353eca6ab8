package domain

// IngestStatus is the closed set of outcomes an ingestion can leave
// on a document. It is persisted with the document row.
type IngestStatus string

// Available ingest statuses.
const (
	// IngestStatusOK means the document was extracted, chunked, and indexed.
	IngestStatusOK IngestStatus = "ok"

	// IngestStatusSkipped means ingestion was a no-op: either the content
	// hash was unchanged, or the source is encrypted or protected.
	IngestStatusSkipped IngestStatus = "skipped"

	// IngestStatusNeedsOCR means extraction found no usable text layer.
	IngestStatusNeedsOCR IngestStatus = "needs_ocr"

	// IngestStatusTooLarge means the source exceeds the size limit.
	IngestStatusTooLarge IngestStatus = "too_large"

	// IngestStatusError means extraction or persistence failed;
	// Notes carries the truncated failure detail.
	IngestStatusError IngestStatus = "error"
)

// IsValid returns true if the status is one of the closed set.
func (s IngestStatus) IsValid() bool {
	switch s {
	case IngestStatusOK, IngestStatusSkipped, IngestStatusNeedsOCR,
		IngestStatusTooLarge, IngestStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s IngestStatus) String() string {
	return string(s)
}

// Indexed returns true if an ingestion reporting this status wrote chunks.
// Only ok ingestions write segments and chunks; every other outcome
// persists the document row alone.
func (s IngestStatus) Indexed() bool {
	return s == IngestStatusOK
}

// ResultStatus describes what an ingest batch entry did.
// It is reported per request, distinct from the persisted IngestStatus.
type ResultStatus string

// Available result statuses.
const (
	// ResultInserted means a new document was created.
	ResultInserted ResultStatus = "inserted"

	// ResultUpdated means an existing document was replaced.
	ResultUpdated ResultStatus = "updated"

	// ResultSkipped means the content hash was unchanged; no side effects.
	ResultSkipped ResultStatus = "skipped"

	// ResultError means this entry failed; the rest of the batch continues.
	ResultError ResultStatus = "error"
)

// IsValid returns true if the result status is recognised.
func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultInserted, ResultUpdated, ResultSkipped, ResultError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ResultStatus) String() string {
	return string(s)
}
