package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid caller input.
	// Rejected synchronously, never silently degraded.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available
	// in this build (e.g. the native vector index without CGO).
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a file type no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or its model failed to initialise.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrWatcherRunning indicates the watcher is already started.
	ErrWatcherRunning = errors.New("watcher already running")

	// Ingestion taxonomy.
	// Each maps to a persisted IngestStatus on the affected document.

	// ErrExtraction indicates the extractor could not parse the source.
	// Maps to IngestStatusError with truncated notes.
	ErrExtraction = errors.New("extraction failed")

	// ErrEncrypted indicates the source is encrypted or password
	// protected. Maps to IngestStatusSkipped with notes "encrypted".
	ErrEncrypted = errors.New("encrypted or protected")

	// ErrTooLarge indicates the source exceeds the configured size
	// limit. Maps to IngestStatusTooLarge.
	ErrTooLarge = errors.New("too large")

	// ErrInsufficientText indicates extraction succeeded but produced
	// no usable text (e.g. a scanned PDF). Maps to IngestStatusNeedsOCR.
	ErrInsufficientText = errors.New("insufficient text")

	// ErrStoreTransaction indicates a persistence transaction failed
	// and was rolled back. The document's result reports error;
	// the rest of the batch continues.
	ErrStoreTransaction = errors.New("store transaction failed")
)

// StatusForError maps an ingestion failure to the IngestStatus persisted
// on the document. Unrecognised errors map to IngestStatusError.
func StatusForError(err error) IngestStatus {
	switch {
	case errors.Is(err, ErrEncrypted):
		return IngestStatusSkipped
	case errors.Is(err, ErrTooLarge):
		return IngestStatusTooLarge
	case errors.Is(err, ErrInsufficientText):
		return IngestStatusNeedsOCR
	default:
		return IngestStatusError
	}
}
