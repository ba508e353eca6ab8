package driven

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// Extractor turns one file into segments plus provenance.
// Each extractor handles specific file extensions (e.g. PDF, Markdown).
//
// Failures map onto the ingestion taxonomy: domain.ErrEncrypted for
// protected sources, domain.ErrInsufficientText when no usable text
// layer exists, and domain.ErrExtraction (wrapped) for parse failures.
type Extractor interface {
	// Extensions returns the lower-case file extensions this extractor
	// handles, dot included (e.g. ".pdf").
	Extensions() []string

	// Extract parses the file at path into ordered segments.
	Extract(ctx context.Context, path string) (*domain.Extraction, error)
}

// ExtractorRegistry selects an extractor for a path by extension.
type ExtractorRegistry interface {
	// ForPath returns the extractor for the path's extension.
	ForPath(path string) (Extractor, bool)

	// Supported reports whether any extractor handles the path.
	Supported(path string) bool

	// Extensions returns every extension the registry covers, sorted.
	Extensions() []string
}
