package tui

import "errors"

// ErrMissingSearcher is returned when the search service is not provided.
var ErrMissingSearcher = errors.New("tui: search service is required")

// ErrMissingDocumentReader is returned when the document reader is not provided.
var ErrMissingDocumentReader = errors.New("tui: document reader is required")
