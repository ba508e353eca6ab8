package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errors := []error{
		ErrMissingSearcher,
		ErrMissingDocumentReader,
	}

	// Ensure all errors are unique
	seen := make(map[string]bool)
	for _, err := range errors {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingSearcher_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSearcher.Error(), "search service")
}

func TestErrMissingDocumentReader_Message(t *testing.T) {
	assert.Contains(t, ErrMissingDocumentReader.Error(), "document reader")
}
