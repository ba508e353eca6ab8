package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResourceAddress_RoundTrip tests building then parsing an address
func TestResourceAddress_RoundTrip(t *testing.T) {
	resource := ResourceAddress("d-ab12cd34ef56-0001", "d-ab12cd34ef56-0001:0:2")
	assert.Equal(t, "doc://d-ab12cd34ef56-0001#d-ab12cd34ef56-0001:0:2", resource)

	docID, chunkID, err := ParseResourceAddress(resource)
	require.NoError(t, err)
	assert.Equal(t, "d-ab12cd34ef56-0001", docID)
	assert.Equal(t, "d-ab12cd34ef56-0001:0:2", chunkID)
}

// TestParseResourceAddress_Malformed tests rejection of invalid addresses
func TestParseResourceAddress_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		resource string
	}{
		{"wrong scheme", "file://doc-1#chunk-1"},
		{"missing fragment", "doc://doc-1"},
		{"empty doc id", "doc://#chunk-1"},
		{"empty chunk id", "doc://doc-1#"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseResourceAddress(tt.resource)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

// TestIngestRequest_ShouldSkipUnchanged tests the nil-means-true default
func TestIngestRequest_ShouldSkipUnchanged(t *testing.T) {
	var req IngestRequest
	assert.True(t, req.ShouldSkipUnchanged())

	skip := false
	req.SkipIfUnchanged = &skip
	assert.False(t, req.ShouldSkipUnchanged())

	skip = true
	assert.True(t, req.ShouldSkipUnchanged())
}
