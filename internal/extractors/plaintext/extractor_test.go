package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestExtensions(t *testing.T) {
	exts := New().Extensions()

	require.NotEmpty(t, exts)
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".log")
	assert.Contains(t, exts, ".json")
}

func TestExtract_Success(t *testing.T) {
	path := writeFile(t, "document.txt", "This is plain text content.")

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, extraction)

	assert.Equal(t, "document", extraction.Title)
	assert.Equal(t, "text/plain", extraction.ContentType)
	require.Len(t, extraction.Segments, 1)

	seg := extraction.Segments[0]
	assert.Equal(t, domain.SegmentKindSection, seg.Kind)
	assert.Equal(t, "This is plain text content.", seg.Text)
	assert.Zero(t, seg.Page)
}

func TestExtract_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "   \n\t\n")

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, extraction.Segments)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestExtract_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		filename      string
		expectedTitle string
	}{
		{
			name:          "simple filename",
			filename:      "document.txt",
			expectedTitle: "document",
		},
		{
			name:          "underscores to spaces",
			filename:      "my_document_name.txt",
			expectedTitle: "my document name",
		},
		{
			name:          "dashes to spaces",
			filename:      "my-document-name.txt",
			expectedTitle: "my document name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.filename, "content")

			extraction, err := New().Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, extraction.Title)
		})
	}
}

func TestExtract_UnicodeContent(t *testing.T) {
	content := "日本語テキスト\nПривет мир\n🚀 emoji"
	path := writeFile(t, "unicode.txt", content)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, extraction.Segments, 1)
	assert.Equal(t, content, extraction.Segments[0].Text)
}
