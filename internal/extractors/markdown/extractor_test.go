package markdown

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

func TestExtensions(t *testing.T) {
	exts := New().Extensions()
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".markdown")
}

func TestExtract_HeadingSections(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	path := writeFile(t, "doc.md", input)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Title", extraction.Title)
	assert.Equal(t, "text/markdown", extraction.ContentType)
	require.Len(t, extraction.Segments, 4)

	wantMetas := []string{"Title", "Section A", "Subsection A1", "Section B"}
	wantBodies := []string{
		"Intro text.",
		"Section A content.",
		"Subsection A1 content.",
		"Section B content.",
	}
	for i, seg := range extraction.Segments {
		assert.Equal(t, domain.SegmentKindSection, seg.Kind)
		assert.Equal(t, wantMetas[i], seg.Meta, "segment %d meta", i)
		assert.Contains(t, seg.Text, wantMetas[i], "segment %d keeps its heading searchable", i)
		assert.Contains(t, seg.Text, wantBodies[i], "segment %d body", i)
	}
}

func TestExtract_NoHeadings(t *testing.T) {
	input := "Just some plain text.\n\nAnother paragraph here."
	path := writeFile(t, "plain.md", input)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "plain", extraction.Title)
	require.Len(t, extraction.Segments, 1)

	seg := extraction.Segments[0]
	assert.Empty(t, seg.Meta)
	assert.Contains(t, seg.Text, "Just some plain text.")
	assert.Contains(t, seg.Text, "Another paragraph here.")
}

func TestExtract_CodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"
	path := writeFile(t, "api.md", input)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "API Reference", extraction.Title)
	require.Len(t, extraction.Segments, 2)

	endpoints := extraction.Segments[1]
	assert.Equal(t, "Endpoints", endpoints.Meta)
	assert.Contains(t, endpoints.Text, "GET /api/users")
	assert.Contains(t, endpoints.Text, "More text after code.")
}

func TestExtract_FormattingStripped(t *testing.T) {
	input := "Some [link text](https://example.com) and **bold words** here."
	path := writeFile(t, "fmt.md", input)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, extraction.Segments, 1)

	text := extraction.Segments[0].Text
	assert.Contains(t, text, "link text")
	assert.Contains(t, text, "bold words")
	assert.NotContains(t, text, "https://example.com")
	assert.NotContains(t, text, "**")
}

func TestExtract_HeadingWithoutBody(t *testing.T) {
	input := "# Alpha\n## Beta\nBeta body.\n"
	path := writeFile(t, "doc.md", input)

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, extraction.Segments, 2)

	// A bare heading still marks a division.
	assert.Equal(t, "Alpha", extraction.Segments[0].Meta)
	assert.Equal(t, "Alpha", extraction.Segments[0].Text)
	assert.Equal(t, "Beta", extraction.Segments[1].Meta)
}

func TestExtract_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.md", "")

	extraction, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, extraction.Segments)
	assert.Equal(t, "empty", extraction.Title)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
