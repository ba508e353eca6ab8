// Package plaintext extracts text files as a single synthetic section.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
// It doubles as the fallback for structured text formats that need no
// parsing to be searchable.
func (e *Extractor) Extensions() []string {
	return []string{
		".txt",
		".text",
		".log",
		".csv",
		".tsv",
		".json",
		".yaml",
		".yml",
		".toml",
		".xml",
		".rst",
	}
}

// Extract reads the file and wraps it in one section segment.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	extraction := &domain.Extraction{
		Title:       titleFromPath(path),
		ContentType: "text/plain",
	}

	text := strings.TrimSpace(string(content))
	if text != "" {
		extraction.Segments = []domain.SegmentInput{{
			Kind: domain.SegmentKindSection,
			Text: text,
		}}
	}

	return extraction, nil
}

// titleFromPath extracts a human-readable title from a file path.
func titleFromPath(path string) string {
	filename := filepath.Base(path)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
