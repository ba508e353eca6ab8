// Package markdown extracts Markdown files into heading-delimited
// section segments using the goldmark AST.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown files.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract parses the Markdown into section segments. Each heading
// starts a new segment; the heading text is kept in the segment meta
// and repeated at the head of the segment text so it stays searchable.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(gtext.NewReader(src))

	var (
		segments []domain.SegmentInput
		heading  string
		body     []string
		title    string
	)

	flush := func() {
		parts := body
		if heading != "" {
			parts = append([]string{heading}, body...)
		}
		text := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if text != "" {
			segments = append(segments, domain.SegmentInput{
				Kind: domain.SegmentKindSection,
				Meta: heading,
				Text: text,
			})
		}
		body = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			heading = nodeText(h, src)
			if title == "" && h.Level == 1 {
				title = heading
			}
			continue
		}
		if t := nodeText(n, src); t != "" {
			body = append(body, t)
		}
	}
	flush()

	if title == "" {
		title = titleFromPath(path)
	}

	return &domain.Extraction{
		Segments:    segments,
		Title:       title,
		ContentType: "text/markdown",
	}, nil
}

// nodeText collects the plain text under an AST node. Inline text is
// gathered from Text nodes; code blocks keep their raw lines.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.FencedCodeBlock:
			writeLines(&buf, t, src)
		case *ast.CodeBlock:
			writeLines(&buf, t, src)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// writeLines copies a block node's raw source lines.
func writeLines(buf *bytes.Buffer, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
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
