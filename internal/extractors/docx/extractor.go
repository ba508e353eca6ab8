// Package docx extracts Word documents into heading-delimited section
// segments.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// oleMagic is the compound-file header. A .docx carrying it is an
// encrypted or legacy Office file, not the zip archive go-docx expects.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Extractor handles .docx files.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract parses the document into section segments. Paragraphs styled
// Heading1..Heading6 delimit sections; the heading text is kept in the
// segment meta and repeated at the head of the segment text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	head := make([]byte, len(oleMagic))
	if n, _ := f.ReadAt(head, 0); n == len(oleMagic) && bytes.Equal(head, oleMagic) {
		return nil, fmt.Errorf("open docx: %w", domain.ErrEncrypted)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

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

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		level := headingLevel(para)
		text := paragraphText(para)

		if level > 0 && text != "" {
			flush()
			heading = text
			if title == "" && level == 1 {
				title = text
			}
			continue
		}
		if text != "" {
			body = append(body, text)
		}
	}
	flush()

	if title == "" {
		title = titleFromPath(path)
	}

	return &domain.Extraction{
		Segments:    segments,
		Title:       title,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}

// headingLevel returns the outline level of a Heading1..Heading6 styled
// paragraph, 0 for everything else. Word writes the style name with and
// without a space depending on locale and version.
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if len(style) == len("heading1") && strings.HasPrefix(style, "heading") {
		if d := style[len(style)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

// paragraphText concatenates the text runs of a paragraph.
func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
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
