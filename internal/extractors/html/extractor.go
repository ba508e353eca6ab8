// Package html extracts HTML files into heading-delimited section
// segments, stripping script, style and navigation chrome.
package html

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML files.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract parses the HTML into section segments. Heading tags start a
// new segment; block-level text elements accumulate into the current
// one. Script, style and navigation elements contribute nothing.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := findTitle(doc)
	if title == "" {
		title = titleFromPath(path)
	}

	var (
		segments []domain.SegmentInput
		heading  string
		body     []string
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

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flush()
				heading = textContent(n)
				return
			}

			switch n.Data {
			case "script", "style", "noscript", "template", "nav", "footer", "header", "iframe":
				return
			case "p", "li", "td", "th", "dt", "dd", "blockquote", "pre", "figcaption":
				if t := textContent(n); t != "" {
					body = append(body, t)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	walk(root)
	flush()

	// Pages built from bare text nodes have no block elements to
	// collect; fall back to the whole body.
	if len(segments) == 0 {
		if whole := textContent(root); whole != "" {
			segments = []domain.SegmentInput{{
				Kind: domain.SegmentKindSection,
				Text: whole,
			}}
		}
	}

	return &domain.Extraction{
		Segments:    segments,
		Title:       title,
		ContentType: "text/html",
	}, nil
}

// headingLevel maps h1..h6 tags to their level, 0 for anything else.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent concatenates all text nodes beneath n, skipping script
// and style bodies.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// findTitle returns the content of the first <title> element.
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// findBody returns the <body> element, nil if the document has none.
func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
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
