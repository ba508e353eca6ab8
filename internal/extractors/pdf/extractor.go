// Package pdf extracts PDF files into one segment per page.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// minTextChars is the least total text a PDF must yield before it is
// treated as having a usable text layer. Scanned documents typically
// parse fine but produce nothing.
const minTextChars = 32

// Extractor handles PDF files.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract parses the PDF into page segments. Encrypted files map to
// domain.ErrEncrypted; files whose pages carry no usable text layer map
// to domain.ErrInsufficientText so the caller can record needs_ocr.
func (e *Extractor) Extract(_ context.Context, path string) (extraction *domain.Extraction, err error) {
	// The pdf library panics on some malformed files; convert to an error.
	defer func() {
		if r := recover(); r != nil {
			extraction = nil
			err = fmt.Errorf("%w: pdf reader panic: %v", domain.ErrExtraction, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		if isEncryptedErr(err) {
			return nil, fmt.Errorf("open pdf: %w", domain.ErrEncrypted)
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var (
		segments   []domain.SegmentInput
		totalChars int
		badPages   int
	)

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			badPages++
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		totalChars += len(text)
		segments = append(segments, domain.SegmentInput{
			Kind: domain.SegmentKindPage,
			Page: i,
			Text: text,
		})
	}

	if numPages > 0 && totalChars < minTextChars {
		return nil, fmt.Errorf("pdf has %d pages but no text layer: %w",
			numPages, domain.ErrInsufficientText)
	}

	extraction = &domain.Extraction{
		Segments:    segments,
		Title:       titleFromPath(path),
		ContentType: "application/pdf",
	}
	if badPages > 0 {
		extraction.Notes = fmt.Sprintf("%d of %d pages failed text extraction", badPages, numPages)
	}
	return extraction, nil
}

// isEncryptedErr reports whether the error indicates an encrypted or
// password-protected file. The pdf library signals this through error
// text rather than a stable sentinel.
func isEncryptedErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
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
