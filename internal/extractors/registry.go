package extractors

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors/docx"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors/html"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors/markdown"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors/pdf"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates a registry over the given extractors. A later
// extractor claiming an already-registered extension wins.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byExt: make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Defaults returns a registry with every built-in extractor registered.
func Defaults() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
		docx.New(),
	)
}

// ForPath returns the extractor for the path's extension.
func (r *Registry) ForPath(path string) (driven.Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Supported reports whether any extractor handles the path.
func (r *Registry) Supported(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Extensions returns every extension the registry covers, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
