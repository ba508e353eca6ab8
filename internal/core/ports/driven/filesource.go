package driven

import (
	"context"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// FileSource is a watched directory tree: it enumerates the files
// currently present and streams subsequent changes.
type FileSource interface {
	// Root returns the absolute root of the tree.
	Root() string

	// Walk visits every supported file currently under the root.
	// The visit function receives absolute, cleaned paths.
	Walk(ctx context.Context, visit func(path string) error) error

	// Watch starts observing the tree and returns a channel of raw
	// file events. The channel closes when ctx is cancelled or the
	// source is closed. Directory creation extends the watch to the
	// new subtree automatically.
	Watch(ctx context.Context) (<-chan domain.FileEvent, error)

	// Close releases watch resources.
	Close() error
}
