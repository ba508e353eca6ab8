package domain

// FileOp classifies a filesystem change relevant to the index.
type FileOp int

const (
	// FileCreated indicates a new file.
	FileCreated FileOp = iota

	// FileUpdated indicates a modified file.
	FileUpdated

	// FileDeleted indicates a removed or renamed-away file.
	FileDeleted
)

// String returns a human-readable name for the operation.
func (op FileOp) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileUpdated:
		return "updated"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileEvent is a single filesystem change observed under the
// watched tree, after filtering and normalisation.
type FileEvent struct {
	// Path is the absolute, cleaned path of the affected file.
	Path string

	// Op is the kind of change.
	Op FileOp
}
