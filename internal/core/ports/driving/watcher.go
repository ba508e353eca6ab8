package driving

import "context"

// Watcher keeps the index in sync with the watched directory tree.
type Watcher interface {
	// Start begins observing. Returns domain.ErrWatcherRunning when
	// already started.
	Start(ctx context.Context) error

	// Stop cancels pending debounce timers, waits for in-flight
	// ingestions to drain, and releases watch resources.
	Stop() error

	// Rescan walks the whole tree and enqueues every supported file,
	// relying on hash-skip to make unchanged files cheap. Returns the
	// number of files enqueued.
	Rescan(ctx context.Context) (int, error)

	// Status reports watcher progress counters.
	Status() WatchStatus
}

// WatchStatus is a snapshot of the watcher's counters.
type WatchStatus struct {
	// Running indicates whether the watch loop is active.
	Running bool

	// Pending is the number of paths with an armed debounce timer.
	Pending int

	// Processed counts completed ingestion and deletion operations.
	Processed int

	// Errors counts failed operations; failures never stop the loop.
	Errors int
}
