package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.Watcher = (*WatchService)(nil)

// watchQueueSize bounds the job queue between the debouncer and the
// ingestion workers.
const watchQueueSize = 256

// watchJob is one debounced filesystem change ready for ingestion.
type watchJob struct {
	path string
	op   domain.FileOp
}

// debounced is a path waiting out its quiet period. The op tracks the
// latest event; a create followed by a delete within the window
// dispatches as a delete.
type debounced struct {
	timer *time.Timer
	op    domain.FileOp
}

// WatchService keeps the index in sync with a directory tree. Raw
// events are debounced per path, then dispatched to a small worker
// pool; a failing ingestion is counted and logged, never fatal.
type WatchService struct {
	source     driven.FileSource
	ingestor   driving.Ingestor
	extractors driven.ExtractorRegistry
	settings   domain.Settings

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	jobs      chan watchJob
	pending   map[string]*debounced
	processed int
	errors    int
	wg        sync.WaitGroup
}

// NewWatchService creates a watch service.
func NewWatchService(
	source driven.FileSource,
	ingestor driving.Ingestor,
	extractors driven.ExtractorRegistry,
	settings domain.Settings,
) *WatchService {
	return &WatchService{
		source:     source,
		ingestor:   ingestor,
		extractors: extractors,
		settings:   settings,
		pending:    make(map[string]*debounced),
	}
}

// Start begins observing the tree. It returns once the event loop and
// workers are up; Stop shuts them down.
func (s *WatchService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.ErrWatcherRunning
	}

	events, err := s.source.Watch(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("watching %s: %w", s.source.Root(), err)
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.jobs = make(chan watchJob, watchQueueSize)
	s.pending = make(map[string]*debounced)
	s.mu.Unlock()

	logger.Section("Watcher")
	logger.Info("Watching %s (debounce %s, %d workers)",
		s.source.Root(), s.settings.WatchDebounce, s.settings.WatchConcurrency)

	workers := s.settings.WatchConcurrency
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	s.wg.Add(1)
	go s.loop(ctx, events)

	return nil
}

// Stop cancels pending debounce timers, waits for in-flight work to
// drain, and releases the underlying watch.
func (s *WatchService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for path, d := range s.pending {
		d.timer.Stop()
		delete(s.pending, path)
	}
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	return s.source.Close()
}

// Status reports a snapshot of the watcher's counters.
func (s *WatchService) Status() driving.WatchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return driving.WatchStatus{
		Running:   s.running,
		Pending:   len(s.pending),
		Processed: s.processed,
		Errors:    s.errors,
	}
}

// Rescan walks the tree and runs every supported file through
// ingestion, relying on hash-skip to make unchanged files cheap.
// With the watcher running the files go through the worker pool;
// otherwise they are processed inline, which gives one-shot indexing
// the same code path.
func (s *WatchService) Rescan(ctx context.Context) (int, error) {
	logger.Section("Rescan")
	logger.Debug("Walking %s", s.source.Root())

	count := 0
	err := s.source.Walk(ctx, func(path string) error {
		s.mu.Lock()
		running := s.running
		jobs, stop := s.jobs, s.stopCh
		s.mu.Unlock()

		if !running {
			s.process(ctx, watchJob{path: path, op: domain.FileUpdated})
			count++
			return nil
		}

		select {
		case jobs <- watchJob{path: path, op: domain.FileUpdated}:
			count++
			return nil
		case <-stop:
			return fmt.Errorf("watcher stopped during rescan")
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return count, fmt.Errorf("rescanning %s: %w", s.source.Root(), err)
	}

	logger.Info("Rescan enqueued %d files", count)
	return count, nil
}

// loop consumes raw file events until the source closes or the
// watcher stops.
func (s *WatchService) loop(ctx context.Context, events <-chan domain.FileEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.observe(event)
		}
	}
}

// observe debounces one raw event. A burst of events for the same
// path collapses into a single dispatch once the path has been quiet
// for the debounce window.
func (s *WatchService) observe(event domain.FileEvent) {
	// Deletions always pass; creations and writes only matter for
	// files an extractor can handle.
	if event.Op != domain.FileDeleted && !s.extractors.Supported(event.Path) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	if d, ok := s.pending[event.Path]; ok {
		d.op = event.Op
		d.timer.Reset(s.settings.WatchDebounce)
		return
	}

	path := event.Path
	d := &debounced{op: event.Op}
	d.timer = time.AfterFunc(s.settings.WatchDebounce, func() {
		s.dispatch(path)
	})
	s.pending[path] = d
}

// dispatch moves a quiesced path from the debounce table onto the job
// queue.
func (s *WatchService) dispatch(path string) {
	s.mu.Lock()
	d, ok := s.pending[path]
	if !ok || !s.running {
		s.mu.Unlock()
		return
	}
	delete(s.pending, path)
	op := d.op
	jobs, stop := s.jobs, s.stopCh
	s.mu.Unlock()

	select {
	case jobs <- watchJob{path: path, op: op}:
	case <-stop:
	}
}

// worker drains the job queue.
func (s *WatchService) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case job := <-s.jobs:
			s.process(ctx, job)
		}
	}
}

// process runs one job to completion. Failures increment the error
// counter; the loop itself never stops.
func (s *WatchService) process(ctx context.Context, job watchJob) {
	var err error
	if job.op == domain.FileDeleted {
		_, err = s.ingestor.DeleteByPath(ctx, job.path)
	} else {
		var result *domain.IngestResult
		result, err = s.ingestor.IngestFile(ctx, job.path)
		if err == nil && result.Err != nil {
			err = result.Err
		}
	}

	s.mu.Lock()
	if err != nil {
		s.errors++
	} else {
		s.processed++
	}
	s.mu.Unlock()

	if err != nil {
		logger.Error("Watch %s %s: %v", job.op, job.path, err)
	} else {
		logger.Debug("Watch %s %s", job.op, job.path)
	}
}
