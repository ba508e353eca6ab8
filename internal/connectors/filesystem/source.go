package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// Source is a watched directory tree. Walk enumerates the supported
// files under the root; Watch streams subsequent changes. Hidden files
// and directories (dot-prefixed, relative to the root) are invisible
// to both.
type Source struct {
	root       string
	extensions map[string]bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a source rooted at dir. The extensions (lower-case, dot
// included) bound what Walk visits; change events are not extension
// filtered, since a deletion's extension no longer tells you whether
// the file was ever indexed.
func New(dir string, extensions []string) (*Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("watch root %s does not exist", abs)
	}
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Source{root: abs, extensions: exts}, nil
}

// Root returns the absolute root of the tree.
func (s *Source) Root() string {
	return s.root
}

// Walk visits every supported, non-hidden file under the root with
// absolute, cleaned paths.
func (s *Source) Walk(ctx context.Context, visit func(path string) error) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != s.root && s.isHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.isHidden(path) || !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		return visit(filepath.Clean(path))
	})
}

// Watch starts observing the tree. The returned channel closes when
// ctx is cancelled or the source is closed. fsnotify watches are not
// recursive, so every subdirectory registers individually and newly
// created directories extend the watch as they appear.
func (s *Source) Watch(ctx context.Context) (<-chan domain.FileEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil, fmt.Errorf("%s is already being watched", s.root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := s.addRecursive(watcher, s.root); err != nil {
		watcher.Close()
		return nil, err
	}
	s.watcher = watcher

	out := make(chan domain.FileEvent)
	go s.pump(ctx, watcher, out)
	return out, nil
}

// Close releases watch resources. The event channel closes shortly
// after.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// pump translates raw fsnotify traffic into domain events.
func (s *Source) pump(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.FileEvent) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			fe := s.translate(watcher, event)
			if fe == nil {
				continue
			}
			select {
			case out <- *fe:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", s.root, err)
		}
	}
}

// translate maps one fsnotify event onto the domain. Nil means the
// event is not index-relevant (hidden path, directory churn, chmod).
func (s *Source) translate(watcher *fsnotify.Watcher, event fsnotify.Event) *domain.FileEvent {
	path := filepath.Clean(event.Name)
	if s.isHidden(path) {
		return nil
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			// Created and removed before we got here.
			return nil
		}
		if info.IsDir() {
			// A new directory extends the watch; files inside it
			// arrive as their own create events.
			if err := s.addRecursive(watcher, path); err != nil {
				logger.Warn("Could not watch new directory %s: %v", path, err)
			}
			return nil
		}
		return &domain.FileEvent{Path: path, Op: domain.FileCreated}

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}
		return &domain.FileEvent{Path: path, Op: domain.FileUpdated}

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// The path is already gone, so there is no telling file from
		// directory here. Deletions of never-indexed paths are no-ops
		// downstream.
		return &domain.FileEvent{Path: path, Op: domain.FileDeleted}

	default:
		return nil
	}
}

// addRecursive registers dir and every non-hidden subdirectory.
func (s *Source) addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && s.isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any path element below the root starts
// with a dot. The root itself may legitimately live inside a hidden
// directory; only components within the tree count.
func (s *Source) isHidden(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
