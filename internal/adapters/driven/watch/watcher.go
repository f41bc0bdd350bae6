// Package watch re-imports a manuscript whenever its file changes on disk.
//
// The watcher observes the file's parent directory, because most editors
// save by writing a temporary file and renaming it over the original, which
// would silently drop a watch on the file itself. Bursts of events during
// active editing are debounced into a single re-import.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/anclora/internal/core/ports/driven"
	"github.com/custodia-labs/anclora/internal/core/ports/driving"
	"github.com/custodia-labs/anclora/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event before
// re-importing.
const DefaultDebounce = 500 * time.Millisecond

// Watcher feeds document changes into the coordinator.
type Watcher struct {
	path        string
	projectID   string
	parser      driven.DocumentParser
	coordinator driving.Coordinator
	debounce    time.Duration

	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period required before a re-import runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for the manuscript at path belonging to projectID.
// Call Start to begin watching and Stop to release the inotify handle.
func New(path, projectID string, parser driven.DocumentParser, coordinator driving.Coordinator, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		path:        abs,
		projectID:   projectID,
		parser:      parser,
		coordinator: coordinator,
		debounce:    DefaultDebounce,
		fsw:         fsw,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The event loop runs until Stop is called or the
// context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	go w.run(ctx)
	logger.Info("watching %s for project %s", w.path, w.projectID)
	return nil
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

// run is the event loop: collect events for the watched file, and once the
// debounce window passes without new ones, re-import.
func (w *Watcher) run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Error("watching %s: %v", w.path, err)
		case <-timer.C:
			w.reimport(ctx)
		}
	}
}

// relevant reports whether the event concerns the watched file and implies
// new content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// reimport parses the file and hands the new version to the coordinator.
// Failures are logged, not fatal: the next save retries.
func (w *Watcher) reimport(ctx context.Context) {
	doc, err := w.parser.Parse(ctx, w.path)
	if err != nil {
		logger.Error("re-importing %s: %v", w.path, err)
		return
	}

	outcome, err := w.coordinator.HandleDocumentChange(ctx, w.projectID, doc)
	if err != nil {
		logger.Error("handling change on %s: %v", w.path, err)
		return
	}
	logger.Info("imported v%d of project %s (%s)", outcome.NewVersion, w.projectID, outcome.Action)
}
