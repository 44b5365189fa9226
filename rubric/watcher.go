package rubric

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source exposes the current registry snapshot. Hot reload swaps whole
// snapshots behind an atomic pointer; readers never see a partial registry.
type Source struct {
	current atomic.Pointer[Registry]
}

// NewSource creates a Source seeded with the given registry.
func NewSource(reg *Registry) *Source {
	s := &Source{}
	s.current.Store(reg)
	return s
}

// Snapshot returns the current registry. The returned registry is immutable.
func (s *Source) Snapshot() *Registry {
	return s.current.Load()
}

// swap replaces the current snapshot.
func (s *Source) swap(reg *Registry) {
	s.current.Store(reg)
}

// WatcherConfig configures rubric directory watching.
type WatcherConfig struct {
	// Dir is the rubric directory to watch.
	Dir string

	// Patterns are doublestar globs selecting rubric documents.
	// Empty uses DefaultPatterns.
	Patterns []string

	// DebounceDelay is how long to wait for more changes before reloading.
	DebounceDelay time.Duration

	// Logger for reload events.
	Logger *slog.Logger
}

// Watcher reloads the rubric registry when documents under a directory
// change, exposing snapshots through a Source.
type Watcher struct {
	config  WatcherConfig
	source  *Source
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher loads the rubric directory and starts tracking it.
// The initial load must succeed; later reload failures keep the last good
// snapshot and are logged.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	reg, err := Discover(cfg.Dir, cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("initial rubric load: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Register the watch here so changes between construction and Start are
	// not missed.
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch rubric dir: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 250 * time.Millisecond
	}

	return &Watcher{
		config:  cfg,
		source:  NewSource(reg),
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Source returns the handle through which callers read registry snapshots.
func (w *Watcher) Source() *Source {
	return w.source
}

// Start processes watch events. It blocks until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("rubric watcher started", "dir", w.config.Dir, "dimensions", w.source.Snapshot().Len())

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isRubricFile(event.Name) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.config.DebounceDelay)
			} else {
				debounce.Reset(w.config.DebounceDelay)
			}
			pending = debounce.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("rubric watcher error", "error", err)
		}
	}
}

// reload re-discovers the rubric directory and swaps the snapshot.
func (w *Watcher) reload() {
	reg, err := Discover(w.config.Dir, w.config.Patterns)
	if err != nil {
		w.logger.Warn("rubric reload failed, keeping previous snapshot", "error", err)
		return
	}
	w.source.swap(reg)
	w.logger.Info("rubric reloaded", "dimensions", reg.Len())
}

// isRubricFile filters watch events to markdown documents.
func isRubricFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
