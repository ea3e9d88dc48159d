// Package watcher re-runs catalog generation when declaration sources change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/apidoc/pkg/parser"
	"github.com/gnana997/apidoc/pkg/scanner"
)

// DefaultDebounce groups editor save bursts into one regeneration.
const DefaultDebounce = 200 * time.Millisecond

// RegenerateFunc rebuilds the catalog. changed lists the absolute paths that
// triggered the run, sorted.
type RegenerateFunc func(ctx context.Context, changed []string) error

// Options configures which paths are watched and how events are grouped.
type Options struct {
	// Debounce is the quiet period after the last event before Regenerate
	// runs. Zero uses DefaultDebounce.
	Debounce time.Duration
	// Include and Exclude are the doublestar globs used for discovery,
	// relative to the watched root.
	Include []string
	Exclude []string
}

// FileWatcher watches a source tree and regenerates the catalog on change.
//
// Events for any number of files that arrive within the debounce window are
// coalesced into a single Regenerate call. Regenerations never overlap.
//
// **Usage:**
//
//	fw, err := watcher.NewFileWatcher(regenerate, opts, logger)
//	if err != nil {
//	    return err
//	}
//	if err := fw.Start(ctx, root); err != nil {
//	    return err
//	}
//	defer fw.Stop()
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	regenerate RegenerateFunc
	logger     *slog.Logger
	options    Options
	root       string

	// Debouncing
	pending    map[string]struct{}
	timer      *time.Timer
	debounceMu sync.Mutex

	// runMu serializes Regenerate calls.
	runMu sync.Mutex
	ctx   context.Context

	statsMu sync.Mutex
	stats   Stats

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// Stats contains file watcher statistics.
type Stats struct {
	Events        int
	Regenerations int
	Failures      int
	Pending       int
	Directories   int
	IsRunning     bool
}

// NewFileWatcher creates a watcher that calls regenerate after changes.
func NewFileWatcher(regenerate RegenerateFunc, options Options, logger *slog.Logger) (*FileWatcher, error) {
	if regenerate == nil {
		return nil, fmt.Errorf("regenerate callback is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher:    w,
		regenerate: regenerate,
		logger:     logger,
		options:    options,
		pending:    make(map[string]struct{}),
		ctx:        context.Background(),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins watching rootPath and every sub-directory that is not
// excluded. ctx is passed to Regenerate; cancelling it does not stop the
// watcher.
//
// **Thread Safety:** Safe to call once.
func (fw *FileWatcher) Start(ctx context.Context, rootPath string) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	fw.started = true
	fw.mu.Unlock()

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}
	fw.root = root
	fw.ctx = ctx

	if err := fw.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	fw.addStat(func(s *Stats) { s.Directories++ })

	if err := fw.addTree(root); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	fw.logger.Info("file watcher started", "root", root, "debounce", fw.options.Debounce)

	fw.wg.Add(1)
	go fw.eventLoop()

	return nil
}

// addTree watches every non-excluded directory below dir.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on error
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if fw.shouldIgnore(path, true) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		fw.addStat(func(s *Stats) { s.Directories++ })
		return nil
	})
}

// Stop stops the file watcher and waits for an in-flight regeneration.
//
// **Thread Safety:** Safe to call multiple times (idempotent).
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	close(fw.stopChan)
	fw.mu.Unlock()

	// Cancel the debounce timer
	fw.debounceMu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.pending = make(map[string]struct{})
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()

	// Let a regeneration that already started finish.
	fw.runMu.Lock()
	fw.runMu.Unlock()

	fw.logger.Info("file watcher stopped")
	return err
}

// eventLoop is the main event processing loop.
func (fw *FileWatcher) eventLoop() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// handleEvent processes a file system event.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory may hold sources later on.
	if event.Op.Has(fsnotify.Create) && isDir(path) {
		if fw.shouldIgnore(path, true) {
			return
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			fw.addStat(func(s *Stats) { s.Directories++ })
		}
		// Files created before the watch was added would be missed.
		if err := fw.addTree(path); err != nil {
			fw.logger.Warn("failed to watch directory tree", "path", path, "error", err)
		}
		fw.schedule(path)
		return
	}

	if !fw.isSource(path) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Write),
		event.Op.Has(fsnotify.Create),
		event.Op.Has(fsnotify.Remove),
		event.Op.Has(fsnotify.Rename):
		fw.logger.Debug("file event", "op", event.Op.String(), "file", path)
		fw.schedule(path)
	}
}

// schedule records a change and restarts the debounce timer.
func (fw *FileWatcher) schedule(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	fw.pending[path] = struct{}{}
	fw.addStat(func(s *Stats) { s.Events++ })

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.options.Debounce, fw.flush)
}

// flush runs Regenerate for every change recorded since the last run.
func (fw *FileWatcher) flush() {
	fw.runMu.Lock()
	defer fw.runMu.Unlock()

	fw.debounceMu.Lock()
	changed := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		changed = append(changed, p)
	}
	fw.pending = make(map[string]struct{})
	fw.timer = nil
	fw.debounceMu.Unlock()

	if len(changed) == 0 || fw.isStopped() {
		return
	}
	sort.Strings(changed)

	fw.logger.Info("sources changed, regenerating", "files", len(changed))
	start := time.Now()
	if err := fw.regenerate(fw.ctx, changed); err != nil {
		fw.addStat(func(s *Stats) { s.Failures++ })
		fw.logger.Error("regeneration failed", "error", err)
		return
	}
	fw.addStat(func(s *Stats) { s.Regenerations++ })
	fw.logger.Info("regeneration complete", "ms", time.Since(start).Milliseconds())
}

// isSource reports whether path is a source discovery would pick up.
func (fw *FileWatcher) isSource(path string) bool {
	if parser.DetectDialect(path) == parser.DialectUnknown {
		return false
	}
	if fw.shouldIgnore(path, false) {
		return false
	}
	rel, ok := fw.rel(path)
	if !ok {
		return false
	}
	return len(fw.options.Include) == 0 || scanner.MatchesInclude(rel, fw.options.Include)
}

// shouldIgnore checks if a path should be ignored.
func (fw *FileWatcher) shouldIgnore(path string, dir bool) bool {
	// Ignore common dependency directories
	switch filepath.Base(path) {
	case "node_modules", ".git":
		if dir {
			return true
		}
	}

	rel, ok := fw.rel(path)
	if !ok {
		return true
	}
	return scanner.IsExcluded(rel, dir, fw.options.Exclude)
}

func (fw *FileWatcher) rel(path string) (string, bool) {
	if fw.root == "" {
		return filepath.ToSlash(path), true
	}
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (fw *FileWatcher) isStopped() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.stopped
}

func (fw *FileWatcher) addStat(update func(*Stats)) {
	fw.statsMu.Lock()
	update(&fw.stats)
	fw.statsMu.Unlock()
}

// Stats returns file watcher statistics.
func (fw *FileWatcher) Stats() Stats {
	fw.debounceMu.Lock()
	pending := len(fw.pending)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()
	s := fw.stats
	s.Pending = pending
	s.IsRunning = running
	return s
}
