package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/splash/pkg/util"
)

// FileWatcher watches a source tree and re-extracts changed files
// incrementally.
//
// **Features:**
//   - Debouncing - Groups rapid writes to one re-extraction per file
//   - Selective - Only files matching the scan globs are re-extracted
//   - New directories are watched as they appear
//
// **Usage:**
//
//	watcher, err := NewFileWatcher(scanner, DefaultWatchOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start("/path/to/ns-3/src"); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type FileWatcher struct {
	watcher *fsnotify.Watcher
	scanner *WorkspaceScanner
	logger  *slog.Logger
	options WatchOptions
	root    string

	// Debouncing
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// Lifecycle
	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a new file watcher feeding scanner's index.
func NewFileWatcher(scanner *WorkspaceScanner, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}
	if err := validatePatterns(options.Scan); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FileWatcher{
		watcher:        watcher,
		scanner:        scanner,
		logger:         util.OrDefault(logger),
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		ctx:            ctx,
		cancel:         cancel,
		stopChan:       make(chan struct{}),
		loopDone:       make(chan struct{}),
	}, nil
}

// Start begins watching rootPath and every directory below it that the
// exclude globs do not skip. Events are handled on a background goroutine.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	fw.root = root

	if err := fw.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	fw.addTree(root)

	fw.started = true
	go fw.eventLoop()

	fw.logger.Info("File watcher started", "root", root)
	return nil
}

// addTree watches dir and its subdirectories.
func (fw *FileWatcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.isExcluded(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher. Pending re-extractions are cancelled and
// running ones are waited for.
//
// **Thread Safety:** Safe to call multiple times (idempotent).
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	started := fw.started
	close(fw.stopChan)
	fw.cancel()
	fw.mu.Unlock()

	if started {
		<-fw.loopDone
	}

	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceTimers = make(map[string]*time.Timer)
	fw.debounceMu.Unlock()

	fw.inflight.Wait()

	err := fw.watcher.Close()
	fw.logger.Info("File watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	defer close(fw.loopDone)

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
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !fw.isExcluded(path) {
				fw.addTree(path)
			}
			return
		}
	}

	if !fw.matches(path) {
		return
	}

	fw.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		fw.scanner.Index().InvalidateFile(path)
		fw.debounceReindex(path)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		fw.cancelPending(path)
		if fw.scanner.Index().RemoveFile(path) {
			fw.notify(path)
		}
	}
}

// debounceReindex schedules a re-extraction after the debounce delay. A
// newer event for the same file restarts the delay.
func (fw *FileWatcher) debounceReindex(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
	}

	fw.debounceTimers[path] = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		func() {
			fw.debounceMu.Lock()
			delete(fw.debounceTimers, path)
			fw.debounceMu.Unlock()

			if !fw.begin() {
				return
			}
			defer fw.inflight.Done()
			fw.reindexFile(path)
		},
	)
}

func (fw *FileWatcher) cancelPending(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
		delete(fw.debounceTimers, path)
	}
}

// begin registers a re-extraction unless the watcher is stopping.
func (fw *FileWatcher) begin() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return false
	}
	fw.inflight.Add(1)
	return true
}

func (fw *FileWatcher) reindexFile(path string) {
	fm, err := fw.scanner.IndexFile(fw.ctx, path)
	if err != nil {
		// The file stays dirty with its previous models.
		fw.logger.Warn("Failed to re-extract file", "file", path, "error", err)
		return
	}

	fw.logger.Debug("File re-extracted", "file", path, "models", len(fm.Models))
	fw.notify(path)
}

func (fw *FileWatcher) notify(path string) {
	if fw.options.OnUpdate != nil {
		fw.options.OnUpdate(path)
	}
}

// matches reports whether path is a file the scan globs select.
func (fw *FileWatcher) matches(path string) bool {
	rel := relativeTo(fw.root, path)
	return !isExcluded(fw.options.Scan.Exclude, rel) && isIncluded(fw.options.Scan.Include, rel)
}

func (fw *FileWatcher) isExcluded(path string) bool {
	return isExcluded(fw.options.Scan.Exclude, relativeTo(fw.root, path))
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingReindexes: pending,
		IsRunning:        running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingReindexes int
	IsRunning        bool
}
