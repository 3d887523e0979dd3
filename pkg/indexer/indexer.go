package indexer

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/splash/pkg/catalog"
	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

// ModelIndex holds the models of every extracted file of a workspace.
//
// **Architecture:**
//   - Map FilePath → FileModels, replaced wholesale on re-extraction
//   - LRU of recently extracted files for "what changed" queries
//   - Lazy invalidation: the watcher marks files dirty before re-extracting
//   - Version counter so readers can cache derived views
//
// **Thread Safety:**
//   - sync.RWMutex, multiple readers and a single writer
//   - Atomic counters for statistics
//
// **Usage:**
//
//	idx := NewModelIndex(DefaultModelIndexConfig(), logger)
//	idx.AddFileModels(path, result.Models, result.Stats)
//	models := idx.AllModels()
type ModelIndex struct {
	files map[string]*FileModels

	// Recently extracted files, bounded by MaxRecentFiles
	recent *lru.Cache[string, struct{}]

	dirtyFiles map[string]bool

	mu sync.RWMutex

	version   atomic.Uint64
	updates   atomic.Int64
	removals  atomic.Int64
	evictions atomic.Int64

	config ModelIndexConfig
	logger *slog.Logger
}

// NewModelIndex creates an empty index.
func NewModelIndex(config ModelIndexConfig, logger *slog.Logger) (*ModelIndex, error) {
	if config.MaxRecentFiles <= 0 {
		config.MaxRecentFiles = DefaultModelIndexConfig().MaxRecentFiles
	}
	logger = util.OrDefault(logger)

	idx := &ModelIndex{
		files:      make(map[string]*FileModels, 256),
		dirtyFiles: make(map[string]bool),
		config:     config,
		logger:     logger,
	}

	recent, err := lru.NewWithEvict(config.MaxRecentFiles, func(key string, _ struct{}) {
		idx.evictions.Add(1)
		if config.Debug {
			logger.Debug("LRU evicting recent file", "path", key)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: create recent-files cache: %w", err)
	}
	idx.recent = recent

	return idx, nil
}

// AddFileModels stores the models of filePath.
//
// **Thread Safety:** Safe for concurrent calls.
func (mi *ModelIndex) AddFileModels(filePath string, models []model.Model, stats extractor.Stats) *FileModels {
	fm := &FileModels{
		FilePath:  filePath,
		Models:    models,
		Stats:     stats,
		Timestamp: time.Now().UnixNano(),
	}

	mi.mu.Lock()
	mi.files[filePath] = fm
	delete(mi.dirtyFiles, filePath)
	mi.recent.Add(filePath, struct{}{})
	mi.mu.Unlock()

	mi.updates.Add(1)
	mi.version.Add(1)

	if mi.config.Debug {
		mi.logger.Debug("Indexed file", "path", filePath, "models", len(models))
	}
	return fm
}

// GetFileModels returns the entry of filePath.
func (mi *ModelIndex) GetFileModels(filePath string) (*FileModels, bool) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	fm, ok := mi.files[filePath]
	return fm, ok
}

// Files returns the indexed file paths, sorted.
func (mi *ModelIndex) Files() []string {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	return mi.sortedFilesUnsafe()
}

func (mi *ModelIndex) sortedFilesUnsafe() []string {
	paths := make([]string, 0, len(mi.files))
	for path := range mi.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// RecentFiles returns the most recently extracted files, newest first.
func (mi *ModelIndex) RecentFiles(limit int) []string {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	keys := mi.recent.Keys() // oldest first
	out := make([]string, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, keys[i])
	}
	return out
}

// AllModels returns copies of every indexed model, ordered by file path
// and then by traversal order within a file.
func (mi *ModelIndex) AllModels() []model.Model {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	var out []model.Model
	for _, path := range mi.sortedFilesUnsafe() {
		for _, m := range mi.files[path].Models {
			out = append(out, m.Clone())
		}
	}
	if out == nil {
		out = []model.Model{}
	}
	return out
}

// FindModels returns copies of the models matching predicate, in
// AllModels order.
//
// **Example:**
//
//	queues := idx.FindModels(func(m *model.Model) bool {
//	    return m.Parent == "ns3::Queue"
//	})
func (mi *ModelIndex) FindModels(predicate func(*model.Model) bool) []model.Model {
	var out []model.Model
	for _, m := range mi.AllModels() {
		if predicate(&m) {
			out = append(out, m)
		}
	}
	return out
}

// Query builds a query service over a snapshot of the index.
func (mi *ModelIndex) Query(qualifier string) *catalog.QueryService {
	return catalog.NewQueryServiceFromModels(mi.AllModels(), qualifier)
}

// Version increases with every change to the index.
func (mi *ModelIndex) Version() uint64 {
	return mi.version.Load()
}

// InvalidateFile marks a file as dirty. Its models stay visible until the
// file is re-extracted or removed.
func (mi *ModelIndex) InvalidateFile(filePath string) {
	mi.mu.Lock()
	mi.dirtyFiles[filePath] = true
	mi.mu.Unlock()

	if mi.config.Debug {
		mi.logger.Debug("Invalidated file", "path", filePath)
	}
}

// IsDirty checks if a file is marked for re-extraction.
func (mi *ModelIndex) IsDirty(filePath string) bool {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	return mi.dirtyFiles[filePath]
}

// RemoveFile removes a file and its models. It reports whether the file
// was indexed.
func (mi *ModelIndex) RemoveFile(filePath string) bool {
	mi.mu.Lock()
	_, ok := mi.files[filePath]
	delete(mi.files, filePath)
	delete(mi.dirtyFiles, filePath)
	mi.recent.Remove(filePath)
	mi.mu.Unlock()

	if ok {
		mi.removals.Add(1)
		mi.version.Add(1)
		if mi.config.Debug {
			mi.logger.Debug("Removed file", "path", filePath)
		}
	}
	return ok
}

// GetStats returns current index statistics.
func (mi *ModelIndex) GetStats() ModelIndexStats {
	mi.mu.RLock()
	total := 0
	for _, fm := range mi.files {
		total += len(fm.Models)
	}
	stats := ModelIndexStats{
		IndexedFiles: len(mi.files),
		TotalModels:  total,
		DirtyFiles:   len(mi.dirtyFiles),
	}
	mi.mu.RUnlock()

	stats.Updates = mi.updates.Load()
	stats.Removals = mi.removals.Load()
	stats.RecentEvicted = mi.evictions.Load()
	stats.Version = mi.version.Load()
	return stats
}
