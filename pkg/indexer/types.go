package indexer

import (
	"time"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/model"
)

// FileModels holds the extraction outcome for one source file.
//
// **Lifecycle:**
//   - Created when a file is extracted by the scanner or the watcher
//   - Replaced wholesale when the file is re-extracted
//   - Dropped when the file is removed from disk
type FileModels struct {
	// FilePath is the absolute path of the source file
	FilePath string

	// Models in traversal order
	Models []model.Model

	// Stats of the traversal that produced Models
	Stats extractor.Stats

	// Timestamp is when the file was extracted (Unix nanoseconds)
	Timestamp int64
}

// ModelIndexConfig configures the model index.
type ModelIndexConfig struct {
	// MaxRecentFiles bounds the recently-extracted file cache used by
	// RecentFiles. Default: 128
	MaxRecentFiles int

	// Debug enables per-file debug logging
	Debug bool
}

// DefaultModelIndexConfig returns the default configuration.
func DefaultModelIndexConfig() ModelIndexConfig {
	return ModelIndexConfig{
		MaxRecentFiles: 128,
	}
}

// ModelIndexStats provides index statistics.
type ModelIndexStats struct {
	IndexedFiles  int   // Files currently in the index
	TotalModels   int   // Models across all indexed files
	DirtyFiles    int   // Files invalidated and awaiting re-extraction
	Updates       int64 // Files added or replaced since creation
	Removals      int64 // Files removed since creation
	RecentEvicted int64 // Entries evicted from the recent-files cache
	Version       uint64
}

// ScanOptions configures workspace scanning.
type ScanOptions struct {
	// Include patterns (doublestar globs relative to the root).
	// Default: C++ translation units plus AST artifacts.
	Include []string

	// Exclude patterns, matched against files and directories.
	// Default: VCS and build directories
	Exclude []string

	// MaxWorkers is the number of parallel extractions.
	// Default: util.WorkerCount(0)
	MaxWorkers int

	// ProgressCallback is called after each processed file
	ProgressCallback ProgressCallback
}

// DefaultScanOptions returns default scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{
			"**/*.cc",
			"**/*.cpp",
			"**/*.cxx",
			"**/*.c++",
			"**/*.ast",
			"**/*.ast.json",
		},
		Exclude: []string{
			".git/**",
			".svn/**",
			".hg/**",
			"build/**",
			"cmake-cache/**",
			"**/CMakeFiles/**",
		},
	}
}

// ScanStats provides scan statistics.
type ScanStats struct {
	FilesDiscovered     int         // Files matching include/exclude
	FilesProcessed      int         // Files extracted successfully
	FilesFailed         int         // Files that failed to load
	ModelsExtracted     int         // Models across processed files
	AttributesExtracted int         // Attributes across those models
	TotalTimeMs         int64       // Wall clock time of the scan
	WorkerCount         int         // Number of workers used
	Errors              []FileError // Per-file failures
	StartTime           time.Time
	EndTime             time.Time
}

// FileError records an extraction failure.
type FileError struct {
	FilePath string
	Error    error
}

// ProgressCallback is called after each processed file.
//
// **Parameters:**
//   - current: Files processed so far (successes and failures)
//   - total: Files discovered
//   - filePath: The file just processed
type ProgressCallback func(current, total int, filePath string)

// WatchOptions configures the file watcher.
type WatchOptions struct {
	// DebounceMs is the quiet period before a changed file is re-extracted.
	// Editors write files in bursts. Default: 200
	DebounceMs int

	// Scan supplies the include/exclude patterns deciding which files
	// are re-extracted. Directories matching Exclude are not watched.
	Scan ScanOptions

	// OnUpdate is called after the index changed because of a file event.
	// It runs on the watcher's goroutines and must not block for long.
	OnUpdate func(filePath string)
}

// DefaultWatchOptions returns default watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		Scan:       DefaultScanOptions(),
	}
}
