// Package util holds small pieces of infrastructure shared by the splash
// packages: logger construction, worker sizing and a memory-mapped source
// cache used to slice literal text out of C++ files by byte offset.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// SourceCache gives byte-range access to source files.
//
// Files are mapped lazily on first access and stay mapped until Close. A
// cache is cheap to create; the extractor opens one per translation unit and
// closes it when the traversal finishes.
//
// Safe for concurrent use.
type SourceCache interface {
	// Bytes returns the full content of a file. The slice aliases the mapping
	// and must not be retained after Close.
	Bytes(path string) ([]byte, error)

	// Slice returns the bytes in [start, end). start == end yields an empty
	// string. Ranges past the end of the file are an error.
	Slice(path string, start, end uint32) (string, error)

	// Len reports how many files are currently held.
	Len() int

	// Stats returns cumulative counters.
	Stats() SourceCacheStats

	// Close unmaps every file and resets the cache.
	Close() error
}

// SourceCacheConfig controls SourceCache behavior.
type SourceCacheConfig struct {
	// MaxFiles caps the number of mapped files. 0 means unlimited.
	MaxFiles int

	// Logger receives mmap fallback warnings. Nil uses slog.Default().
	Logger *slog.Logger
}

// SourceCacheStats tracks cache activity.
type SourceCacheStats struct {
	Loads        int64
	Hits         int64
	Misses       int64
	MmapFailures int64
}

type mappedSource struct {
	data mmap.MMap
	file *os.File
	// heap is set when mmap failed and the file was read instead.
	heap []byte
}

func (m *mappedSource) bytes() []byte {
	if m.heap != nil {
		return m.heap
	}
	return m.data
}

type sourceCache struct {
	cfg    SourceCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	files map[string]*mappedSource

	statsMu sync.Mutex
	stats   SourceCacheStats
}

// NewSourceCache creates an empty cache.
func NewSourceCache(cfg SourceCacheConfig) SourceCache {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &sourceCache{
		cfg:    cfg,
		logger: cfg.Logger,
		files:  make(map[string]*mappedSource),
	}
}

func (c *sourceCache) get(path string) (*mappedSource, error) {
	c.mu.RLock()
	ms, ok := c.files[path]
	c.mu.RUnlock()
	if ok {
		c.count(func(s *SourceCacheStats) { s.Hits++ })
		return ms, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have mapped it while we waited.
	if ms, ok := c.files[path]; ok {
		c.count(func(s *SourceCacheStats) { s.Hits++ })
		return ms, nil
	}

	c.count(func(s *SourceCacheStats) { s.Misses++ })

	if c.cfg.MaxFiles > 0 && len(c.files) >= c.cfg.MaxFiles {
		return nil, fmt.Errorf("util: source cache full (%d files)", c.cfg.MaxFiles)
	}

	ms, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.files[path] = ms
	c.count(func(s *SourceCacheStats) { s.Loads++ })
	return ms, nil
}

func (c *sourceCache) load(path string) (*mappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("util: open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("util: stat %q: %w", path, err)
	}

	// A zero-length file cannot be mapped.
	if info.Size() == 0 {
		f.Close()
		return &mappedSource{heap: []byte{}}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		c.logger.Warn("mmap failed, reading file instead", "file", path, "error", err)
		c.count(func(s *SourceCacheStats) { s.MmapFailures++ })
		f.Close()

		buf, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("util: read %q: %w", path, readErr)
		}
		return &mappedSource{heap: buf}, nil
	}

	return &mappedSource{data: data, file: f}, nil
}

func (c *sourceCache) Bytes(path string) ([]byte, error) {
	ms, err := c.get(path)
	if err != nil {
		return nil, err
	}
	return ms.bytes(), nil
}

func (c *sourceCache) Slice(path string, start, end uint32) (string, error) {
	data, err := c.Bytes(path)
	if err != nil {
		return "", err
	}
	if end < start {
		return "", fmt.Errorf("util: invalid range [%d, %d) in %q", start, end, path)
	}
	if int(end) > len(data) {
		return "", fmt.Errorf("util: range [%d, %d) past end of %q (%d bytes)", start, end, path, len(data))
	}
	return string(data[start:end]), nil
}

func (c *sourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

func (c *sourceCache) Stats() SourceCacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *sourceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for path, ms := range c.files {
		if ms.data != nil {
			if err := ms.data.Unmap(); err != nil {
				errs = append(errs, fmt.Errorf("unmap %q: %w", path, err))
			}
		}
		if ms.file != nil {
			if err := ms.file.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", path, err))
			}
		}
	}
	c.files = make(map[string]*mappedSource)

	if len(errs) > 0 {
		return fmt.Errorf("util: closing source cache: %v", errs)
	}
	return nil
}

func (c *sourceCache) count(fn func(*SourceCacheStats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}
