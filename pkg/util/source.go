package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// SourceCache reads declaration sources through read-only memory maps.
//
// A generation run maps each source once and closes the cache when it ends.
// Read returns a private copy, so the bytes stay valid after Close. Files
// that cannot be mapped are read with os.ReadFile instead.
//
// Thread-safe: Multiple goroutines can call methods concurrently.
type SourceCache struct {
	mu     sync.RWMutex
	files  map[string]*mappedSource
	logger *slog.Logger

	statsMu sync.Mutex
	stats   SourceCacheStats
}

type mappedSource struct {
	data mmap.MMap
	file *os.File
}

// SourceCacheStats tracks cache usage.
type SourceCacheStats struct {
	Hits         int64
	Misses       int64
	MmapFailures int64
	FilesCached  int
}

// NewSourceCache creates an empty cache. A nil logger uses slog.Default().
func NewSourceCache(logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{
		files:  make(map[string]*mappedSource),
		logger: logger,
	}
}

// Read returns the contents of path.
func (c *SourceCache) Read(path string) ([]byte, error) {
	c.mu.RLock()
	src, ok := c.files[path]
	c.mu.RUnlock()
	if ok {
		c.record(func(s *SourceCacheStats) { s.Hits++ })
		return clone(src.data), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have mapped it while we waited for the lock.
	if src, ok := c.files[path]; ok {
		c.record(func(s *SourceCacheStats) { s.Hits++ })
		return clone(src.data), nil
	}
	c.record(func(s *SourceCacheStats) { s.Misses++ })

	src, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.files[path] = src
	return clone(src.data), nil
}

// load must be called while holding mu.Lock.
func (c *SourceCache) load(path string) (*mappedSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %q: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat source %q: %w", path, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &mappedSource{}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		c.logger.Warn("mmap failed, using fallback", "file", path, "size", stat.Size(), "error", err)
		file.Close()
		c.record(func(s *SourceCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		return &mappedSource{data: mmap.MMap(raw)}, nil
	}

	return &mappedSource{data: data, file: file}, nil
}

// Len returns the number of cached sources.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Stats returns current cache metrics.
func (c *SourceCache) Stats() SourceCacheStats {
	files := c.Len()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	stats := c.stats
	stats.FilesCached = files
	return stats
}

// Close unmaps every source. The cache stays usable and starts empty.
func (c *SourceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for path, src := range c.files {
		if err := src.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %q: %w", path, err))
		}
	}
	c.files = make(map[string]*mappedSource)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (c *SourceCache) record(update func(*SourceCacheStats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}

// release unmaps a mapped source. Fallback entries only hold heap bytes.
func (s *mappedSource) release() error {
	if s.file == nil {
		return nil
	}
	err := s.data.Unmap()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
