package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// SourceCache provides read-only access to source files via memory-mapped
// regions, so extraction workers can slice file bytes without copying.
//
// Files are mapped lazily on first access and kept mapped until Close().
// If mmap fails for a file the cache falls back to os.ReadFile and keeps
// the byte slice instead.
//
// Thread-safe: reads take a shared lock, loads take an exclusive lock.
type SourceCache struct {
	mu     sync.RWMutex
	files  map[string]*mappedSource
	logger *slog.Logger
}

// mappedSource is one cached file. file is nil for fallback entries.
type mappedSource struct {
	data mmap.MMap
	file *os.File
}

// NewSourceCache creates an empty cache.
func NewSourceCache(logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{
		files:  make(map[string]*mappedSource),
		logger: logger,
	}
}

// Read returns the file's bytes, mapping it on first access.
//
// The returned slice aliases the mapping and must not be retained after
// Close() or mutated.
func (c *SourceCache) Read(path string) ([]byte, error) {
	c.mu.RLock()
	if ms, ok := c.files[path]; ok {
		c.mu.RUnlock()
		return ms.data, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if ms, ok := c.files[path]; ok {
		return ms.data, nil
	}

	ms, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.files[path] = ms
	return ms.data, nil
}

// load opens and maps a file. Must be called holding mu.
func (c *SourceCache) load(path string) (*mappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	// Zero-byte files cannot be mapped.
	if stat.Size() == 0 {
		f.Close()
		return &mappedSource{data: nil}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		c.logger.Warn("mmap failed, falling back to ReadFile",
			"file", path,
			"error", err)
		f.Close()

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap and fallback read failed for %q: %w", path, readErr)
		}
		return &mappedSource{data: mmap.MMap(raw)}, nil
	}

	return &mappedSource{data: data, file: f}, nil
}

// Len returns the number of cached files.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Close unmaps all files and releases descriptors.
func (c *SourceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for path, ms := range c.files {
		if ms.file != nil {
			if err := ms.data.Unmap(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("unmap %q: %w", path, err)
			}
			if err := ms.file.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close %q: %w", path, err)
			}
		}
	}
	c.files = make(map[string]*mappedSource)
	return firstErr
}
