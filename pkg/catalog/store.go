package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store reads and writes the catalog's persisted JSON form. It is the
// only component that touches the on-disk catalog format.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the catalog file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the catalog file path.
func (s *Store) Path() string { return s.path }

// Load reads the catalog. A missing or empty file yields an empty
// catalog, not an error. Corrupt JSON is fatal for the whole run:
// merging against an unknown base state is unsafe.
//
// Entries with invalid values are reported at warn level and preserved;
// they do not fail the load.
func (s *Store) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no existing catalog, starting empty", "path", s.path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %q: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("corrupt catalog %q: %w", s.path, err)
	}

	for _, verr := range c.Validate() {
		s.logger.Warn("invalid catalog entry preserved", "path", s.path, "error", verr)
	}

	return c, nil
}

// Save writes the catalog atomically: the JSON is written to a temporary
// file in the destination directory and renamed over the target, so a
// crash or concurrent reader never observes a half-written catalog.
//
// Output is 2-space indented with entries in catalog order.
func (s *Store) Save(c *Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format catalog: %w", err)
	}
	buf.WriteByte('\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set catalog permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace catalog %q: %w", s.path, err)
	}

	s.logger.Debug("catalog written", "path", s.path, "keys", c.Len())
	return nil
}
