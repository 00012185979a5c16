package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"intlscan/pkg/parser"
)

// DiscoverFiles walks cfg.Root applying the include/exclude globs and
// returns a sorted slice of absolute file paths, so downstream extraction
// and merge order is deterministic across runs.
func DiscoverFiles(cfg Config) ([]string, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range cfg.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		// Only files the parser understands can contribute keys.
		if parser.DetectLanguage(path) == parser.LanguageUnknown {
			return nil
		}

		if len(cfg.Include) > 0 {
			matched := false
			for _, pattern := range cfg.Include {
				if m, _ := doublestar.PathMatch(pattern, relPath); m {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchesScan reports whether an absolute path falls inside the scan's
// include/exclude globs. Used by the watcher to filter events.
func matchesScan(cfg Config, absRoot, path string) bool {
	relPath, err := filepath.Rel(absRoot, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range cfg.Exclude {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return false
		}
	}
	if parser.DetectLanguage(path) == parser.LanguageUnknown {
		return false
	}
	if len(cfg.Include) == 0 {
		return true
	}
	for _, pattern := range cfg.Include {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}
