// Package scanner orchestrates extraction runs: one-shot full scans and
// the incremental watch loop. It sequences discovery, parallel
// extraction, merging and persistence; the heavy lifting lives in
// pkg/extractor and pkg/catalog.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"intlscan/pkg/catalog"
	"intlscan/pkg/extractor"
	"intlscan/pkg/parser"
	"intlscan/pkg/util"
)

// ErrNoFilesMatched is returned when the include globs matched nothing;
// the CLI maps it to a non-zero exit.
var ErrNoFilesMatched = errors.New("no source files matched")

// Scanner drives scans against one catalog file.
type Scanner struct {
	pm    *parser.Manager
	ext   *extractor.Extractor
	cache *util.SourceCache
	log   *slog.Logger
}

// NewScanner creates a scanner with all required dependencies.
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	pm := parser.NewManager(logger)
	return &Scanner{
		pm:    pm,
		ext:   extractor.NewExtractor(pm, logger),
		cache: util.NewSourceCache(logger),
		log:   logger,
	}
}

// Extractor exposes the underlying extractor (shared with the watcher).
func (s *Scanner) Extractor() *extractor.Extractor { return s.ext }

// Run executes a one-shot scan: enumerate matching files, extract and
// resolve each in parallel, merge all results into the existing catalog
// in one full-reconciliation batch, persist.
//
// An unreadable or corrupt existing catalog and an unwritable output are
// fatal for the whole run; per-file failures are not.
func (s *Scanner) Run(ctx context.Context, cfg Config) (*Stats, error) {
	totalStart := time.Now()
	stats := Stats{}

	discoveryStart := time.Now()
	files, err := DiscoverFiles(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.log.Info("discovery complete", "files", len(files), "ms", stats.DiscoveryTimeMs)

	if len(files) == 0 {
		return &stats, fmt.Errorf("%w in %s", ErrNoFilesMatched, cfg.Root)
	}

	store := catalog.NewStore(cfg.OutputPath, s.log)
	existing, err := store.Load()
	if err != nil {
		return &stats, err
	}

	extractionStart := time.Now()
	results, failed := ExtractAll(ctx, files, s.ext, s.cache, cfg.Workers, s.log)
	stats.FilesExtracted = len(results)
	stats.FilesFailed = failed
	stats.ExtractionTimeMs = time.Since(extractionStart).Milliseconds()

	var keys []extractor.Key
	for _, r := range results {
		keys = append(keys, r.Keys...)
	}
	stats.KeysExtracted = len(keys)

	s.log.Info("extraction complete",
		"extracted", len(results), "failed", failed, "keys", len(keys),
		"ms", stats.ExtractionTimeMs)

	if err := ctx.Err(); err != nil {
		return &stats, err
	}

	mergeStart := time.Now()
	merged, res := catalog.Merge(existing, keys, catalog.Reconcile)
	stats.KeysAdded = len(res.Added)
	stats.KeysRetained = len(res.Retained)
	stats.KeysOrphaned = len(res.Orphaned)
	stats.Conflicts = len(res.Conflicts)

	for _, c := range res.Conflicts {
		s.log.Warn("key conflict", "key", c.Key, "files", c.Files)
	}
	for _, key := range res.Orphaned {
		s.log.Info("orphaned key removed from output", "key", key)
	}

	if err := store.Save(merged); err != nil {
		return &stats, err
	}
	stats.MergeTimeMs = time.Since(mergeStart).Milliseconds()
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	s.log.Info("merge complete",
		"added", stats.KeysAdded, "retained", stats.KeysRetained,
		"orphaned", stats.KeysOrphaned, "conflicts", stats.Conflicts,
		"ms", stats.MergeTimeMs)

	return &stats, nil
}

// Close releases parser and file-cache resources.
func (s *Scanner) Close() {
	s.cache.Close()
	s.pm.Close()
}
