package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"intlscan/pkg/extractor"
	"intlscan/pkg/parser"
	"intlscan/pkg/util"
)

// ExtractAll runs key extraction on each file in parallel and returns the
// per-file results in the input file order, so merge output is
// deterministic regardless of worker scheduling.
//
// Per-file failures (syntax errors, unreadable files) are logged and
// counted but never stop the batch. Cancellation is cooperative at the
// per-file boundary: workers stop picking up files once ctx is done.
func ExtractAll(
	ctx context.Context,
	files []string,
	ext *extractor.Extractor,
	cache *util.SourceCache,
	workers int,
	logger *slog.Logger,
) ([]FileKeys, int) {
	if len(files) == 0 {
		return nil, 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	numWorkers := util.GetOptimalPoolSizeWithOverride(workers)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job, numWorkers*2)

	// Results are index-addressed so output order equals input order.
	results := make([]*FileKeys, len(files))
	errsByIndex := make([]error, len(files))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}

				source, err := cache.Read(j.path)
				if err != nil {
					mu.Lock()
					errsByIndex[j.index] = err
					mu.Unlock()
					continue
				}

				keys, diags, err := ext.ExtractKeys(j.path, source)
				mu.Lock()
				if err != nil {
					errsByIndex[j.index] = err
				} else {
					results[j.index] = &FileKeys{File: j.path, Keys: keys}
				}
				mu.Unlock()

				for _, d := range diags {
					logger.Debug("extraction diagnostic",
						"file", d.File, "line", d.Line, "column", d.Column, "message", d.Message)
				}
			}
		}()
	}

	for i, f := range files {
		jobs <- job{index: i, path: f}
	}
	close(jobs)
	wg.Wait()

	var extracted []FileKeys
	failed := 0
	for i := range files {
		if err := errsByIndex[i]; err != nil {
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				logger.Warn("file skipped: syntax error",
					"file", perr.File, "error", perr.Error())
			} else {
				logger.Warn("extraction failed", "file", files[i], "error", err)
			}
			failed++
			continue
		}
		if results[i] != nil {
			extracted = append(extracted, *results[i])
		}
	}

	return extracted, failed
}
