package scanner

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"intlscan/pkg/catalog"
	"intlscan/pkg/extractor"
	"intlscan/pkg/parser"
)

const contentHashCacheSize = 4096

// Watcher keeps the catalog in sync with filesystem changes. Events are
// debounced per file and handed to a single consumer goroutine that owns
// the in-memory catalog, so merges and saves never race.
//
// Watch-mode merges are additive: keys from changed files are inserted,
// existing values are kept, and nothing is ever orphaned. Deleting a key
// from the output requires a full one-shot scan.
type Watcher struct {
	cfg     Config
	absRoot string
	ext     *extractor.Extractor
	store   *catalog.Store
	log     *slog.Logger

	fsw     *fsnotify.Watcher
	pending chan string

	mu     sync.Mutex
	timers map[string]*time.Timer

	// hashes skips re-extraction when a file's content is unchanged,
	// which editors that write twice per save trigger constantly.
	hashes *lru.Cache[string, [sha256.Size]byte]
}

// NewWatcher creates a watcher over cfg.Root feeding the catalog at
// cfg.OutputPath. The extractor is shared with the one-shot scanner so
// parser pools are reused.
func NewWatcher(cfg Config, ext *extractor.Extractor, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	hashes, err := lru.New[string, [sha256.Size]byte](contentHashCacheSize)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		cfg:     cfg,
		absRoot: absRoot,
		ext:     ext,
		store:   catalog.NewStore(cfg.OutputPath, logger),
		log:     logger,
		fsw:     fsw,
		pending: make(chan string, 256),
		timers:  make(map[string]*time.Timer),
		hashes:  hashes,
	}, nil
}

// Run watches until ctx is cancelled. It loads the catalog once, then
// for every debounced change re-extracts the file and merges new keys
// in. A failed save is fatal; everything else is logged and survived.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.addWatchDirs(); err != nil {
		return err
	}

	cat, err := w.store.Load()
	if err != nil {
		return err
	}

	w.log.Info("watching for changes", "root", w.absRoot, "output", w.store.Path())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-w.pending:
			if err := w.processFile(cat, path); err != nil {
				return err
			}

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

// addWatchDirs registers Root and every non-excluded subdirectory.
// fsnotify watches are not recursive, so each directory is added
// individually; directories created later are added from their Create
// events.
func (w *Watcher) addWatchDirs() error {
	return filepath.WalkDir(w.absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) excludedDir(path string) bool {
	relPath, err := filepath.Rel(w.absRoot, path)
	if err != nil {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range w.cfg.Exclude {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		// New directories must be watched so files created inside them
		// are seen.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(event.Name) {
				if err := w.fsw.Add(event.Name); err != nil {
					w.log.Warn("failed to watch directory", "dir", event.Name, "error", err)
				}
			}
			return
		}
		w.scheduleFile(event.Name)

	case event.Op.Has(fsnotify.Write):
		w.scheduleFile(event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if matchesScan(w.cfg, w.absRoot, event.Name) {
			w.log.Debug("file removed, catalog unchanged", "file", event.Name)
		}
		w.hashes.Remove(event.Name)
	}
}

// scheduleFile starts or resets the per-file debounce timer. Rapid saves
// of the same file collapse into one extraction.
func (w *Watcher) scheduleFile(path string) {
	if !matchesScan(w.cfg, w.absRoot, path) {
		return
	}

	debounce := time.Duration(w.cfg.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(debounce)
		return
	}
	w.timers[path] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.pending <- path:
		default:
			// Queue full; re-arm rather than drop the change.
			w.scheduleFile(path)
		}
	})
}

// processFile re-extracts one file and folds its keys into the catalog,
// persisting only when the merge added something.
func (w *Watcher) processFile(cat *catalog.Catalog, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // Removed during the debounce window.
		}
		w.log.Warn("failed to read changed file", "file", path, "error", err)
		return nil
	}

	sum := sha256.Sum256(source)
	if prev, ok := w.hashes.Get(path); ok && prev == sum {
		w.log.Debug("content unchanged, skipping", "file", path)
		return nil
	}

	keys, diags, err := w.ext.ExtractKeys(path, source)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			w.log.Warn("file skipped: syntax error", "file", path, "error", perr.Error())
		} else {
			w.log.Warn("extraction failed", "file", path, "error", err)
		}
		// Hash is not cached so the file is re-extracted once fixed.
		return nil
	}
	w.hashes.Add(path, sum)

	for _, d := range diags {
		w.log.Debug("extraction diagnostic",
			"file", d.File, "line", d.Line, "column", d.Column, "message", d.Message)
	}

	merged, res := catalog.Merge(cat, keys, catalog.Incremental)
	for _, c := range res.Conflicts {
		w.log.Warn("key conflict", "key", c.Key, "files", c.Files)
	}

	if !res.Changed() {
		w.log.Debug("no new keys", "file", path, "keys", len(keys))
		return nil
	}

	if err := w.store.Save(merged); err != nil {
		return err
	}
	*cat = *merged

	w.log.Info("catalog updated",
		"file", path, "added", len(res.Added), "total", merged.Len())
	return nil
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.fsw.Close()
}
