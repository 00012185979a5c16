// Package parser is the tree-sitter boundary: it turns raw source bytes
// into syntax trees and reports syntax errors with file positions.
// Nothing above this package touches grammar internals.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"intlscan/pkg/util"
)

// poolKey uniquely identifies a parser pool (language + TSX variant).
type poolKey struct {
	lang  Language
	isTSX bool
}

// Manager manages tree-sitter parsers for the supported grammars with
// lazy initialization and thread-safe concurrent access.
//
// Callers own returned Tree instances and must call tree.Close().
// The Manager itself must be closed via Close() to free parser memory.
type Manager struct {
	pools  map[poolKey]*parserPool
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewManager creates a parser Manager. Close() must be called when done.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:  make(map[poolKey]*parserPool),
		logger: logger,
	}
}

// Parse parses source code using the specified language grammar.
//
// The isTSX parameter is only relevant for TypeScript; it selects the
// JSX-enabled grammar. Safe for concurrent use: each call acquires a
// parser from a per-grammar pool.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (m *Manager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pool, err := m.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}
	return tree, nil
}

// ParseFile parses a file's bytes, detecting the grammar from its path.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return m.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases all parser pool resources. The Manager is unusable afterwards.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key, pool := range m.pools {
		if pool != nil {
			pool.close()
			m.logger.Debug("closed parser pool",
				"language", key.lang.String(),
				"isTSX", key.isTSX)
		}
	}
	m.pools = make(map[poolKey]*parserPool)
	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one,
// using double-checked locking.
func (m *Manager) getOrCreatePool(lang Language, isTSX bool) (*parserPool, error) {
	key := poolKey{lang: lang, isTSX: isTSX}

	m.mutex.RLock()
	pool, exists := m.pools[key]
	m.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if pool, exists = m.pools[key]; exists {
		return pool, nil
	}

	langPtr, err := grammarPointer(lang, isTSX)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(lang, langPtr, isTSX, util.GetOptimalPoolSize(), m.logger)
	m.pools[key] = pool

	m.logger.Debug("created parser pool",
		"language", lang.String(),
		"isTSX", isTSX)

	return pool, nil
}

// grammarPointer returns the tree-sitter grammar for a language.
func grammarPointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}
