// Package parser owns the tree-sitter C++ parsers used to read source files.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/gnana997/splash/pkg/util"
)

// ParserManager hands out tree-sitter parsers from per-language pools.
//
// Pools are created lazily. Callers own the returned trees and must Close
// them; the manager itself must be closed to release its parsers.
//
// Safe for concurrent use.
type ParserManager struct {
	pools    map[Language]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
		parsesFailed int
	}
}

// NewParserManager creates a manager whose pools hold up to poolSize
// parsers each. poolSize <= 0 picks util.WorkerCount(0) so that every scan
// worker can hold a parser at once.
func NewParserManager(logger *slog.Logger, poolSize int) *ParserManager {
	return &ParserManager{
		pools:    make(map[Language]*parserPool),
		poolSize: util.WorkerCount(poolSize),
		logger:   util.OrDefault(logger),
	}
}

// Parse parses source with the grammar for lang. Trees with syntax errors
// are still returned; macros the grammar cannot expand commonly produce
// them and the surrounding code stays usable.
func (pm *ParserManager) Parse(ctx context.Context, source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("parser: cannot parse unknown language")
	}

	pool, err := pm.getOrCreatePool(lang)
	if err != nil {
		return nil, err
	}

	p, err := pool.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("parser: acquire %s parser: %w", lang, err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	if tree == nil {
		pm.stats.parsesFailed++
	}
	pm.mutex.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("parser: %s parser returned no tree", lang)
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "language", lang.String())
	}
	return tree, nil
}

// ParseFile parses source after detecting the language from filePath.
func (pm *ParserManager) ParseFile(ctx context.Context, source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("parser: unsupported file extension: %s", filePath)
	}
	return pm.Parse(ctx, source, lang)
}

// Language returns the tree-sitter grammar for lang, for query compilation.
func (pm *ParserManager) Language(lang Language) (*ts.Language, error) {
	switch lang {
	case LanguageCPP:
		return ts.NewLanguage(ts_cpp.Language()), nil
	default:
		return nil, fmt.Errorf("parser: unsupported language: %s", lang)
	}
}

// Close releases every pooled parser. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	for _, pool := range pm.pools {
		pool.close()
	}
	pm.pools = make(map[Language]*parserPool)

	pm.logger.Debug("closed parser manager",
		"parses_called", pm.stats.parsesCalled,
		"parses_failed", pm.stats.parsesFailed)
	return nil
}

func (pm *ParserManager) getOrCreatePool(lang Language) (*parserPool, error) {
	pm.mutex.RLock()
	pool, ok := pm.pools[lang]
	pm.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, ok = pm.pools[lang]; ok {
		return pool, nil
	}

	grammar, err := pm.Language(lang)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(lang, grammar, pm.poolSize, pm.logger)
	pm.pools[lang] = pool
	pm.logger.Debug("created parser pool", "language", lang.String(), "max_size", pm.poolSize)
	return pool, nil
}

// Stats returns parser usage statistics.
func (pm *ParserManager) Stats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.createdCount()
	}
	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.stats.parsesCalled,
		ParsesFailed:   pm.stats.parsesFailed,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
	ParsesFailed   int
}
