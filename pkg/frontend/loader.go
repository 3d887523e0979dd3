package frontend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/parser"
	"github.com/gnana997/splash/pkg/parser/queries"
	"github.com/gnana997/splash/pkg/util"
)

// DefaultCacheSize is the number of translation units a Loader keeps.
const DefaultCacheSize = 256

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Parser and Queries are shared with other components when set. When
	// nil the loader creates its own and closes them in Close.
	Parser  *parser.ParserManager
	Queries *queries.QueryManager

	// Types classifies called names. Nil uses DefaultTypeClassifier.
	Types *TypeClassifier

	// Namespaces are extra namespace names, see LowerOptions.
	Namespaces []string

	// CacheSize bounds the unit cache. 0 uses DefaultCacheSize, a negative
	// value disables caching.
	CacheSize int

	Logger *slog.Logger
}

// LoaderStats counts loader activity.
type LoaderStats struct {
	Parsed    int64
	Artifacts int64
	CacheHits int64
}

type cachedUnit struct {
	hash uint64
	unit *ast.TranslationUnit
}

// Loader produces translation units from C++ sources, parsing and lowering
// them, or from AST artifacts written by ast.WriteArtifact.
//
// Lowered units are cached by absolute path and content hash, so reloading
// an unchanged file is free. Units are immutable and may be shared.
//
// Safe for concurrent use.
type Loader struct {
	parser     *parser.ParserManager
	queries    *queries.QueryManager
	ownParser  bool
	ownQueries bool

	types      *TypeClassifier
	namespaces []string
	cache      *lru.Cache[string, cachedUnit]
	logger     *slog.Logger

	parsed    atomic.Int64
	artifacts atomic.Int64
	hits      atomic.Int64
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	logger := util.OrDefault(cfg.Logger)

	l := &Loader{
		parser:     cfg.Parser,
		queries:    cfg.Queries,
		types:      cfg.Types,
		namespaces: append([]string(nil), cfg.Namespaces...),
		logger:     logger,
	}
	if l.types == nil {
		l.types = DefaultTypeClassifier()
	}
	if l.parser == nil {
		l.parser = parser.NewParserManager(logger, 0)
		l.ownParser = true
	}
	if l.queries == nil {
		l.queries = queries.NewQueryManager(l.parser, logger)
		l.ownQueries = true
	}

	size := cfg.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, cachedUnit](size)
		if err != nil {
			return nil, fmt.Errorf("frontend: create unit cache: %w", err)
		}
		l.cache = cache
	}
	return l, nil
}

// Load reads the translation unit for path. Every failure wraps
// ast.ErrLoad.
func (l *Loader) Load(path string) (*ast.TranslationUnit, error) {
	return l.LoadContext(context.Background(), path)
}

// LoadContext is Load with a context bounding the wait for a parser.
func (l *Loader) LoadContext(ctx context.Context, path string) (*ast.TranslationUnit, error) {
	if ast.IsArtifactPath(path) {
		tu, err := ast.ReadArtifactFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ast.ErrLoad, err)
		}
		l.artifacts.Add(1)
		return tu, nil
	}

	if parser.DetectLanguage(path) == parser.LanguageUnknown {
		return nil, fmt.Errorf("%w: %w: %s", ast.ErrLoad, ast.ErrUnsupportedInput, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ast.ErrLoad, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ast.ErrLoad, err)
	}
	return l.LoadSource(ctx, abs, src)
}

// LoadSource lowers src as the content of path without touching the disk.
func (l *Loader) LoadSource(ctx context.Context, path string, src []byte) (*ast.TranslationUnit, error) {
	hash := xxhash.Sum64(src)
	if l.cache != nil {
		if cached, ok := l.cache.Get(path); ok && cached.hash == hash {
			l.hits.Add(1)
			return cached.unit, nil
		}
	}

	tree, err := l.parser.Parse(ctx, src, parser.LanguageCPP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ast.ErrLoad, err)
	}
	defer tree.Close()

	declared, namespaces := l.scan(tree, src, path)

	opts := LowerOptions{
		Types:      l.types.WithDeclared(declared),
		Namespaces: append(append([]string(nil), l.namespaces...), namespaces...),
	}
	tu := Lower(tree, src, path, opts)
	l.parsed.Add(1)

	l.logger.Debug("lowered translation unit",
		"file", path,
		"cursors", tu.Len(),
		"declared_types", len(declared),
		"syntax_errors", tree.RootNode().HasError())

	if l.cache != nil {
		l.cache.Add(path, cachedUnit{hash: hash, unit: tu})
	}
	return tu, nil
}

// scan collects the type names and namespace names of a file. Query
// failures only reduce the precision of cast detection, so they are logged
// and ignored.
func (l *Loader) scan(tree *ts.Tree, src []byte, path string) (types, namespaces []string) {
	run := func(qtype queries.QueryType, category string) []string {
		query, err := l.queries.GetQuery(parser.LanguageCPP, qtype)
		if err != nil {
			l.logger.Warn("query unavailable", "type", qtype.String(), "error", err)
			return nil
		}
		matches, err := l.queries.ExecuteQuery(tree, query, src)
		if err != nil {
			l.logger.Warn("query failed", "type", qtype.String(), "file", path, "error", err)
			return nil
		}
		return queries.CaptureTexts(matches, category)
	}

	return run(queries.QueryTypeTypes, "type"), run(queries.QueryTypeSymbols, "namespace")
}

// Invalidate drops the cached unit for path.
func (l *Loader) Invalidate(path string) {
	if l.cache == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	l.cache.Remove(path)
}

// Stats returns loader counters.
func (l *Loader) Stats() LoaderStats {
	return LoaderStats{
		Parsed:    l.parsed.Load(),
		Artifacts: l.artifacts.Load(),
		CacheHits: l.hits.Load(),
	}
}

// Close releases the parser and query managers the loader created.
func (l *Loader) Close() error {
	if l.ownQueries {
		l.queries.Close()
	}
	if l.ownParser {
		return l.parser.Close()
	}
	return nil
}
