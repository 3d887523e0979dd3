// Package extractor walks a cursor tree and collects the models declared
// through the simulator's type registration idiom:
//
//	namespace ns3 {
//	TypeId
//	Queue::GetTypeId (void)
//	{
//	  static TypeId tid = TypeId ("ns3::Queue")
//	    .SetParent<Object> ()
//	    .AddAttribute ("MaxPackets", "The maximum number of packets.",
//	                   UintegerValue (100), ...);
//	  return tid;
//	}
//	}
//
// A model is opened for every factory method found directly inside the
// namespace, named after the class owning the method. The parent comes from
// the template argument of the parent call, and every attribute call adds
// one attribute from its name, description and value-type arguments.
//
// Attributes are recorded in traversal order. A fluent chain nests each
// call inside the next, so the last call of the chain is met first and the
// attributes of a chain come out in reverse source order.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

// UnitLoader produces translation units. frontend.Loader satisfies it.
type UnitLoader interface {
	LoadContext(ctx context.Context, path string) (*ast.TranslationUnit, error)
}

// Config configures an Extractor.
type Config struct {
	// Patterns are completed with DefaultPatterns before validation.
	Patterns Patterns

	// Loader is needed by ExtractFile only.
	Loader UnitLoader

	Logger *slog.Logger
}

// Result is the outcome of one traversal.
type Result struct {
	File   string        `json:"file"`
	Models []model.Model `json:"models"`
	Stats  Stats         `json:"stats"`
}

// Extractor runs traversals. It holds configuration only, so one Extractor
// may run any number of traversals concurrently; each gets its own
// accumulator.
type Extractor struct {
	patterns Patterns
	loader   UnitLoader
	logger   *slog.Logger
}

// New creates an extractor.
func New(cfg Config) (*Extractor, error) {
	patterns := cfg.Patterns.WithDefaults()
	if err := patterns.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		patterns: patterns,
		loader:   cfg.Loader,
		logger:   util.OrDefault(cfg.Logger),
	}, nil
}

// Patterns returns the effective patterns.
func (e *Extractor) Patterns() Patterns { return e.patterns }

// Run extracts the models of tu. Literal text is read from source using
// the extents of the literal cursors. Pattern misses are not errors: a
// unit without matches yields an empty model list.
func (e *Extractor) Run(tu *ast.TranslationUnit, source TextSource) *Result {
	t := newTraversal(e.patterns, source, e.logger)
	t.walk(tu.Root(), 0)

	models := t.acc.Models()
	e.logger.Debug("extracted models",
		"file", tu.MainFile(),
		"models", len(models),
		"attribute_calls", t.stats.AttributeCalls,
		"text_failures", t.stats.TextFailures)

	return &Result{
		File:   tu.MainFile(),
		Models: models,
		Stats:  t.stats,
	}
}

// ExtractFile loads path through the configured loader and extracts its
// models, reading literal text from the files the unit's extents name.
// Load failures are returned wrapped as the loader reported them.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("extractor: no loader configured")
	}

	tu, err := e.loader.LoadContext(ctx, path)
	if err != nil {
		return nil, err
	}

	source := util.NewSourceCache(util.SourceCacheConfig{Logger: e.logger})
	defer func() {
		if err := source.Close(); err != nil {
			e.logger.Warn("closing source cache", "file", path, "error", err)
		}
	}()

	return e.Run(tu, source), nil
}
