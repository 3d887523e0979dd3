package extractor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/model"
)

var errNoSource = errors.New("no text source")

// Stats counts what one traversal matched.
type Stats struct {
	Visited        int `json:"visited"`
	Namespaces     int `json:"namespaces"`
	FactoryMethods int `json:"factory_methods"`
	Declarations   int `json:"declarations"`
	ParentRefs     int `json:"parent_refs"`
	AttributeCalls int `json:"attribute_calls"`
	Literals       int `json:"literals"`
	Types          int `json:"types"`
	TextFailures   int `json:"text_failures"`
}

// traversal is the state of one extraction run. It owns its accumulator;
// nothing is shared between runs.
type traversal struct {
	patterns Patterns
	source   TextSource
	logger   *slog.Logger
	debug    bool

	acc   *model.Accumulator
	stats Stats
}

func newTraversal(p Patterns, source TextSource, logger *slog.Logger) *traversal {
	return &traversal{
		patterns: p,
		source:   source,
		logger:   logger,
		debug:    logger.Enabled(context.Background(), slog.LevelDebug),
		acc:      model.NewAccumulator(),
	}
}

// walk visits every descendant of c. depth is how many levels of the
// pattern have matched above the children of c.
//
// Each child is classified at the depth of its parent. A match raises the
// depth seen by that child's own descendants; siblings are unaffected.
func (t *traversal) walk(c *ast.Cursor, depth int) {
	ast.VisitChildren(c, func(cursor, parent *ast.Cursor) ast.VisitResult {
		t.stats.Visited++
		t.walk(cursor, t.match(cursor, parent, depth))
		return ast.VisitContinue
	})
}

// match applies the first pattern that fits cursor at depth and returns the
// depth for its children. The parent reference and attribute call rules at
// depth 3 and below are independent in principle, but one needs a TypeRef
// and the other a CallExpr, so checking them in sequence changes nothing.
func (t *traversal) match(cursor, parent *ast.Cursor, depth int) int {
	p := t.patterns

	switch {
	case depth == 0 && IsFromPrimaryFile(cursor) && IsNamespaceNamed(cursor, p.Namespace):
		t.stats.Namespaces++
		t.trace("namespace", cursor, depth)

	case depth == 1 && IsMethodNamed(cursor, p.FactoryMethod):
		name := ast.SpellingOf(cursor.SemanticParent())
		t.acc.OpenModel(name)
		t.stats.FactoryMethods++
		t.trace("factory method", cursor, depth, "model", name)

	case depth >= 2 && IsDeclOfType(cursor, p.DeclarationType, p.FactoryMethod):
		t.stats.Declarations++
		t.trace("declaration", cursor, depth)

	case depth >= 3 && IsTypeReferenceUnder(cursor, parent, p.ParentCall):
		t.acc.SetParent(cursor.Type())
		t.stats.ParentRefs++
		t.trace("parent reference", cursor, depth, "parent", cursor.Type())

	case depth >= 3 && IsCallReturning(cursor, p.DeclarationType, p.AttributeCall):
		t.stats.AttributeCalls++
		t.trace("attribute call", cursor, depth, "arguments", cursor.NumArguments())
		t.arguments(cursor)

	default:
		return depth
	}
	return depth + 1
}

func (t *traversal) trace(what string, c *ast.Cursor, depth int, args ...any) {
	if !t.debug {
		return
	}
	ext := c.Extent()
	t.logger.Debug("matched "+what, append([]any{
		"depth", depth,
		"kind", c.Kind().String(),
		"spelling", c.Spelling(),
		"type", c.Type(),
		"line", ext.Line,
	}, args...)...)
}
