// Package queries compiles, caches and runs the tree-sitter queries used
// alongside the C++ lowering.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/splash/pkg/parser"
	"github.com/gnana997/splash/pkg/parser/queries/symbols"
	"github.com/gnana997/splash/pkg/parser/queries/types"
	"github.com/gnana997/splash/pkg/util"
)

// QueryType identifies which query to run.
type QueryType int

const (
	// QueryTypeSymbols captures namespaces and function definitions.
	QueryTypeSymbols QueryType = iota
	// QueryTypeTypes captures names used in type positions.
	QueryTypeTypes
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeSymbols:
		return "symbols"
	case QueryTypeTypes:
		return "types"
	default:
		return "unknown"
	}
}

type queryKey struct {
	lang  parser.Language
	qtype QueryType
}

// QueryManager compiles queries lazily and keeps them until Close.
//
// Safe for concurrent use.
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        util.OrDefault(logger),
	}
}

// GetQuery returns the compiled query for lang and qtype.
func (qm *QueryManager) GetQuery(lang parser.Language, qtype QueryType) (*ts.Query, error) {
	key := queryKey{lang: lang, qtype: qtype}

	qm.mutex.RLock()
	query, ok := qm.cache[key]
	qm.mutex.RUnlock()
	if ok {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, ok = qm.cache[key]; ok {
		return query, nil
	}

	source, err := queryString(lang, qtype)
	if err != nil {
		return nil, err
	}

	grammar, err := qm.parserManager.Language(lang)
	if err != nil {
		return nil, fmt.Errorf("queries: %w", err)
	}

	query, qerr := ts.NewQuery(grammar, source)
	if qerr != nil {
		return nil, fmt.Errorf("queries: compile %s query for %s: %s", qtype, lang, qerr.Message)
	}

	qm.cache[key] = query
	qm.logger.Debug("compiled query", "language", lang.String(), "type", qtype.String())
	return query, nil
}

func queryString(lang parser.Language, qtype QueryType) (string, error) {
	if lang != parser.LanguageCPP {
		return "", fmt.Errorf("queries: unsupported language: %s", lang)
	}
	switch qtype {
	case QueryTypeSymbols:
		return symbols.CPPQueries, nil
	case QueryTypeTypes:
		return types.CPPQueries, nil
	default:
		return "", fmt.Errorf("queries: unknown query type: %d", qtype)
	}
}

// ExecuteQuery runs query over tree and collects every match.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("queries: tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("queries: query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	iter := cursor.Matches(query, tree.RootNode(), source)

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(names) {
				name = names[capture.Index]
			}
			category, field := parseCaptureName(name)

			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Text:     capture.Node.Utf8Text(source),
				Location: nodeLocation(&capture.Node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// CaptureTexts returns the distinct texts captured under category, in
// first-seen order.
func CaptureTexts(matches []QueryMatch, category string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		for _, c := range m.Captures {
			if c.Category != category || c.Text == "" || seen[c.Text] {
				continue
			}
			seen[c.Text] = true
			out = append(out, c.Text)
		}
	}
	return out
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	for key, query := range qm.cache {
		query.Close()
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name, e.g. "type.class".
	Name string

	// Category and Field are the parts of Name before and after the first
	// dot. Field is empty when Name has no dot.
	Category string
	Field    string

	Text     string
	Location Location
}

// Location represents a position in source code. Lines and columns are
// 1-based, byte offsets 0-based.
type Location struct {
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32
	EndByte     uint32
}

func parseCaptureName(name string) (category, field string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
