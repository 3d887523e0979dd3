package extractor

import (
	"strings"

	"github.com/gnana997/splash/pkg/ast"
)

// TextSource returns the bytes of a file in [start, end).
// util.SourceCache satisfies it.
type TextSource interface {
	Slice(path string, start, end uint32) (string, error)
}

// literalCleaner removes the quotes and NUL bytes a literal's extent covers.
var literalCleaner = strings.NewReplacer(`"`, "", "\x00", "")

// StripLiteral removes every double quote and NUL byte from raw.
func StripLiteral(raw string) string {
	return literalCleaner.Replace(raw)
}

// literalText returns the cleaned source text of c. Failures never abort
// the traversal: they are logged and counted, and yield "".
func (t *traversal) literalText(c *ast.Cursor) string {
	ext := c.Extent()
	if t.source == nil {
		t.textFailure(c, errNoSource)
		return ""
	}

	raw, err := t.source.Slice(ext.File, ext.Start, ext.End)
	if err != nil {
		t.textFailure(c, err)
		return ""
	}
	return StripLiteral(raw)
}

func (t *traversal) textFailure(c *ast.Cursor, err error) {
	t.stats.TextFailures++
	ext := c.Extent()
	t.logger.Warn("cannot read literal text",
		"file", ext.File,
		"start", ext.Start,
		"end", ext.End,
		"error", err)
}
