package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the tree rooted at c, one cursor per
// line with its kind, spelling, type, parents and location. maxDepth < 0
// prints the whole tree.
func Fprint(w io.Writer, c *Cursor, maxDepth int) error {
	return fprint(w, c, 0, maxDepth)
}

func fprint(w io.Writer, c *Cursor, depth, maxDepth int) error {
	if maxDepth >= 0 && depth > maxDepth {
		return nil
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(c.kind.String())
	if c.spelling != "" {
		fmt.Fprintf(&b, " %q", c.spelling)
	}
	if c.typ != "" {
		fmt.Fprintf(&b, " type=%s", c.typ)
	}
	if c.semantic != nil && c.semantic != c.lexical {
		fmt.Fprintf(&b, " semantic=%s", c.semantic.spelling)
	}
	if n := c.NumArguments(); n > 0 {
		fmt.Fprintf(&b, " args=%d", n)
	}
	if c.extent.Line > 0 {
		fmt.Fprintf(&b, " @%d:%d", c.extent.Line, c.extent.Column)
	}
	if !c.IsFromMainFile() && c.kind != TranslationUnitKind {
		b.WriteString(" [external]")
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, child := range c.children {
		if err := fprint(w, child, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
