// Package ast defines the cursor tree consumed by the model extractor.
//
// The tree is shaped after libclang: every node is a Cursor with a kind, a
// spelling, the spelling of its resolved type, semantic and lexical parents
// and an extent inside a source file. Trees are produced by the C++ lowering
// in pkg/frontend or decoded from a saved artifact, and are read-only once
// Builder.Finish returns.
package ast

// Extent locates a cursor in a source file. Start and End are byte offsets,
// End exclusive. Line and Column are 1-based and informational.
type Extent struct {
	File   string `json:"file,omitempty"`
	Start  uint32 `json:"start"`
	End    uint32 `json:"end"`
	Line   uint32 `json:"line,omitempty"`
	Column uint32 `json:"column,omitempty"`
}

// Cursor is one node of a translation unit.
type Cursor struct {
	id       int
	kind     Kind
	spelling string
	typ      string
	extent   Extent

	parent   *Cursor
	children []*Cursor

	// numArgs > 0 marks the trailing numArgs children as call arguments.
	numArgs int

	semantic *Cursor
	lexical  *Cursor
	external bool
	tu       *TranslationUnit
}

func (c *Cursor) Kind() Kind { return c.kind }

// Spelling is the name of the entity the cursor refers to: the declared
// name for declarations, the callee for calls, the referenced name for
// references.
func (c *Cursor) Spelling() string { return c.spelling }

// Type is the spelling of the cursor's resolved type, fully qualified
// (for example "ns3::TypeId"). Empty when the cursor has no type.
func (c *Cursor) Type() string { return c.typ }

func (c *Cursor) Extent() Extent { return c.extent }

// Parent is the cursor whose children include c. Nil for the root and for
// external declarations.
func (c *Cursor) Parent() *Cursor { return c.parent }

// Children returns the direct children in source order.
func (c *Cursor) Children() []*Cursor { return c.children }

// SemanticParent is the declaration that owns c, for example the class of
// an out-of-line method. Nil for cursors that are not declarations.
func (c *Cursor) SemanticParent() *Cursor { return c.semantic }

// LexicalParent is the declaration that textually encloses c. Nil for
// cursors that are not declarations.
func (c *Cursor) LexicalParent() *Cursor { return c.lexical }

// NumArguments returns the argument count of a call cursor, or -1 when c
// is not a call.
func (c *Cursor) NumArguments() int {
	if c.kind != CallExpr && c.kind != CXXFunctionalCastExpr {
		return -1
	}
	return c.numArgs
}

// Argument returns the i-th call argument, or nil when there is none.
func (c *Cursor) Argument(i int) *Cursor {
	if i < 0 || i >= c.numArgs {
		return nil
	}
	return c.children[len(c.children)-c.numArgs+i]
}

// IsFromMainFile reports whether the cursor's extent lies in the primary
// file of its translation unit.
func (c *Cursor) IsFromMainFile() bool {
	if c.tu == nil || c.external {
		return false
	}
	return c.extent.File != "" && c.extent.File == c.tu.mainFile
}

// IsExternal reports whether c was declared outside the parsed tree.
func (c *Cursor) IsExternal() bool { return c.external }

// TranslationUnit returns the unit owning c.
func (c *Cursor) TranslationUnit() *TranslationUnit { return c.tu }

// SpellingOf returns c.Spelling(), or "" when c is nil.
func SpellingOf(c *Cursor) string {
	if c == nil {
		return ""
	}
	return c.spelling
}

// TranslationUnit is a parsed source file.
type TranslationUnit struct {
	mainFile string
	root     *Cursor
	external []*Cursor
	// cursors is indexed by cursor id, tree cursors first in pre-order.
	cursors []*Cursor
}

// MainFile is the path of the primary source file.
func (tu *TranslationUnit) MainFile() string { return tu.mainFile }

// Root returns the translation-unit cursor.
func (tu *TranslationUnit) Root() *Cursor { return tu.root }

// Externals returns declarations referenced by the tree but not part of it.
func (tu *TranslationUnit) Externals() []*Cursor { return tu.external }

// Len returns the number of cursors, external ones included.
func (tu *TranslationUnit) Len() int { return len(tu.cursors) }

// Find returns the cursors of the tree, in pre-order, for which match
// returns true.
func (tu *TranslationUnit) Find(match func(*Cursor) bool) []*Cursor {
	var out []*Cursor
	for _, c := range tu.cursors {
		if !c.external && match(c) {
			out = append(out, c)
		}
	}
	return out
}
