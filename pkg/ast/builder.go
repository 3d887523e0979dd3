package ast

// Node carries the attributes of a cursor being added to a Builder.
type Node struct {
	Kind     Kind
	Spelling string
	Type     string
	Extent   Extent
}

// Builder assembles a TranslationUnit. It is not safe for concurrent use
// and must not be used after Finish.
type Builder struct {
	tu       *TranslationUnit
	semantic map[*Cursor]*Cursor
	nextID   int
}

// NewBuilder starts a translation unit whose primary file is mainFile.
func NewBuilder(mainFile string) *Builder {
	tu := &TranslationUnit{mainFile: mainFile}
	tu.root = &Cursor{
		kind:     TranslationUnitKind,
		spelling: mainFile,
		extent:   Extent{File: mainFile},
		tu:       tu,
	}
	return &Builder{
		tu:       tu,
		semantic: make(map[*Cursor]*Cursor),
	}
}

// Root returns the translation-unit cursor.
func (b *Builder) Root() *Cursor { return b.tu.root }

// Add appends a child to parent and returns it. An empty Extent.File
// inherits the parent's file.
func (b *Builder) Add(parent *Cursor, n Node) *Cursor {
	if n.Extent.File == "" {
		n.Extent.File = parent.extent.File
	}
	c := &Cursor{
		kind:     n.Kind,
		spelling: n.Spelling,
		typ:      n.Type,
		extent:   n.Extent,
		parent:   parent,
		external: parent.external,
		tu:       b.tu,
	}
	parent.children = append(parent.children, c)
	return c
}

// AddExternal records a declaration that is referenced from the tree but
// not defined in it, such as the class owning an out-of-line method.
func (b *Builder) AddExternal(n Node) *Cursor {
	c := &Cursor{
		kind:     n.Kind,
		spelling: n.Spelling,
		typ:      n.Type,
		extent:   n.Extent,
		external: true,
		tu:       b.tu,
	}
	b.tu.external = append(b.tu.external, c)
	return c
}

// SetSemanticParent overrides the semantic parent of a declaration, which
// otherwise defaults to its lexical parent.
func (b *Builder) SetSemanticParent(c, owner *Cursor) {
	b.semantic[c] = owner
}

// SetType replaces the type spelling of c. The lowering uses it for calls
// whose type is only known once the callee has been built.
func (b *Builder) SetType(c *Cursor, typ string) {
	c.typ = typ
}

// SetArguments marks the last n children of a call as its arguments.
func (b *Builder) SetArguments(call *Cursor, n int) {
	if n > len(call.children) {
		n = len(call.children)
	}
	if n < 0 {
		n = 0
	}
	call.numArgs = n
}

// Finish resolves parent links, assigns ids and returns the unit.
func (b *Builder) Finish() *TranslationUnit {
	tu := b.tu
	tu.cursors = tu.cursors[:0]
	b.nextID = 0

	b.finish(tu.root, nil)
	for _, ext := range tu.external {
		b.finish(ext, nil)
	}
	return tu
}

func (b *Builder) finish(c *Cursor, enclosingDecl *Cursor) {
	c.id = b.nextID
	b.nextID++
	b.tu.cursors = append(b.tu.cursors, c)

	if c.kind.IsDeclaration() {
		c.lexical = enclosingDecl
		if c.lexical == nil && !c.external {
			c.lexical = b.tu.root
		}
		if owner, ok := b.semantic[c]; ok {
			c.semantic = owner
		} else {
			c.semantic = c.lexical
		}
	}

	next := enclosingDecl
	if c.kind.IsDeclaration() || c.kind == TranslationUnitKind {
		next = c
	}
	for _, child := range c.children {
		b.finish(child, next)
	}
}
