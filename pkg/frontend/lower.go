// Package frontend turns C++ source files into translation units.
//
// The tree-sitter grammar produces a concrete syntax tree; the extractor
// expects the libclang view of a program, with declarations, references and
// expressions, resolved type spellings and semantic parents. Lower bridges
// the two. It is not a compiler front end: types are resolved by name only,
// member calls take the type of their receiver, and anything the grammar
// could not make sense of is flattened into its parent.
package frontend

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/splash/pkg/ast"
)

// LowerOptions tunes name resolution during lowering.
type LowerOptions struct {
	// Types classifies called names as types or functions. Nil uses
	// DefaultTypeClassifier.
	Types *TypeClassifier

	// Namespaces lists names known to be namespaces, in addition to "std"
	// and every namespace declared in the file. A qualified name whose first
	// component is a namespace is taken as already rooted.
	Namespaces []string
}

// Lower converts a parse tree of src into a translation unit whose primary
// file is mainFile. A nil tree yields an empty unit.
func Lower(tree *ts.Tree, src []byte, mainFile string, opts LowerOptions) *ast.TranslationUnit {
	b := ast.NewBuilder(mainFile)
	if tree == nil {
		return b.Finish()
	}

	root := tree.RootNode()
	l := newLowerer(b, src, root, opts)
	defer l.tc.Close()

	l.declare(nil, root)
	l.items(b.Root(), root)
	return b.Finish()
}

type lowerer struct {
	b     *ast.Builder
	src   []byte
	tc    *ts.TreeCursor
	types *TypeClassifier

	// roots holds namespace names.
	roots map[string]bool
	// ns is the path of enclosing namespaces, anonymous ones included as "".
	ns []string
	// decls maps a namespace path, "" for the global scope, to the names
	// declared in it.
	decls map[string]map[string]bool
	// tparams holds the parameter names of enclosing templates.
	tparams []map[string]bool

	classes  map[string]*ast.Cursor
	external map[string]*ast.Cursor

	// scopes maps variable names to type spellings, innermost last.
	scopes  []map[string]string
	fnDepth int
}

func newLowerer(b *ast.Builder, src []byte, root *ts.Node, opts LowerOptions) *lowerer {
	l := &lowerer{
		b:        b,
		src:      src,
		tc:       root.Walk(),
		types:    opts.Types,
		roots:    map[string]bool{"std": true},
		decls:    make(map[string]map[string]bool),
		classes:  make(map[string]*ast.Cursor),
		external: make(map[string]*ast.Cursor),
	}
	if l.types == nil {
		l.types = DefaultTypeClassifier()
	}
	for _, name := range opts.Namespaces {
		l.roots[name] = true
	}
	return l
}

// Tree helpers

func (l *lowerer) text(n *ts.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(l.src)
}

// compact returns the text of n with all whitespace removed, the way
// qualified names and declarators are spelled.
func (l *lowerer) compact(n *ts.Node) string {
	return strings.Join(strings.Fields(l.text(n)), "")
}

func (l *lowerer) extent(n *ts.Node) ast.Extent {
	pos := n.StartPosition()
	return ast.Extent{
		Start:  uint32(n.StartByte()),
		End:    uint32(n.EndByte()),
		Line:   uint32(pos.Row + 1),
		Column: uint32(pos.Column + 1),
	}
}

func (l *lowerer) span(from, to *ts.Node) ast.Extent {
	e := l.extent(from)
	e.End = uint32(to.EndByte())
	return e
}

func (l *lowerer) add(parent *ast.Cursor, kind ast.Kind, spelling, typ string, n *ts.Node) *ast.Cursor {
	return l.b.Add(parent, ast.Node{Kind: kind, Spelling: spelling, Type: typ, Extent: l.extent(n)})
}

func (l *lowerer) named(n *ts.Node) []ts.Node {
	kids := n.NamedChildren(l.tc)
	out := kids[:0]
	for _, k := range kids {
		if k.Kind() != "comment" {
			out = append(out, k)
		}
	}
	return out
}

func (l *lowerer) fields(n *ts.Node, name string) []ts.Node {
	return n.ChildrenByFieldName(name, l.tc)
}

func (l *lowerer) hasChildText(n *ts.Node, kind, text string) bool {
	for _, k := range l.named(n) {
		if k.Kind() == kind && l.text(&k) == text {
			return true
		}
	}
	return false
}

// Scopes

func (l *lowerer) push() { l.scopes = append(l.scopes, make(map[string]string)) }

func (l *lowerer) pop() { l.scopes = l.scopes[:len(l.scopes)-1] }

func (l *lowerer) bind(name, typ string) {
	if name == "" || len(l.scopes) == 0 {
		return
	}
	l.scopes[len(l.scopes)-1][name] = typ
}

func (l *lowerer) lookup(name string) string {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if typ, ok := l.scopes[i][name]; ok {
			return typ
		}
	}
	return ""
}

func (l *lowerer) bound(name string) bool {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if _, ok := l.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

// Declarations

func (l *lowerer) items(parent *ast.Cursor, n *ts.Node) {
	kids := l.named(n)
	for i := range kids {
		l.item(parent, &kids[i])
	}
}

func (l *lowerer) item(parent *ast.Cursor, n *ts.Node) {
	switch n.Kind() {
	case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call",
		"access_specifier", "static_assert_declaration", "namespace_alias_definition",
		"template_parameter_list", "attribute_declaration", "attribute_specifier",
		"template_instantiation", "concept_definition", "friend_declaration", "comment":
		return
	case "namespace_definition":
		l.namespace(parent, n)
	case "class_specifier", "struct_specifier", "union_specifier":
		l.class(parent, n)
	case "enum_specifier":
		l.enum(parent, n)
	case "function_definition":
		l.function(parent, n)
	case "declaration":
		l.declaration(parent, n, false)
	case "field_declaration":
		l.declaration(parent, n, true)
	case "type_definition", "alias_declaration":
		l.typedef(parent, n)
	case "using_declaration":
		l.using(parent, n)
	case "template_declaration":
		l.template(parent, n)
	case "linkage_specification", "declaration_list",
		"field_declaration_list", "ERROR", "preproc_if", "preproc_ifdef",
		"preproc_else", "preproc_elif", "preproc_elifdef":
		l.flatten(parent, n)
	default:
		l.stmt(parent, n)
	}
}

// flatten lowers the children of n into parent, leaving out preprocessor
// conditions and template parameters.
func (l *lowerer) flatten(parent *ast.Cursor, n *ts.Node) {
	skip := make(map[uintptr]bool)
	for _, field := range []string{"condition", "name", "value", "parameters"} {
		if f := n.ChildByFieldName(field); f != nil {
			skip[f.Id()] = true
		}
	}

	kids := l.named(n)
	for i := range kids {
		if !skip[kids[i].Id()] {
			l.item(parent, &kids[i])
		}
	}
}

// template lowers a template declaration with its parameter names in scope.
func (l *lowerer) template(parent *ast.Cursor, n *ts.Node) {
	params := make(map[string]bool)
	if list := n.ChildByFieldName("parameters"); list != nil {
		l.templateParams(list, params)
	}

	l.tparams = append(l.tparams, params)
	l.flatten(parent, n)
	l.tparams = l.tparams[:len(l.tparams)-1]
}

func (l *lowerer) templateParams(list *ts.Node, out map[string]bool) {
	kids := l.named(list)
	for i := range kids {
		p := &kids[i]
		switch p.Kind() {
		case "type_parameter_declaration", "variadic_type_parameter_declaration":
			names := l.named(p)
			for j := range names {
				if names[j].Kind() == "type_identifier" {
					out[l.text(&names[j])] = true
				}
			}
		case "template_template_parameter_declaration":
			// The name sits in the trailing type parameter.
			l.templateParams(p, out)
		case "optional_type_parameter_declaration":
			if name := p.ChildByFieldName("name"); name != nil {
				out[l.text(name)] = true
			}
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			if name, _ := l.declName(p.ChildByFieldName("declarator")); name != "" {
				out[name] = true
			}
		}
	}
}

func (l *lowerer) namespaceNames(n *ts.Node) []string {
	switch name := n.ChildByFieldName("name"); {
	case name == nil:
		return []string{""}
	case name.Kind() == "nested_namespace_specifier":
		return l.namespacePath(name, nil)
	default:
		return []string{l.text(name)}
	}
}

// declare records the names each namespace of the file declares, before
// lowering, so that a name written ahead of its declaration still resolves.
// A class whose members are defined out of line is taken to be declared in
// the namespace holding the definitions.
func (l *lowerer) declare(path []string, n *ts.Node) {
	kids := l.named(n)
	for i := range kids {
		k := &kids[i]
		switch k.Kind() {
		case "namespace_definition":
			inner := path[:len(path):len(path)]
			for _, name := range l.namespaceNames(k) {
				if name != "" {
					l.roots[name] = true
					l.declareName(inner, name)
					inner = append(inner, name)
				}
			}
			if body := k.ChildByFieldName("body"); body != nil {
				l.declare(inner, body)
			}
		case "function_definition":
			fd, _ := unwrapFunction(k.ChildByFieldName("declarator"))
			if fd == nil {
				continue
			}
			scopes, _ := l.splitQualified(fd.ChildByFieldName("declarator"))
			if len(scopes) == 0 {
				continue
			}
			if owner := firstComponent(l.compact(&scopes[0])); !l.roots[owner] {
				l.declareName(path, owner)
			}
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			l.declareRecord(path, k)
		case "declaration", "type_definition":
			if typ := k.ChildByFieldName("type"); typ != nil && isRecord(typ.Kind()) {
				l.declareRecord(path, typ)
			}
			if k.Kind() == "type_definition" {
				decls := l.fields(k, "declarator")
				for j := range decls {
					name, _ := l.declName(&decls[j])
					l.declareName(path, name)
				}
			}
		case "alias_declaration":
			l.declareName(path, l.text(k.ChildByFieldName("name")))
		case "template_declaration", "linkage_specification", "declaration_list",
			"preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
			l.declare(path, k)
		}
	}
}

func (l *lowerer) declareRecord(path []string, n *ts.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	switch name.Kind() {
	case "type_identifier":
		l.declareName(path, l.text(name))
	case "template_type":
		l.declareName(path, l.text(name.ChildByFieldName("name")))
	}
}

func (l *lowerer) declareName(path []string, name string) {
	if name == "" {
		return
	}
	scope := strings.Join(path, "::")
	names, ok := l.decls[scope]
	if !ok {
		names = make(map[string]bool)
		l.decls[scope] = names
	}
	names[name] = true
}

func (l *lowerer) namespace(parent *ast.Cursor, n *ts.Node) {
	names := l.namespaceNames(n)

	cur := parent
	for _, name := range names {
		cur = l.add(cur, ast.Namespace, name, "", n)
		l.ns = append(l.ns, name)
		if name != "" {
			l.roots[name] = true
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		l.items(cur, body)
	}
	l.ns = l.ns[:len(l.ns)-len(names)]
}

func (l *lowerer) namespacePath(n *ts.Node, out []string) []string {
	kids := l.named(n)
	for i := range kids {
		switch kids[i].Kind() {
		case "namespace_identifier":
			out = append(out, l.text(&kids[i]))
		case "nested_namespace_specifier":
			out = l.namespacePath(&kids[i], out)
		}
	}
	return out
}

func (l *lowerer) class(parent *ast.Cursor, n *ts.Node) {
	kind := ast.ClassDecl
	if n.Kind() != "class_specifier" {
		kind = ast.StructDecl
	}

	var name, qualified string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		written := l.compact(nameNode)
		name = baseName(written)
		qualified = l.qualify(stripTemplateArgs(written))
	}

	c := l.add(parent, kind, name, qualified, n)
	body := n.ChildByFieldName("body")
	if body != nil && qualified != "" {
		l.classes[qualified] = c
	}

	kids := l.named(n)
	for i := range kids {
		if kids[i].Kind() == "base_class_clause" {
			l.bases(c, &kids[i])
		}
	}

	if body != nil {
		l.items(c, body)
	}
}

func (l *lowerer) bases(class *ast.Cursor, clause *ts.Node) {
	kids := l.named(clause)
	for i := range kids {
		base := &kids[i]
		switch base.Kind() {
		case "type_identifier", "qualified_identifier", "template_type":
			typ := l.typeSpelling(base)
			spec := l.add(class, ast.CXXBaseSpecifier, typ, typ, base)
			l.typeRefs(spec, base)
		}
	}
}

func (l *lowerer) enum(parent *ast.Cursor, n *ts.Node) {
	var name, qualified string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = baseName(l.compact(nameNode))
		qualified = l.qualify(l.compact(nameNode))
	}
	l.add(parent, ast.EnumDecl, name, qualified, n)
}

func (l *lowerer) typedef(parent *ast.Cursor, n *ts.Node) {
	typeNode := n.ChildByFieldName("type")

	var name string
	if n.Kind() == "alias_declaration" {
		name = l.text(n.ChildByFieldName("name"))
	} else if d := n.ChildByFieldName("declarator"); d != nil {
		name, _ = l.declName(d)
	}

	td := l.add(parent, ast.TypedefDecl, name, l.typeSpelling(typeNode), n)
	if typeNode != nil {
		l.typeRefs(td, typeNode)
	}
}

func (l *lowerer) using(parent *ast.Cursor, n *ts.Node) {
	kids := l.named(n)
	if len(kids) == 0 {
		return
	}
	target := &kids[len(kids)-1]

	u := l.add(parent, ast.UsingDirective, l.compact(target), "", n)
	if target.Kind() == "qualified_identifier" {
		scopes, last := l.splitQualified(target)
		prefix := ""
		for i := range scopes {
			prefix = l.scopeRef(u, &scopes[i], prefix)
		}
		if last != nil {
			l.add(u, ast.NamespaceRef, l.text(last), "", last)
		}
		return
	}
	l.add(u, ast.NamespaceRef, l.text(target), "", target)
}

// function lowers a function definition: the declaration, its parameters
// and its body.
func (l *lowerer) function(parent *ast.Cursor, n *ts.Node) {
	body := n.ChildByFieldName("body")
	fd, suffix := unwrapFunction(n.ChildByFieldName("declarator"))
	if fd == nil {
		// Macro-heavy code sometimes defeats the declarator grammar; the
		// body is still worth lowering.
		if body != nil {
			l.stmt(parent, body)
		}
		return
	}

	l.push()
	l.fnDepth++
	fn := l.declareFunction(parent, n, fd, n.ChildByFieldName("type"), suffix)

	kids := l.named(n)
	for i := range kids {
		if kids[i].Kind() == "field_initializer_list" {
			l.initializers(fn, &kids[i])
		}
	}
	if body != nil {
		l.stmt(fn, body)
	}
	l.fnDepth--
	l.pop()
}

// declareFunction adds the cursor for a function declared by fd, with its
// return type, scope and parameter children.
func (l *lowerer) declareFunction(parent *ast.Cursor, n, fd, typeNode *ts.Node, suffix string) *ast.Cursor {
	nameNode := fd.ChildByFieldName("declarator")
	scopes, last := l.splitQualified(nameNode)
	name := l.declaredName(last)

	var owner *ast.Cursor
	var className string
	if len(scopes) > 0 {
		lastScope := &scopes[len(scopes)-1]
		if !(lastScope.Kind() == "namespace_identifier" && l.roots[l.text(lastScope)]) {
			path := make([]string, 0, len(scopes))
			for i := range scopes {
				path = append(path, stripTemplateArgs(l.compact(&scopes[i])))
			}
			className = path[len(path)-1]
			owner = l.classFor(l.qualify(strings.Join(path, "::")), className)
		}
	} else if parent.Kind() == ast.ClassDecl || parent.Kind() == ast.StructDecl {
		owner = parent
		className = parent.Spelling()
	}

	kind := ast.FunctionDecl
	if owner != nil {
		switch {
		case name == className:
			kind = ast.Constructor
		case strings.HasPrefix(name, "~"):
			kind = ast.Destructor
		default:
			kind = ast.CXXMethod
		}
	}

	ret := l.typeSpelling(typeNode)
	if typeNode != nil && l.hasChildText(n, "type_qualifier", "const") {
		ret = "const " + ret
	}
	ret += suffix
	if ret == "" {
		ret = "void"
	}

	params := l.named(fd.ChildByFieldName("parameters"))
	sig := ret + " (" + l.paramList(params) + ")"

	fn := l.add(parent, kind, name, sig, n)
	if owner != nil && owner != parent {
		l.b.SetSemanticParent(fn, owner)
	}

	if typeNode != nil {
		l.typeRefs(fn, typeNode)
	}
	prefix := ""
	for i := range scopes {
		prefix = l.scopeRef(fn, &scopes[i], prefix)
	}
	for i := range params {
		l.param(fn, &params[i])
	}
	return fn
}

// classFor returns the in-file declaration of a class, or an external one
// standing in for a class declared in a header.
func (l *lowerer) classFor(qualified, name string) *ast.Cursor {
	if c, ok := l.classes[qualified]; ok {
		return c
	}
	if c, ok := l.external[qualified]; ok {
		return c
	}
	c := l.b.AddExternal(ast.Node{Kind: ast.ClassDecl, Spelling: name, Type: qualified})
	l.external[qualified] = c
	return c
}

func (l *lowerer) paramList(params []ts.Node) string {
	var types []string
	for i := range params {
		p := &params[i]
		switch p.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
			typeNode := p.ChildByFieldName("type")
			_, suffix := l.declName(p.ChildByFieldName("declarator"))
			types = append(types, l.declType(p, typeNode, suffix))
		case "variadic_parameter":
			types = append(types, "...")
		}
	}
	if len(types) == 1 && types[0] == "void" {
		return ""
	}
	return strings.Join(types, ", ")
}

func (l *lowerer) param(fn *ast.Cursor, p *ts.Node) {
	switch p.Kind() {
	case "parameter_declaration", "optional_parameter_declaration":
	default:
		return
	}

	typeNode := p.ChildByFieldName("type")
	name, suffix := l.declName(p.ChildByFieldName("declarator"))
	typ := l.declType(p, typeNode, suffix)
	if typ == "void" && name == "" {
		return
	}

	pd := l.add(fn, ast.ParmDecl, name, typ, p)
	if typeNode != nil {
		l.typeRefs(pd, typeNode)
	}
	if dv := p.ChildByFieldName("default_value"); dv != nil {
		l.expr(pd, dv)
	}
	l.bind(name, typ)
}

func (l *lowerer) initializers(fn *ast.Cursor, list *ts.Node) {
	inits := l.named(list)
	for i := range inits {
		kids := l.named(&inits[i])
		for j := range kids {
			k := &kids[j]
			switch k.Kind() {
			case "field_identifier", "qualified_identifier", "template_method":
				l.add(fn, ast.MemberRef, l.compact(k), l.lookup(l.compact(k)), k)
			case "argument_list", "initializer_list":
				args := l.named(k)
				for a := range args {
					l.expr(fn, &args[a])
				}
			}
		}
	}
}

// declaration lowers variable, field and function declarations. Inside a
// function body the variables are grouped under a DeclStmt.
func (l *lowerer) declaration(parent *ast.Cursor, n *ts.Node, field bool) {
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil && isRecord(typeNode.Kind()) && typeNode.ChildByFieldName("body") != nil {
		l.item(parent, typeNode)
	}

	decls := l.fields(n, "declarator")
	if len(decls) == 0 {
		return
	}

	static := l.hasChildText(n, "storage_class_specifier", "static")
	container := parent
	for i := range decls {
		d := &decls[i]
		if fd, suffix := unwrapFunction(d); fd != nil {
			l.push()
			l.declareFunction(parent, n, fd, typeNode, suffix)
			l.pop()
			continue
		}
		if l.fnDepth > 0 && !field && container == parent {
			container = l.add(parent, ast.DeclStmt, "", "", n)
		}
		l.variable(container, n, d, typeNode, field && !static)
	}
}

func (l *lowerer) variable(parent *ast.Cursor, decl, d, typeNode *ts.Node, asField bool) {
	target := d
	var value *ts.Node
	if d.Kind() == "init_declarator" {
		target = d.ChildByFieldName("declarator")
		value = d.ChildByFieldName("value")
	}
	if value == nil && asField {
		value = decl.ChildByFieldName("default_value")
	}

	name, suffix := l.declName(target)
	typ := l.declType(decl, typeNode, suffix)

	kind := ast.VarDecl
	if asField {
		kind = ast.FieldDecl
	}
	v := l.b.Add(parent, ast.Node{Kind: kind, Spelling: name, Type: typ, Extent: l.span(decl, d)})
	if typeNode != nil {
		l.typeRefs(v, typeNode)
	}

	if value != nil {
		if value.Kind() == "argument_list" {
			// T v(args) constructs in place.
			construct := l.add(v, ast.CallExpr, baseName(stripTemplateArgs(typ)), typ, value)
			l.arguments(construct, value)
		} else {
			l.expr(v, value)
		}
	}
	l.bind(name, typ)
}

// declName walks a declarator down to the declared name and returns the
// pointer, reference and array suffix to append to the base type.
func (l *lowerer) declName(d *ts.Node) (string, string) {
	var mods, arrays string
	for d != nil {
		switch d.Kind() {
		case "pointer_declarator", "abstract_pointer_declarator":
			mods += "*"
			d = d.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if strings.HasPrefix(l.text(d), "&&") {
				mods += "&&"
			} else {
				mods += "&"
			}
			d = l.firstNamed(d)
		case "array_declarator", "abstract_array_declarator":
			size := d.ChildByFieldName("size")
			arrays = "[" + l.compact(size) + "]" + arrays
			d = d.ChildByFieldName("declarator")
		case "init_declarator":
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "attributed_declarator", "abstract_parenthesized_declarator":
			d = l.firstNamed(d)
		case "qualified_identifier":
			_, last := l.splitQualified(d)
			return l.declaredName(last), formatSuffix(mods, arrays)
		case "identifier", "field_identifier", "type_identifier":
			return l.text(d), formatSuffix(mods, arrays)
		default:
			return l.compact(d), formatSuffix(mods, arrays)
		}
	}
	return "", formatSuffix(mods, arrays)
}

func formatSuffix(mods, arrays string) string {
	var s string
	if mods != "" {
		s = " " + mods
	}
	if arrays != "" {
		s += " " + arrays
	}
	return s
}

func (l *lowerer) declType(decl, typeNode *ts.Node, suffix string) string {
	typ := l.typeSpelling(typeNode)
	if typ == "" {
		return strings.TrimSpace(suffix)
	}
	if l.hasChildText(decl, "type_qualifier", "const") {
		typ = "const " + typ
	}
	return typ + suffix
}

// declaredName spells the last component of a declarator name.
func (l *lowerer) declaredName(n *ts.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "template_function", "template_method", "template_type":
		return l.text(n.ChildByFieldName("name"))
	case "destructor_name", "operator_name", "operator_cast":
		return l.compact(n)
	default:
		return l.text(n)
	}
}

// splitQualified returns the scope components of a qualified name and its
// final component. Unqualified names have no scopes.
func (l *lowerer) splitQualified(n *ts.Node) ([]ts.Node, *ts.Node) {
	var scopes []ts.Node
	for n != nil && n.Kind() == "qualified_identifier" {
		if scope := n.ChildByFieldName("scope"); scope != nil {
			scopes = append(scopes, *scope)
		}
		n = n.ChildByFieldName("name")
	}
	return scopes, n
}

func unwrapFunction(d *ts.Node) (*ts.Node, string) {
	var mods string
	for d != nil {
		switch d.Kind() {
		case "function_declarator":
			if mods == "" {
				return d, ""
			}
			return d, " " + mods
		case "pointer_declarator":
			mods += "*"
			d = d.ChildByFieldName("declarator")
		case "reference_declarator":
			mods += "&"
			d = d.NamedChild(0)
		case "parenthesized_declarator", "attributed_declarator":
			d = d.NamedChild(0)
		default:
			return nil, ""
		}
	}
	return nil, ""
}

func (l *lowerer) firstNamed(n *ts.Node) *ts.Node {
	kids := l.named(n)
	for i := range kids {
		if kids[i].Kind() != "type_qualifier" {
			return &kids[i]
		}
	}
	return nil
}

func isRecord(kind string) bool {
	switch kind {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return true
	}
	return false
}

func stripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}
