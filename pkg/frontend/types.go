package frontend

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/splash/pkg/ast"
)

// qualify spells a written type name the way the compiler prints it.
//
// The first component of the name is looked up the way C++ finds it:
// template parameters stay as written, then each enclosing namespace is
// tried from the innermost outward. A name rooted in a namespace the file
// does not declare stays as written, and any other name is taken to live
// in the outermost enclosing namespace.
func (l *lowerer) qualify(name string) string {
	name = strings.TrimPrefix(name, "::")
	if name == "" {
		return ""
	}

	first := firstComponent(name)
	if l.isTemplateParam(first) {
		return name
	}
	if scope, ok := l.declaringScope(first); ok {
		return joinScope(scope, name)
	}
	if strings.Contains(name, "::") && l.roots[first] {
		return name
	}
	return joinScope(l.rootNamespace(), name)
}

// declaringScope returns the innermost enclosing namespace path, "" for the
// global scope, that declares name.
func (l *lowerer) declaringScope(name string) (string, bool) {
	path := l.namedNamespaces()
	for i := len(path); i >= 0; i-- {
		scope := strings.Join(path[:i], "::")
		if l.decls[scope][name] {
			return scope, true
		}
	}
	return "", false
}

func (l *lowerer) isTemplateParam(name string) bool {
	for i := len(l.tparams) - 1; i >= 0; i-- {
		if l.tparams[i][name] {
			return true
		}
	}
	return false
}

// namedNamespaces returns the enclosing namespaces, leaving out anonymous
// ones.
func (l *lowerer) namedNamespaces() []string {
	parts := make([]string, 0, len(l.ns))
	for _, name := range l.ns {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return parts
}

func (l *lowerer) rootNamespace() string {
	if path := l.namedNamespaces(); len(path) > 0 {
		return path[0]
	}
	return ""
}

// firstComponent returns the leading component of a qualified name without
// its template arguments.
func firstComponent(name string) string {
	if i := strings.IndexAny(name, "<:"); i >= 0 {
		return name[:i]
	}
	return name
}

// typeSpelling returns the qualified spelling of a type node, for example
// "ns3::Ptr<ns3::Node>" for Ptr<Node> written inside namespace ns3.
func (l *lowerer) typeSpelling(n *ts.Node) string {
	if n == nil {
		return ""
	}

	switch n.Kind() {
	case "primitive_type", "auto":
		return l.text(n)
	case "sized_type_specifier":
		return strings.Join(strings.Fields(l.text(n)), " ")
	case "type_identifier":
		return l.qualify(l.text(n))
	case "qualified_identifier":
		scopes, last := l.splitQualified(n)
		if last != nil && last.Kind() == "template_type" {
			path := make([]string, 0, len(scopes)+1)
			for i := range scopes {
				path = append(path, l.compact(&scopes[i]))
			}
			path = append(path, l.text(last.ChildByFieldName("name")))
			return l.qualify(strings.Join(path, "::")) + l.templateArgs(last.ChildByFieldName("arguments"))
		}
		return l.qualify(l.compact(n))
	case "template_type":
		return l.qualify(l.text(n.ChildByFieldName("name"))) + l.templateArgs(n.ChildByFieldName("arguments"))
	case "type_descriptor":
		typ := l.typeSpelling(n.ChildByFieldName("type"))
		if l.hasChildText(n, "type_qualifier", "const") {
			typ = "const " + typ
		}
		if d := n.ChildByFieldName("declarator"); d != nil {
			_, suffix := l.declName(d)
			typ += suffix
		}
		return typ
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return l.qualify(l.compact(name))
		}
		return ""
	case "dependent_type":
		return l.typeSpelling(l.firstNamed(n))
	case "placeholder_type_specifier":
		return "auto"
	default:
		return l.compact(n)
	}
}

func (l *lowerer) templateArgs(args *ts.Node) string {
	if args == nil {
		return "<>"
	}
	kids := l.named(args)
	parts := make([]string, 0, len(kids))
	for i := range kids {
		if kids[i].Kind() == "type_descriptor" {
			parts = append(parts, l.typeSpelling(&kids[i]))
		} else {
			parts = append(parts, l.compact(&kids[i]))
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// typeRefs adds the reference cursors a written type produces: NamespaceRef
// for namespace qualifiers, TemplateRef for templates and TypeRef for every
// named class.
func (l *lowerer) typeRefs(parent *ast.Cursor, n *ts.Node) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case "type_identifier":
		name := l.text(n)
		if l.isTemplateParam(name) {
			l.add(parent, ast.TypeRef, name, name, n)
			return
		}
		typ := l.qualify(name)
		l.add(parent, ast.TypeRef, "class "+typ, typ, n)
	case "qualified_identifier":
		scopes, last := l.splitQualified(n)
		prefix := ""
		for i := range scopes {
			prefix = l.scopeRef(parent, &scopes[i], prefix)
		}
		if last == nil {
			return
		}
		switch last.Kind() {
		case "template_type":
			l.templateRefs(parent, last)
		case "type_identifier", "identifier":
			typ := l.qualify(joinScope(prefix, l.text(last)))
			l.add(parent, ast.TypeRef, "class "+typ, typ, last)
		}
	case "template_type":
		l.templateRefs(parent, n)
	case "type_descriptor":
		l.typeRefs(parent, n.ChildByFieldName("type"))
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if n.ChildByFieldName("body") == nil {
			l.typeRefs(parent, n.ChildByFieldName("name"))
		}
	case "dependent_type":
		l.typeRefs(parent, l.firstNamed(n))
	}
}

func (l *lowerer) templateRefs(parent *ast.Cursor, n *ts.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	l.add(parent, ast.TemplateRef, l.text(name), "", name)
	l.templateArgRefs(parent, n.ChildByFieldName("arguments"))
}

// templateArgRefs adds the references found in a template argument list.
func (l *lowerer) templateArgRefs(parent *ast.Cursor, args *ts.Node) {
	if args == nil {
		return
	}
	kids := l.named(args)
	for i := range kids {
		if kids[i].Kind() == "type_descriptor" {
			l.typeRefs(parent, &kids[i])
		}
	}
}

// scopeRef adds the reference for one qualifier of a qualified name and
// returns the qualifier path so far.
func (l *lowerer) scopeRef(parent *ast.Cursor, scope *ts.Node, prefix string) string {
	switch scope.Kind() {
	case "template_type":
		name := l.text(scope.ChildByFieldName("name"))
		l.templateRefs(parent, scope)
		return joinScope(prefix, name)
	default:
		name := l.compact(scope)
		path := joinScope(prefix, name)
		if l.isNamespacePath(path) {
			l.add(parent, ast.NamespaceRef, name, "", scope)
		} else {
			typ := l.qualify(path)
			l.add(parent, ast.TypeRef, "class "+typ, typ, scope)
		}
		return path
	}
}

// isNamespacePath reports whether every component of path is a namespace.
func (l *lowerer) isNamespacePath(path string) bool {
	for _, part := range strings.Split(path, "::") {
		if !l.roots[part] {
			return false
		}
	}
	return true
}

func joinScope(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}
