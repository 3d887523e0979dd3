package frontend

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/splash/pkg/ast"
)

// stmt lowers a statement. Expression statements have no cursor of their
// own; the expression is added directly, as libclang does.
func (l *lowerer) stmt(parent *ast.Cursor, n *ts.Node) {
	switch n.Kind() {
	case "compound_statement":
		c := l.add(parent, ast.CompoundStmt, "", "", n)
		l.push()
		l.items(c, n)
		l.pop()
	case "expression_statement":
		kids := l.named(n)
		for i := range kids {
			l.expr(parent, &kids[i])
		}
	case "return_statement":
		r := l.add(parent, ast.ReturnStmt, "", "", n)
		l.operands(r, n)
	case "if_statement":
		s := l.add(parent, ast.IfStmt, "", "", n)
		l.push()
		l.condition(s, n.ChildByFieldName("condition"))
		if body := n.ChildByFieldName("consequence"); body != nil {
			l.stmt(s, body)
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			l.items(s, alt)
		}
		l.pop()
	case "while_statement":
		s := l.add(parent, ast.WhileStmt, "", "", n)
		l.push()
		l.condition(s, n.ChildByFieldName("condition"))
		if body := n.ChildByFieldName("body"); body != nil {
			l.stmt(s, body)
		}
		l.pop()
	case "for_statement":
		s := l.add(parent, ast.ForStmt, "", "", n)
		l.push()
		for _, field := range []string{"initializer", "condition", "update", "body"} {
			if part := n.ChildByFieldName(field); part != nil {
				l.item(s, part)
			}
		}
		l.pop()
	case "for_range_loop":
		s := l.add(parent, ast.ForStmt, "", "", n)
		l.push()
		if d := n.ChildByFieldName("declarator"); d != nil {
			ds := l.add(s, ast.DeclStmt, "", "", d)
			l.variable(ds, n, d, n.ChildByFieldName("type"), false)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			l.expr(s, right)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			l.stmt(s, body)
		}
		l.pop()
	case "declaration":
		l.declaration(parent, n, false)
	case "condition_clause", "init_statement", "else_clause":
		l.items(parent, n)
	default:
		if isStatement(n.Kind()) {
			s := l.add(parent, ast.UnexposedStmt, "", "", n)
			l.items(s, n)
			return
		}
		l.expr(parent, n)
	}
}

func (l *lowerer) condition(parent *ast.Cursor, n *ts.Node) {
	if n == nil {
		return
	}
	if n.Kind() == "condition_clause" || n.Kind() == "parenthesized_expression" {
		l.items(parent, n)
		return
	}
	l.item(parent, n)
}

// expr lowers an expression and returns its cursor. Type nodes met in
// expression position only add references and return nil.
func (l *lowerer) expr(parent *ast.Cursor, n *ts.Node) *ast.Cursor {
	switch n.Kind() {
	case "call_expression":
		return l.call(parent, n)
	case "field_expression":
		name, targs := l.memberName(n.ChildByFieldName("field"))
		m := l.add(parent, ast.MemberRefExpr, name, "", n)
		if recv := n.ChildByFieldName("argument"); recv != nil {
			l.expr(m, recv)
		}
		l.templateArgRefs(m, targs)
		return m
	case "identifier":
		name := l.text(n)
		return l.add(parent, ast.DeclRefExpr, name, l.lookup(name), n)
	case "qualified_identifier":
		return l.qualifiedRef(parent, n)
	case "template_function":
		d := l.add(parent, ast.DeclRefExpr, l.text(n.ChildByFieldName("name")), "", n)
		l.templateArgRefs(d, n.ChildByFieldName("arguments"))
		return d
	case "this":
		return l.add(parent, ast.CXXThisExpr, "", "", n)
	case "string_literal", "raw_string_literal", "concatenated_string":
		return l.add(parent, ast.StringLiteral, l.text(n), "const char *", n)
	case "number_literal":
		if isFloat(l.text(n)) {
			return l.add(parent, ast.FloatingLiteral, "", "double", n)
		}
		return l.add(parent, ast.IntegerLiteral, "", "int", n)
	case "char_literal":
		return l.add(parent, ast.CharacterLiteral, "", "char", n)
	case "true", "false":
		return l.add(parent, ast.CXXBoolLiteralExpr, "", "bool", n)
	case "nullptr":
		return l.add(parent, ast.CXXNullPtrLiteralExpr, "", "std::nullptr_t", n)
	case "parenthesized_expression":
		p := l.add(parent, ast.ParenExpr, "", "", n)
		l.operands(p, n)
		if kids := p.Children(); len(kids) == 1 {
			l.b.SetType(p, kids[0].Type())
		}
		return p
	case "unary_expression", "pointer_expression", "update_expression",
		"sizeof_expression", "alignof_expression":
		u := l.add(parent, ast.UnaryOperator, "", "", n)
		l.operands(u, n)
		return u
	case "binary_expression", "assignment_expression", "comma_expression":
		b := l.add(parent, ast.BinaryOperator, "", "", n)
		l.operands(b, n)
		return b
	case "conditional_expression":
		c := l.add(parent, ast.ConditionalOperator, "", "", n)
		l.operands(c, n)
		return c
	case "cast_expression":
		typeNode := n.ChildByFieldName("type")
		c := l.add(parent, ast.UnexposedExpr, "", l.typeSpelling(typeNode), n)
		l.typeRefs(c, typeNode)
		if v := n.ChildByFieldName("value"); v != nil {
			l.expr(c, v)
		}
		return c
	case "new_expression":
		typeNode := n.ChildByFieldName("type")
		c := l.add(parent, ast.CXXNewExpr, "", l.typeSpelling(typeNode)+" *", n)
		l.typeRefs(c, typeNode)
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Kind() == "initializer_list" {
				l.expr(c, args)
			} else {
				l.operands(c, args)
			}
		}
		return c
	case "initializer_list":
		c := l.add(parent, ast.InitListExpr, "", "", n)
		l.operands(c, n)
		return c
	case "lambda_expression":
		c := l.add(parent, ast.LambdaExpr, "", "", n)
		if body := n.ChildByFieldName("body"); body != nil {
			l.fnDepth++
			l.stmt(c, body)
			l.fnDepth--
		}
		return c
	case "compound_statement", "declaration":
		l.item(parent, n)
		return nil
	case "type_descriptor", "type_identifier", "template_type", "primitive_type",
		"sized_type_specifier", "dependent_type":
		l.typeRefs(parent, n)
		return nil
	default:
		if isStatement(n.Kind()) {
			l.stmt(parent, n)
			return nil
		}
		u := l.add(parent, ast.UnexposedExpr, "", "", n)
		l.operands(u, n)
		return u
	}
}

// operands lowers every named child of n as an expression.
func (l *lowerer) operands(parent *ast.Cursor, n *ts.Node) {
	kids := l.named(n)
	for i := range kids {
		l.expr(parent, &kids[i])
	}
}

// call lowers a call expression. Three shapes are told apart:
//
//   - member calls, recv.Method(args), typed after the receiver so that a
//     fluent chain keeps the type of its head;
//   - T(args) where T is a type, which becomes a functional cast for one
//     argument and a temporary-object construction otherwise;
//   - everything else, an ordinary call with a DeclRefExpr callee.
func (l *lowerer) call(parent *ast.Cursor, n *ts.Node) *ast.Cursor {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil {
		c := l.add(parent, ast.UnexposedExpr, "", "", n)
		l.operands(c, n)
		return c
	}

	switch fn.Kind() {
	case "field_expression":
		name, targs := l.memberName(fn.ChildByFieldName("field"))
		c := l.add(parent, ast.CallExpr, name, "", n)
		m := l.add(c, ast.MemberRefExpr, name, "", fn)

		var recv *ast.Cursor
		if r := fn.ChildByFieldName("argument"); r != nil {
			recv = l.expr(m, r)
		}
		l.templateArgRefs(m, targs)
		if recv != nil {
			l.b.SetType(c, valueType(recv.Type()))
		}
		l.arguments(c, args)
		return c

	case "identifier", "qualified_identifier", "template_function", "template_type", "primitive_type":
		if l.namesType(fn) {
			return l.construct(parent, n, fn, args)
		}
		var c *ast.Cursor
		switch fn.Kind() {
		case "qualified_identifier":
			_, last := l.splitQualified(fn)
			c = l.add(parent, ast.CallExpr, l.declaredName(last), "", n)
			l.qualifiedRef(c, fn)
		default:
			c = l.add(parent, ast.CallExpr, l.declaredName(fn), "", n)
			l.expr(c, fn)
		}
		l.arguments(c, args)
		return c

	default:
		c := l.add(parent, ast.CallExpr, "", "", n)
		l.expr(c, fn)
		l.arguments(c, args)
		return c
	}
}

// construct lowers T(args).
func (l *lowerer) construct(parent *ast.Cursor, n, fn, args *ts.Node) *ast.Cursor {
	var typ string
	switch fn.Kind() {
	case "identifier":
		typ = l.qualify(l.text(fn))
	case "template_function":
		typ = l.qualify(l.text(fn.ChildByFieldName("name"))) + l.templateArgs(fn.ChildByFieldName("arguments"))
	default:
		typ = l.typeSpelling(fn)
	}

	kind, spelling := ast.CallExpr, baseName(typ)
	if args != nil && len(l.named(args)) == 1 {
		kind, spelling = ast.CXXFunctionalCastExpr, ""
	}

	c := l.add(parent, kind, spelling, typ, n)
	switch fn.Kind() {
	case "identifier":
		l.add(c, ast.TypeRef, "class "+typ, typ, fn)
	case "template_function":
		l.templateRefs(c, fn)
	default:
		l.typeRefs(c, fn)
	}
	l.arguments(c, args)
	return c
}

// arguments lowers a call's argument list and marks the new children as
// the call's arguments.
func (l *lowerer) arguments(call *ast.Cursor, args *ts.Node) {
	before := len(call.Children())
	if args != nil {
		l.operands(call, args)
	}
	l.b.SetArguments(call, len(call.Children())-before)
}

// namesType reports whether a callee spells a type rather than a function.
func (l *lowerer) namesType(fn *ts.Node) bool {
	switch fn.Kind() {
	case "template_type", "primitive_type":
		return true
	case "identifier":
		name := l.text(fn)
		return !l.bound(name) && l.types.IsType(name)
	case "template_function":
		return l.types.IsType(l.text(fn.ChildByFieldName("name")))
	case "qualified_identifier":
		_, last := l.splitQualified(fn)
		if last == nil {
			return false
		}
		if last.Kind() == "template_type" || last.Kind() == "type_identifier" {
			return true
		}
		return l.types.IsType(l.declaredName(last))
	}
	return false
}

// qualifiedRef lowers a qualified name used as a value, such as
// Object::GetTypeId or &Queue::m_maxPackets.
func (l *lowerer) qualifiedRef(parent *ast.Cursor, n *ts.Node) *ast.Cursor {
	scopes, last := l.splitQualified(n)
	d := l.add(parent, ast.DeclRefExpr, l.declaredName(last), "", n)

	prefix := ""
	for i := range scopes {
		prefix = l.scopeRef(d, &scopes[i], prefix)
	}
	if last != nil && last.Kind() == "template_function" {
		l.templateArgRefs(d, last.ChildByFieldName("arguments"))
	}
	return d
}

// memberName returns the member named by the field of a field_expression,
// with its explicit template arguments if any.
func (l *lowerer) memberName(field *ts.Node) (string, *ts.Node) {
	if field == nil {
		return "", nil
	}
	switch field.Kind() {
	case "template_method":
		return l.text(field.ChildByFieldName("name")), field.ChildByFieldName("arguments")
	case "qualified_identifier":
		_, last := l.splitQualified(field)
		return l.memberName(last)
	case "dependent_name":
		return l.memberName(l.firstNamed(field))
	default:
		return l.compact(field), nil
	}
}

// valueType drops cv and reference decoration from a type spelling, so that
// a call on a const TypeId& receiver is typed ns3::TypeId.
func valueType(typ string) string {
	typ = strings.TrimPrefix(typ, "const ")
	typ = strings.TrimSuffix(typ, " &&")
	typ = strings.TrimSuffix(typ, " &")
	return typ
}

func isFloat(lit string) bool {
	lower := strings.ToLower(lit)
	if strings.HasPrefix(lower, "0x") {
		return strings.Contains(lower, "p")
	}
	return strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f")
}

func isStatement(kind string) bool {
	return strings.HasSuffix(kind, "_statement") || kind == "for_range_loop"
}
