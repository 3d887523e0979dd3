package extractor

import "github.com/gnana997/splash/pkg/ast"

// arguments runs an independent descent over each of the leading argument
// positions of an attribute call. Positions the call does not have are
// skipped.
func (t *traversal) arguments(call *ast.Cursor) {
	for i := 0; i < t.patterns.ArgumentCount; i++ {
		arg := call.Argument(i)
		if arg == nil {
			continue
		}
		if t.classify(arg, call) == ast.VisitRecurse {
			ast.VisitChildren(arg, t.classify)
		}
	}
}

// classify stops a descent at the first literal or type it meets.
func (t *traversal) classify(c, _ *ast.Cursor) ast.VisitResult {
	switch c.Kind() {
	case ast.StringLiteral:
		text := t.literalText(c)
		t.acc.AddLiteral(text)
		t.stats.Literals++
		return ast.VisitBreak

	case ast.TypeRef, ast.CXXFunctionalCastExpr:
		if t.acc.SetType(c.Type()) {
			t.stats.Types++
		}
		return ast.VisitBreak

	default:
		return ast.VisitRecurse
	}
}
