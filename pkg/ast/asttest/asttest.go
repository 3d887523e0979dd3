// Package asttest builds small cursor trees for tests, together with the
// source text their string literals point into.
package asttest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnana997/splash/pkg/ast"
)

// Fixture accumulates cursors and the bytes of a fake main file.
type Fixture struct {
	b    *ast.Builder
	file string
	src  []byte
}

// New starts a fixture whose main file is named file.
func New(file string) *Fixture {
	return &Fixture{b: ast.NewBuilder(file), file: file}
}

// Root returns the translation-unit cursor.
func (f *Fixture) Root() *ast.Cursor { return f.b.Root() }

// Builder exposes the underlying builder for cases the helpers miss.
func (f *Fixture) Builder() *ast.Builder { return f.b }

// Add appends a cursor with an empty extent at the current end of source.
func (f *Fixture) Add(parent *ast.Cursor, kind ast.Kind, spelling, typ string) *ast.Cursor {
	end := uint32(len(f.src))
	return f.b.Add(parent, ast.Node{
		Kind:     kind,
		Spelling: spelling,
		Type:     typ,
		Extent:   ast.Extent{Start: end, End: end},
	})
}

// Namespace adds a namespace declaration.
func (f *Fixture) Namespace(parent *ast.Cursor, name string) *ast.Cursor {
	return f.Add(parent, ast.Namespace, name, "")
}

// Class adds an external class declaration, as seen from a file that only
// defines the class's methods.
func (f *Fixture) Class(name string) *ast.Cursor {
	return f.b.AddExternal(ast.Node{Kind: ast.ClassDecl, Spelling: name, Type: "ns3::" + name})
}

// Method adds a method declaration owned by class.
func (f *Fixture) Method(parent, class *ast.Cursor, name string) *ast.Cursor {
	m := f.Add(parent, ast.CXXMethod, name, "ns3::TypeId ()")
	if class != nil {
		f.b.SetSemanticParent(m, class)
	}
	return m
}

// Literal appends raw, verbatim, to the source and adds a StringLiteral
// whose extent covers it. raw normally includes the surrounding quotes.
func (f *Fixture) Literal(parent *ast.Cursor, raw string) *ast.Cursor {
	start := uint32(len(f.src))
	f.src = append(f.src, raw...)
	end := uint32(len(f.src))
	f.src = append(f.src, ' ')

	return f.b.Add(parent, ast.Node{
		Kind:     ast.StringLiteral,
		Spelling: raw,
		Type:     "const char[]",
		Extent:   ast.Extent{Start: start, End: end},
	})
}

// TypeRef adds a reference to typ.
func (f *Fixture) TypeRef(parent *ast.Cursor, typ string) *ast.Cursor {
	return f.Add(parent, ast.TypeRef, "class "+typ, typ)
}

// Cast adds typ(...) as a functional cast with its TypeRef child.
func (f *Fixture) Cast(parent *ast.Cursor, typ string) *ast.Cursor {
	cast := f.Add(parent, ast.CXXFunctionalCastExpr, "", typ)
	f.TypeRef(cast, typ)
	f.Add(cast, ast.FloatingLiteral, "", "double")
	f.b.SetArguments(cast, 1)
	return cast
}

// Call adds a call expression whose callee is a MemberRefExpr. Arguments
// added afterwards through the returned call must be registered with Args.
func (f *Fixture) Call(parent *ast.Cursor, name, typ string) (call, callee *ast.Cursor) {
	call = f.Add(parent, ast.CallExpr, name, typ)
	callee = f.Add(call, ast.MemberRefExpr, name, "")
	return call, callee
}

// Args marks the last n children of call as its arguments.
func (f *Fixture) Args(call *ast.Cursor, n int) {
	f.b.SetArguments(call, n)
}

// AttributeCall adds AddAttribute(name, description, valueType(...)) and
// returns the call and its callee, under which the receiver expression of a
// chained call belongs.
func (f *Fixture) AttributeCall(parent *ast.Cursor, name, description, valueType string) (call, callee *ast.Cursor) {
	call, callee = f.Call(parent, "AddAttribute", "ns3::TypeId")
	f.Literal(call, fmt.Sprintf("%q", name))
	f.Literal(call, fmt.Sprintf("%q", description))
	f.Cast(call, valueType)
	f.Args(call, 3)
	return call, callee
}

// Finish returns the translation unit and the fixture's source text.
func (f *Fixture) Finish() (*ast.TranslationUnit, Source) {
	return f.b.Finish(), Source{f.file: append([]byte(nil), f.src...)}
}

// WriteSource writes the accumulated source into dir under the fixture's
// file name and returns its path.
func (f *Fixture) WriteSource(dir string) (string, error) {
	path := filepath.Join(dir, filepath.Base(f.file))
	return path, os.WriteFile(path, f.src, 0644)
}

// Source is an in-memory text source keyed by file path.
type Source map[string][]byte

// Slice returns the bytes of path in [start, end).
func (s Source) Slice(path string, start, end uint32) (string, error) {
	data, ok := s[path]
	if !ok {
		return "", fmt.Errorf("asttest: no source for %q", path)
	}
	if end < start || int(end) > len(data) {
		return "", fmt.Errorf("asttest: range [%d, %d) out of bounds for %q", start, end, path)
	}
	return string(data[start:end]), nil
}
