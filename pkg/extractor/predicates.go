package extractor

import "github.com/gnana997/splash/pkg/ast"

// The predicates below look at a single cursor and know nothing about
// traversal depth. Comparisons are exact and case-sensitive.

// IsNamespaceNamed reports whether c declares the namespace name.
func IsNamespaceNamed(c *ast.Cursor, name string) bool {
	return c.Kind() == ast.Namespace && c.Spelling() == name
}

// IsMethodNamed reports whether c declares or defines the method name.
func IsMethodNamed(c *ast.Cursor, name string) bool {
	return c.Kind() == ast.CXXMethod && c.Spelling() == name
}

// IsDeclOfType reports whether c is a declaration of type typeName owned
// by a method called enclosingMethod.
func IsDeclOfType(c *ast.Cursor, typeName, enclosingMethod string) bool {
	return c.Kind().IsDeclaration() &&
		c.Type() == typeName &&
		ast.SpellingOf(c.SemanticParent()) == enclosingMethod
}

// IsCallReturning reports whether c calls callee and yields returnType.
func IsCallReturning(c *ast.Cursor, returnType, callee string) bool {
	return c.Kind() == ast.CallExpr &&
		c.Type() == returnType &&
		c.Spelling() == callee
}

// IsTypeReferenceUnder reports whether c is a type reference whose visit
// parent is spelled expectedParentSpelling.
func IsTypeReferenceUnder(c, parent *ast.Cursor, expectedParentSpelling string) bool {
	return c.Kind() == ast.TypeRef && ast.SpellingOf(parent) == expectedParentSpelling
}

// IsFromPrimaryFile reports whether c lies in the main file of its unit.
func IsFromPrimaryFile(c *ast.Cursor) bool {
	return c.IsFromMainFile()
}
