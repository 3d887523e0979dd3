package ast

import "fmt"

// Kind classifies a cursor. The set mirrors the subset of libclang cursor
// kinds that the C++ lowering produces.
type Kind int

const (
	InvalidKind Kind = iota

	// Declarations
	TranslationUnitKind
	Namespace
	ClassDecl
	StructDecl
	EnumDecl
	FunctionDecl
	CXXMethod
	Constructor
	Destructor
	FieldDecl
	VarDecl
	ParmDecl
	TypedefDecl
	UsingDirective
	FunctionTemplate
	ClassTemplate

	// References
	TypeRef
	NamespaceRef
	TemplateRef
	MemberRef
	CXXBaseSpecifier

	// Expressions
	UnexposedExpr
	DeclRefExpr
	MemberRefExpr
	CallExpr
	StringLiteral
	IntegerLiteral
	FloatingLiteral
	CharacterLiteral
	CXXBoolLiteralExpr
	CXXNullPtrLiteralExpr
	CXXThisExpr
	CXXFunctionalCastExpr
	CXXNewExpr
	UnaryOperator
	BinaryOperator
	ConditionalOperator
	ParenExpr
	InitListExpr
	LambdaExpr

	// Statements
	UnexposedStmt
	CompoundStmt
	DeclStmt
	ReturnStmt
	IfStmt
	ForStmt
	WhileStmt
)

var kindNames = map[Kind]string{
	InvalidKind:           "InvalidKind",
	TranslationUnitKind:   "TranslationUnit",
	Namespace:             "Namespace",
	ClassDecl:             "ClassDecl",
	StructDecl:            "StructDecl",
	EnumDecl:              "EnumDecl",
	FunctionDecl:          "FunctionDecl",
	CXXMethod:             "CXXMethod",
	Constructor:           "CXXConstructor",
	Destructor:            "CXXDestructor",
	FieldDecl:             "FieldDecl",
	VarDecl:               "VarDecl",
	ParmDecl:              "ParmDecl",
	TypedefDecl:           "TypedefDecl",
	UsingDirective:        "UsingDirective",
	FunctionTemplate:      "FunctionTemplate",
	ClassTemplate:         "ClassTemplate",
	TypeRef:               "TypeRef",
	NamespaceRef:          "NamespaceRef",
	TemplateRef:           "TemplateRef",
	MemberRef:             "MemberRef",
	CXXBaseSpecifier:      "C++ base class specifier",
	UnexposedExpr:         "UnexposedExpr",
	DeclRefExpr:           "DeclRefExpr",
	MemberRefExpr:         "MemberRefExpr",
	CallExpr:              "CallExpr",
	StringLiteral:         "StringLiteral",
	IntegerLiteral:        "IntegerLiteral",
	FloatingLiteral:       "FloatingLiteral",
	CharacterLiteral:      "CharacterLiteral",
	CXXBoolLiteralExpr:    "CXXBoolLiteralExpr",
	CXXNullPtrLiteralExpr: "CXXNullPtrLiteralExpr",
	CXXThisExpr:           "CXXThisExpr",
	CXXFunctionalCastExpr: "CXXFunctionalCastExpr",
	CXXNewExpr:            "CXXNewExpr",
	UnaryOperator:         "UnaryOperator",
	BinaryOperator:        "BinaryOperator",
	ConditionalOperator:   "ConditionalOperator",
	ParenExpr:             "ParenExpr",
	InitListExpr:          "InitListExpr",
	LambdaExpr:            "LambdaExpr",
	UnexposedStmt:         "UnexposedStmt",
	CompoundStmt:          "CompoundStmt",
	DeclStmt:              "DeclStmt",
	ReturnStmt:            "ReturnStmt",
	IfStmt:                "IfStmt",
	ForStmt:               "ForStmt",
	WhileStmt:             "WhileStmt",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the libclang spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindsByName[s]; ok {
		return k, nil
	}
	return InvalidKind, fmt.Errorf("ast: unknown cursor kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsDeclaration reports whether k names a declaration.
func (k Kind) IsDeclaration() bool {
	return k >= Namespace && k <= ClassTemplate
}

// IsReference reports whether k names a reference to another entity.
func (k Kind) IsReference() bool {
	return k >= TypeRef && k <= CXXBaseSpecifier
}

// IsExpression reports whether k names an expression.
func (k Kind) IsExpression() bool {
	return k >= UnexposedExpr && k <= LambdaExpr
}

// IsStatement reports whether k names a statement.
func (k Kind) IsStatement() bool {
	return k >= UnexposedStmt && k <= WhileStmt
}

// Category is the coarse grouping printed by the inspector.
func (k Kind) Category() string {
	switch {
	case k == TranslationUnitKind:
		return "TranslationUnit"
	case k.IsDeclaration():
		return "Declaration"
	case k.IsReference():
		return "Reference"
	case k.IsExpression():
		return "Expression"
	case k.IsStatement():
		return "Statement"
	default:
		return "Invalid"
	}
}
