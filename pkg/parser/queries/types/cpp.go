package types

// CPPQueries captures every name the C++ grammar places in a type position:
// class, struct, union and enum names, typedef and alias names, and each
// type_identifier used in a declaration.
//
// The lowering uses the result to tell a functional cast such as
// DoubleValue(1.0) apart from an ordinary call, because the grammar
// cannot: both parse as call_expression with an identifier callee.
const CPPQueries = `
(class_specifier name: (type_identifier) @type.class)
(struct_specifier name: (type_identifier) @type.struct)
(union_specifier name: (type_identifier) @type.union)
(enum_specifier name: (type_identifier) @type.enum)
(type_definition declarator: (type_identifier) @type.alias)
(alias_declaration name: (type_identifier) @type.alias)
(type_identifier) @type.use
`
