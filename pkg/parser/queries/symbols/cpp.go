package symbols

// CPPQueries captures namespace names and function definitions.
//
// Namespace names decide whether a written name such as "ns3::Object" is
// already rooted or still needs the enclosing namespace prefix. Function
// definitions give a cheap count of candidate factory methods per file.
const CPPQueries = `
(namespace_definition name: (namespace_identifier) @namespace.name)
(nested_namespace_specifier (namespace_identifier) @namespace.name)
(function_definition
  declarator: (function_declarator
    declarator: (qualified_identifier name: (identifier) @function.name))) @function.definition
(function_definition
  declarator: (function_declarator
    declarator: (field_identifier) @function.name)) @function.definition
(function_definition
  declarator: (function_declarator
    declarator: (identifier) @function.name)) @function.definition
`
