package nodes

import _ "embed"

// metacodeTemplate is the Python source of one generated node. %CLASS% is
// left for the node editor, which substitutes it when importing the
// package.
//
//go:embed templates/metacode.py.tmpl
var metacodeTemplate string
