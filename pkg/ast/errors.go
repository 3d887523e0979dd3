package ast

import "errors"

var (
	// ErrLoad reports that no usable translation unit could be produced
	// from the input.
	ErrLoad = errors.New("cannot create translation unit")

	// ErrUnsupportedInput reports an input whose extension is neither a
	// saved artifact nor a C/C++ source file.
	ErrUnsupportedInput = errors.New("unsupported input")
)
