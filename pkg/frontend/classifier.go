package frontend

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCastPattern matches the attribute value wrappers of the simulator
// (DoubleValue, TimeValue, UintegerValue, ...).
const DefaultCastPattern = `^[A-Z][A-Za-z0-9_]*Value$`

// DefaultKnownTypes are class names that appear called like functions in
// model sources without ever being declared there.
var DefaultKnownTypes = []string{
	"TypeId",
	"Ptr",
	"Time",
	"Vector",
	"Vector2D",
	"Vector3D",
	"Address",
	"Ipv4Address",
	"Ipv4Mask",
	"Ipv6Address",
	"Ipv6Prefix",
	"Mac48Address",
	"DataRate",
	"Object",
	"ObjectBase",
	"ObjectFactory",
	"Callback",
	"EventId",
	"Packet",
	"string",
}

// TypeClassifier decides whether a called name is a type. The grammar
// parses DoubleValue(1.0) and Seconds(1.0) identically, so the lowering asks
// the classifier before choosing between a functional cast and a call.
//
// A classifier is immutable; WithDeclared returns an extended copy.
type TypeClassifier struct {
	known map[string]bool
	cast  *regexp.Regexp
}

// NewTypeClassifier builds a classifier from explicit type names and a
// regular expression over base names. An empty pattern disables matching by
// pattern.
func NewTypeClassifier(known []string, castPattern string) (*TypeClassifier, error) {
	c := &TypeClassifier{known: make(map[string]bool, len(known))}
	for _, name := range known {
		if name = strings.TrimSpace(name); name != "" {
			c.known[baseName(name)] = true
		}
	}

	if castPattern != "" {
		re, err := regexp.Compile(castPattern)
		if err != nil {
			return nil, fmt.Errorf("frontend: invalid cast pattern %q: %w", castPattern, err)
		}
		c.cast = re
	}
	return c, nil
}

// DefaultTypeClassifier returns the classifier built from DefaultKnownTypes
// and DefaultCastPattern.
func DefaultTypeClassifier() *TypeClassifier {
	c, err := NewTypeClassifier(DefaultKnownTypes, DefaultCastPattern)
	if err != nil {
		panic(err)
	}
	return c
}

// IsType reports whether name, possibly qualified or templated, names a
// type.
func (c *TypeClassifier) IsType(name string) bool {
	if c == nil {
		return false
	}
	base := baseName(name)
	if base == "" {
		return false
	}
	if c.known[base] {
		return true
	}
	return c.cast != nil && c.cast.MatchString(base)
}

// WithDeclared returns a copy that also treats names as types.
func (c *TypeClassifier) WithDeclared(names []string) *TypeClassifier {
	out := &TypeClassifier{known: make(map[string]bool, c.Len()+len(names))}
	if c != nil {
		for k := range c.known {
			out.known[k] = true
		}
		out.cast = c.cast
	}
	for _, name := range names {
		if base := baseName(name); base != "" {
			out.known[base] = true
		}
	}
	return out
}

// Len reports how many explicit type names the classifier holds.
func (c *TypeClassifier) Len() int {
	if c == nil {
		return 0
	}
	return len(c.known)
}

// baseName strips qualifiers and template arguments:
// "ns3::Ptr<ns3::Node>" becomes "Ptr".
func baseName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name
}
