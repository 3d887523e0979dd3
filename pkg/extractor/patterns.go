package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Patterns names the source constructs the traversal looks for. The zero
// value of a field means "use the default".
type Patterns struct {
	// Namespace is the top-level namespace holding model definitions.
	Namespace string `yaml:"namespace"`
	// FactoryMethod is the method whose semantic parent names the model.
	FactoryMethod string `yaml:"factory_method"`
	// DeclarationType is the type of the builder variable declared in the
	// factory method, and the return type of the builder calls.
	DeclarationType string `yaml:"declaration_type"`
	// AttributeCall declares one attribute.
	AttributeCall string `yaml:"attribute_call"`
	// ParentCall names the parent type through its template argument.
	ParentCall string `yaml:"parent_call"`
	// ArgumentCount is how many leading arguments of an attribute call are
	// inspected: name, description and initial value.
	ArgumentCount int `yaml:"argument_count"`
}

// DefaultPatterns matches ns-3 model sources.
var DefaultPatterns = Patterns{
	Namespace:       "ns3",
	FactoryMethod:   "GetTypeId",
	DeclarationType: "ns3::TypeId",
	AttributeCall:   "AddAttribute",
	ParentCall:      "SetParent",
	ArgumentCount:   3,
}

// WithDefaults fills empty fields from DefaultPatterns.
func (p Patterns) WithDefaults() Patterns {
	if p.Namespace == "" {
		p.Namespace = DefaultPatterns.Namespace
	}
	if p.FactoryMethod == "" {
		p.FactoryMethod = DefaultPatterns.FactoryMethod
	}
	if p.DeclarationType == "" {
		p.DeclarationType = DefaultPatterns.DeclarationType
	}
	if p.AttributeCall == "" {
		p.AttributeCall = DefaultPatterns.AttributeCall
	}
	if p.ParentCall == "" {
		p.ParentCall = DefaultPatterns.ParentCall
	}
	if p.ArgumentCount == 0 {
		p.ArgumentCount = DefaultPatterns.ArgumentCount
	}
	return p
}

// Validate reports malformed patterns. Names are compared verbatim, so
// surrounding whitespace is always a mistake.
func (p Patterns) Validate() error {
	var errs []error
	for _, f := range []struct{ key, value string }{
		{"namespace", p.Namespace},
		{"factory_method", p.FactoryMethod},
		{"declaration_type", p.DeclarationType},
		{"attribute_call", p.AttributeCall},
		{"parent_call", p.ParentCall},
	} {
		switch {
		case f.value == "":
			errs = append(errs, fmt.Errorf("%s is empty", f.key))
		case strings.TrimSpace(f.value) != f.value:
			errs = append(errs, fmt.Errorf("%s %q has surrounding whitespace", f.key, f.value))
		}
	}
	if p.ArgumentCount < 1 {
		errs = append(errs, fmt.Errorf("argument_count must be positive, got %d", p.ArgumentCount))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("extractor: invalid patterns: %w", err)
	}
	return nil
}

// Qualifier returns the namespace prefix the compiler puts in front of
// type spellings, for example "ns3::".
func (p Patterns) Qualifier() string {
	return p.Namespace + "::"
}
