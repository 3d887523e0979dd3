// Package model holds the records produced by extraction and their JSON
// form.
package model

// Attribute is one property declared through the attribute builder call.
type Attribute struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Model is one class that defines the factory method.
type Model struct {
	Parent     string      `json:"parent,omitempty"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Clone returns a deep copy of m.
func (m Model) Clone() Model {
	out := m
	out.Attributes = append([]Attribute(nil), m.Attributes...)
	if out.Attributes == nil {
		out.Attributes = []Attribute{}
	}
	return out
}

// Attribute returns the first attribute called name.
func (m Model) Attribute(name string) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
