package model

// noIndex marks an unset current model or attribute.
const noIndex = -1

// Accumulator collects models in encounter order. It tracks the model and
// attribute currently being filled explicitly; nothing is inferred from the
// position of the last element.
//
// An Accumulator belongs to one traversal and is not safe for concurrent use.
type Accumulator struct {
	models    []Model
	model     int
	attribute int
}

// NewAccumulator returns an empty accumulator with nothing open.
func NewAccumulator() *Accumulator {
	return &Accumulator{model: noIndex, attribute: noIndex}
}

// OpenModel appends a model and makes it current. Models with the same name
// are kept as separate records.
func (a *Accumulator) OpenModel(name string) {
	a.models = append(a.models, Model{Name: name, Attributes: []Attribute{}})
	a.model = len(a.models) - 1
	a.attribute = noIndex
}

// HasModel reports whether a model is open.
func (a *Accumulator) HasModel() bool { return a.model != noIndex }

// SetParent records the parent type of the current model. It is a no-op
// when no model is open.
func (a *Accumulator) SetParent(parent string) {
	if !a.HasModel() {
		return
	}
	a.models[a.model].Parent = parent
}

// AddLiteral routes a string literal into the current model's attributes.
//
// A new attribute is opened when none is open or when the open one already
// has a type. The literal then fills the name if it is still empty, and the
// description otherwise. Returns false when no model is open.
func (a *Accumulator) AddLiteral(text string) bool {
	if !a.HasModel() {
		return false
	}
	m := &a.models[a.model]

	if a.attribute == noIndex || m.Attributes[a.attribute].Type != "" {
		m.Attributes = append(m.Attributes, Attribute{})
		a.attribute = len(m.Attributes) - 1
	}

	attr := &m.Attributes[a.attribute]
	if attr.Name == "" {
		attr.Name = text
	} else {
		attr.Description = text
	}
	return true
}

// SetType closes the open attribute with its value type. It returns false,
// changing nothing, when no attribute is open.
func (a *Accumulator) SetType(typ string) bool {
	if !a.HasModel() || a.attribute == noIndex {
		return false
	}
	a.models[a.model].Attributes[a.attribute].Type = typ
	return true
}

// Len returns the number of models collected so far.
func (a *Accumulator) Len() int { return len(a.models) }

// Models returns a copy of the collected models.
func (a *Accumulator) Models() []Model {
	out := make([]Model, len(a.models))
	for i, m := range a.models {
		out[i] = m.Clone()
	}
	return out
}
