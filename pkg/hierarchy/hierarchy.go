// Package hierarchy folds inherited attributes into each model.
//
// A model's resolved attribute list is its own attributes followed by the
// attributes of its ancestors, nearest first. Parents are matched by name
// after the namespace qualifier is removed. A parent missing from the model
// list ends the chain, as does a cycle.
package hierarchy

import (
	"github.com/gnana997/splash/pkg/catalog"
	"github.com/gnana997/splash/pkg/model"
)

// Resolver computes inherited attributes over a catalog. It only reads the
// catalog, so it is safe for concurrent use as long as the catalog is not
// modified.
type Resolver struct {
	qs *catalog.QueryService
}

// NewResolver creates a resolver over qs.
func NewResolver(qs *catalog.QueryService) *Resolver {
	return &Resolver{qs: qs}
}

// Model returns the first model called name with resolved attributes and
// without its parent.
func (r *Resolver) Model(name string) (model.Model, bool) {
	m, ok := r.qs.GetModel(name)
	if !ok {
		return model.Model{}, false
	}
	return model.Model{Name: m.Name, Attributes: r.attributes(m)}, true
}

// ResolveAll returns every model of the catalog, in order, with resolved
// attributes and the parent dropped. Records sharing a name each keep their
// own attributes and inherit from the first record of their parent.
func (r *Resolver) ResolveAll() []model.Model {
	models := r.qs.Catalog.Models
	out := make([]model.Model, len(models))
	for i := range models {
		out[i] = model.Model{Name: models[i].Name, Attributes: r.attributes(&models[i])}
	}
	return out
}

func (r *Resolver) attributes(m *model.Model) []model.Attribute {
	attrs := append([]model.Attribute{}, m.Attributes...)
	for _, ancestor := range r.ancestors(m) {
		attrs = append(attrs, ancestor.Attributes...)
	}
	return attrs
}

// ancestors returns the parent chain of a record, which need not be the
// first of its name.
func (r *Resolver) ancestors(m *model.Model) []*model.Model {
	parentName := r.qs.Catalog.ParentName(m)
	if parentName == "" || parentName == m.Name {
		return nil
	}
	parent, ok := r.qs.GetModel(parentName)
	if !ok {
		return nil
	}

	chain := []*model.Model{parent}
	for _, a := range r.qs.Ancestors(parentName) {
		if a.Name == m.Name {
			break
		}
		chain = append(chain, a)
	}
	return chain
}

// Resolve indexes models with the given qualifier and resolves all of them.
func Resolve(models []model.Model, qualifier string) []model.Model {
	return NewResolver(catalog.NewQueryServiceFromModels(models, qualifier)).ResolveAll()
}
