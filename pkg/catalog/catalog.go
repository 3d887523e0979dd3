// Package catalog indexes an exported model list and answers lookups over
// it: by name, by parent, and by attribute.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gnana997/splash/pkg/model"
)

// DefaultQualifier is the namespace prefix removed from parent names before
// they are matched against model names.
const DefaultQualifier = "ns3::"

// Catalog holds a model list in export order.
type Catalog struct {
	Models    []model.Model
	Qualifier string
}

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// ModelByName maps a model name to its first record. Later records with
	// the same name are reachable through Duplicates.
	ModelByName map[string]*model.Model

	// Duplicates maps a model name to every record after the first.
	Duplicates map[string][]*model.Model

	// ChildrenByParent maps an unqualified parent name to the models that
	// declare it, in export order.
	ChildrenByParent map[string][]*model.Model
}

// New wraps models. An empty qualifier uses DefaultQualifier.
func New(models []model.Model, qualifier string) *Catalog {
	if qualifier == "" {
		qualifier = DefaultQualifier
	}
	return &Catalog{Models: models, Qualifier: qualifier}
}

// ParentName returns the parent of m without the namespace qualifier.
func (c *Catalog) ParentName(m *model.Model) string {
	return strings.TrimPrefix(m.Parent, c.Qualifier)
}

// BuildIndex creates lookup maps for fast access.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ModelByName:      make(map[string]*model.Model, len(c.Models)),
		Duplicates:       make(map[string][]*model.Model),
		ChildrenByParent: make(map[string][]*model.Model),
	}

	for i := range c.Models {
		m := &c.Models[i]
		if _, ok := idx.ModelByName[m.Name]; ok {
			idx.Duplicates[m.Name] = append(idx.Duplicates[m.Name], m)
		} else {
			idx.ModelByName[m.Name] = m
		}

		if parent := c.ParentName(m); parent != "" {
			idx.ChildrenByParent[parent] = append(idx.ChildrenByParent[parent], m)
		}
	}

	return idx
}

// LoadFromFile reads an exported model file and builds the index.
func LoadFromFile(path, qualifier string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return LoadFromBytes(data, qualifier)
}

// LoadFromBytes parses exported model JSON and builds the index.
func LoadFromBytes(data []byte, qualifier string) (*Catalog, *CatalogIndex, error) {
	models, err := model.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}

	cat := New(models, qualifier)
	return cat, cat.BuildIndex(), nil
}
