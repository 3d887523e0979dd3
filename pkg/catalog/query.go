package catalog

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/gnana997/splash/pkg/model"
)

// DefaultSuggestThreshold is the minimum Jaro-Winkler similarity for a
// name to be suggested.
const DefaultSuggestThreshold = 0.8

// AttributeSearchResult holds an attribute match with the reason it matched.
type AttributeSearchResult struct {
	Model       string          `json:"model"`
	Attribute   model.Attribute `json:"attribute"`
	MatchReason string          `json:"match_reason"`
}

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// NewQueryServiceFromModels indexes models and returns a ready-to-use
// QueryService.
func NewQueryServiceFromModels(models []model.Model, qualifier string) *QueryService {
	cat := New(models, qualifier)
	return NewQueryService(cat, cat.BuildIndex())
}

// LoadAndQuery loads a model file and returns a ready-to-use QueryService.
func LoadAndQuery(path, qualifier string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path, qualifier)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// Len returns the number of model records.
func (q *QueryService) Len() int { return len(q.Catalog.Models) }

// ListModels returns models in export order, filtered by keyword. The
// keyword matches case-insensitively against the model and parent names;
// pass "" to skip filtering.
func (q *QueryService) ListModels(keyword string) []model.Model {
	keyword = strings.ToLower(keyword)
	result := make([]model.Model, 0, len(q.Catalog.Models))

	for _, m := range q.Catalog.Models {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(m.Name), keyword) &&
			!strings.Contains(strings.ToLower(m.Parent), keyword) {
			continue
		}
		result = append(result, m.Clone())
	}

	return result
}

// GetModel looks up the first model record called name. The bool indicates
// whether the model was found.
func (q *QueryService) GetModel(name string) (*model.Model, bool) {
	m, ok := q.Index.ModelByName[name]
	return m, ok
}

// Children returns the models whose parent is name.
func (q *QueryService) Children(name string) []*model.Model {
	return q.Index.ChildrenByParent[name]
}

// Ancestors returns the parent chain of name, nearest first. The chain
// stops at the first parent that is not in the catalog and never visits a
// model twice.
func (q *QueryService) Ancestors(name string) []*model.Model {
	m, ok := q.Index.ModelByName[name]
	if !ok {
		return nil
	}

	var chain []*model.Model
	seen := map[string]bool{name: true}
	for {
		parent := q.Catalog.ParentName(m)
		if parent == "" || seen[parent] {
			return chain
		}
		next, ok := q.Index.ModelByName[parent]
		if !ok {
			return chain
		}
		seen[parent] = true
		chain = append(chain, next)
		m = next
	}
}

// SearchAttributes performs a case-insensitive search across attribute
// names, descriptions and value types. Results follow export order.
func (q *QueryService) SearchAttributes(query string) []AttributeSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []AttributeSearchResult
	for _, m := range q.Catalog.Models {
		for _, attr := range m.Attributes {
			reason := ""
			switch {
			case strings.Contains(strings.ToLower(attr.Name), query):
				reason = "name"
			case strings.Contains(strings.ToLower(attr.Type), query):
				reason = "type"
			case strings.Contains(strings.ToLower(attr.Description), query):
				reason = "description"
			default:
				continue
			}
			results = append(results, AttributeSearchResult{Model: m.Name, Attribute: attr, MatchReason: reason})
		}
	}

	return results
}

// Suggest returns up to limit model names similar to name, most similar
// first, for "did you mean" hints.
func (q *QueryService) Suggest(name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		name  string
		score float32
	}
	var candidates []candidate

	lower := strings.ToLower(name)
	for candidateName := range q.Index.ModelByName {
		score, err := edlib.StringsSimilarity(lower, strings.ToLower(candidateName), edlib.JaroWinkler)
		if err != nil || score < DefaultSuggestThreshold {
			continue
		}
		candidates = append(candidates, candidate{name: candidateName, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
