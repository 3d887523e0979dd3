package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/hierarchy"
	"github.com/gnana997/splash/pkg/model"
)

const (
	defaultSearchLimit = 50
	suggestLimit       = 3
)

// ModelSummary is one entry of list_models.
type ModelSummary struct {
	Name       string `json:"name"`
	Parent     string `json:"parent,omitempty"`
	Attributes int    `json:"attributes"`
}

// ModelDetails is the get_model response.
type ModelDetails struct {
	model.Model
	Ancestors []string `json:"ancestors"`
	Children  []string `json:"children"`
	Resolved  bool     `json:"resolved"`
}

func (s *Server) handleListModels(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	keyword, _ := args["keyword"].(string)

	models := s.queryService().ListModels(keyword)
	summaries := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		summaries = append(summaries, ModelSummary{Name: m.Name, Parent: m.Parent, Attributes: len(m.Attributes)})
	}

	return jsonResult(map[string]any{
		"count":  len(summaries),
		"models": summaries,
	})
}

func (s *Server) handleGetModel(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	resolved, _ := args["resolved"].(bool)

	qs := s.queryService()
	m, ok := qs.GetModel(name)
	if !ok {
		msg := fmt.Sprintf("model %q not found", name)
		if hints := qs.Suggest(name, suggestLimit); len(hints) > 0 {
			msg += "; did you mean: " + strings.Join(hints, ", ")
		}
		return mcp.NewToolResultError(msg), nil
	}

	details := ModelDetails{
		Model:     m.Clone(),
		Ancestors: []string{},
		Children:  []string{},
		Resolved:  resolved,
	}
	for _, a := range qs.Ancestors(name) {
		details.Ancestors = append(details.Ancestors, a.Name)
	}
	for _, c := range qs.Children(name) {
		details.Children = append(details.Children, c.Name)
	}
	if resolved {
		if r, ok := hierarchy.NewResolver(qs).Model(name); ok {
			details.Attributes = r.Attributes
		}
	}

	return jsonResult(details)
}

func (s *Server) handleSearchAttributes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := defaultSearchLimit
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	results := s.queryService().SearchAttributes(query)
	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return jsonResult(map[string]any{
		"total":   total,
		"results": results,
	})
}

func (s *Server) handleExtractFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	if !filepath.IsAbs(path) && s.root != "" {
		path = filepath.Join(s.root, path)
	}

	index := true
	if b, ok := args["index"].(bool); ok {
		index = b
	}

	if index {
		fm, err := s.scanner.IndexFile(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(&extractor.Result{File: fm.FilePath, Models: fm.Models, Stats: fm.Stats})
	}

	result, err := s.scanner.Extractor().ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
