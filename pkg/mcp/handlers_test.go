package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/catalog"
	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

// --- helpers ---

type stubExtractor struct {
	models map[string][]model.Model
}

func (s *stubExtractor) ExtractFile(_ context.Context, path string) (*extractor.Result, error) {
	models, ok := s.models[path]
	if !ok {
		return nil, ast.ErrLoad
	}
	return &extractor.Result{File: path, Models: models, Stats: extractor.Stats{FactoryMethods: len(models)}}, nil
}

func queueModels() []model.Model {
	return []model.Model{
		{Name: "Object", Attributes: []model.Attribute{}},
		{Name: "Queue", Parent: "ns3::Object", Attributes: []model.Attribute{
			{Name: "MaxPackets", Description: "The maximum number of packets accepted by this queue.", Type: "ns3::UintegerValue"},
		}},
		{Name: "DropTailQueue", Parent: "ns3::Queue", Attributes: []model.Attribute{
			{Name: "Mode", Description: "Whether to use bytes or packets.", Type: "ns3::EnumValue"},
		}},
		{Name: "RedQueue", Parent: "ns3::Queue", Attributes: []model.Attribute{
			{Name: "MinTh", Description: "Minimum average length threshold.", Type: "ns3::DoubleValue"},
		}},
	}
}

func testServer(t *testing.T) (*Server, *stubExtractor) {
	t.Helper()

	idx, err := indexer.NewModelIndex(indexer.DefaultModelIndexConfig(), util.NopLogger())
	require.NoError(t, err)
	idx.AddFileModels("/ns3/src/network/queue.cc", queueModels(), extractor.Stats{})

	stub := &stubExtractor{models: map[string][]model.Model{}}
	scanner := indexer.NewWorkspaceScanner(stub, idx, util.NopLogger())

	s, err := NewServer(Config{Scanner: scanner, Root: "/ns3", Logger: util.NopLogger()})
	require.NoError(t, err)
	return s, stub
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case ToolListModels:
		handler = s.handleListModels
	case ToolGetModel:
		handler = s.handleGetModel
	case ToolSearchAttributes:
		handler = s.handleSearchAttributes
	case ToolExtractFile:
		handler = s.handleExtractFile
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), v))
}

// --- tests ---

func TestNewServer_RequiresScanner(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestNewServer_Defaults(t *testing.T) {
	s, _ := testServer(t)
	assert.Equal(t, catalog.DefaultQualifier, s.qualifier)
	assert.NotNil(t, s.MCPServer())
}

func TestHandleListModels_NoFilter(t *testing.T) {
	s, _ := testServer(t)

	var got struct {
		Count  int            `json:"count"`
		Models []ModelSummary `json:"models"`
	}
	decode(t, callTool(t, s, makeRequest(ToolListModels, nil)), &got)

	assert.Equal(t, 4, got.Count)
	require.Len(t, got.Models, 4)
	assert.Equal(t, ModelSummary{Name: "Queue", Parent: "ns3::Object", Attributes: 1}, got.Models[1])
}

func TestHandleListModels_ByKeyword(t *testing.T) {
	s, _ := testServer(t)

	var got struct {
		Count  int            `json:"count"`
		Models []ModelSummary `json:"models"`
	}
	decode(t, callTool(t, s, makeRequest(ToolListModels, map[string]any{"keyword": "queue"})), &got)

	// Matches names and parents.
	assert.Equal(t, 3, got.Count)
}

func TestHandleGetModel(t *testing.T) {
	s, _ := testServer(t)

	var got ModelDetails
	decode(t, callTool(t, s, makeRequest(ToolGetModel, map[string]any{"name": "Queue"})), &got)

	assert.Equal(t, "Queue", got.Name)
	assert.Equal(t, "ns3::Object", got.Parent)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, []string{"Object"}, got.Ancestors)
	assert.Equal(t, []string{"DropTailQueue", "RedQueue"}, got.Children)
	assert.False(t, got.Resolved)
}

func TestHandleGetModel_Resolved(t *testing.T) {
	s, _ := testServer(t)

	var got ModelDetails
	decode(t, callTool(t, s, makeRequest(ToolGetModel, map[string]any{"name": "DropTailQueue", "resolved": true})), &got)

	assert.True(t, got.Resolved)
	names := make([]string, 0, len(got.Attributes))
	for _, a := range got.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Mode", "MaxPackets"}, names)
	assert.Equal(t, []string{"Queue", "Object"}, got.Ancestors)
	assert.Empty(t, got.Children)
}

func TestHandleGetModel_NotFoundSuggests(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest(ToolGetModel, map[string]any{"name": "DropTailQueu"}))
	assert.True(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, `model "DropTailQueu" not found`)
	assert.Contains(t, text, "did you mean: DropTailQueue")
}

func TestHandleGetModel_MissingName(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest(ToolGetModel, nil))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "name parameter is required")
}

func TestHandleSearchAttributes(t *testing.T) {
	s, _ := testServer(t)

	var got struct {
		Total   int                             `json:"total"`
		Results []catalog.AttributeSearchResult `json:"results"`
	}
	decode(t, callTool(t, s, makeRequest(ToolSearchAttributes, map[string]any{"query": "doublevalue"})), &got)

	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "RedQueue", got.Results[0].Model)
	assert.Equal(t, "type", got.Results[0].MatchReason)
}

func TestHandleSearchAttributes_Limit(t *testing.T) {
	s, _ := testServer(t)

	var got struct {
		Total   int                             `json:"total"`
		Results []catalog.AttributeSearchResult `json:"results"`
	}
	decode(t, callTool(t, s, makeRequest(ToolSearchAttributes, map[string]any{"query": "ns3::", "limit": float64(2)})), &got)

	assert.Equal(t, 3, got.Total)
	assert.Len(t, got.Results, 2)
}

func TestHandleSearchAttributes_MissingQuery(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest(ToolSearchAttributes, map[string]any{"query": ""}))
	assert.True(t, result.IsError)
}

func TestHandleExtractFile_IndexesByDefault(t *testing.T) {
	s, stub := testServer(t)
	stub.models["/ns3/src/mobility/random-walk.cc"] = []model.Model{
		{Name: "RandomWalk", Parent: "ns3::MobilityModel", Attributes: []model.Attribute{}},
	}

	var got extractor.Result
	decode(t, callTool(t, s, makeRequest(ToolExtractFile, map[string]any{"path": "src/mobility/random-walk.cc"})), &got)

	assert.Equal(t, "/ns3/src/mobility/random-walk.cc", got.File)
	require.Len(t, got.Models, 1)
	assert.Equal(t, 1, got.Stats.FactoryMethods)

	// The query service picks up the new index content.
	var details ModelDetails
	decode(t, callTool(t, s, makeRequest(ToolGetModel, map[string]any{"name": "RandomWalk"})), &details)
	assert.Equal(t, "ns3::MobilityModel", details.Parent)
}

func TestHandleExtractFile_WithoutIndexing(t *testing.T) {
	s, stub := testServer(t)
	stub.models["/tmp/model.cc"] = []model.Model{{Name: "Scratch", Attributes: []model.Attribute{}}}

	var got extractor.Result
	decode(t, callTool(t, s, makeRequest(ToolExtractFile, map[string]any{"path": "/tmp/model.cc", "index": false})), &got)
	require.Len(t, got.Models, 1)

	result := callTool(t, s, makeRequest(ToolGetModel, map[string]any{"name": "Scratch"}))
	assert.True(t, result.IsError)
}

func TestHandleExtractFile_LoadFailure(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest(ToolExtractFile, map[string]any{"path": "missing.cc"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "cannot create translation unit")
}

func TestCallLogMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calls.jsonl")
	callLog, err := OpenCallLog(path)
	require.NoError(t, err)

	s, _ := testServer(t)
	s.callLog = callLog

	handler := s.callLogMiddleware()(s.handleGetModel)
	_, err = handler(context.Background(), makeRequest(ToolGetModel, map[string]any{"name": "Nope"}))
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec CallRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, ToolGetModel, rec.Tool)
	assert.Equal(t, "Nope", rec.Params["name"])
	assert.True(t, rec.IsError)
	assert.Nil(t, rec.Error)
	assert.Equal(t, uint64(1), rec.IndexVersion)
	assert.Positive(t, rec.ResponseBytes)
}
