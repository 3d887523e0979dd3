// Package mcp serves the live model index over the Model Context Protocol,
// so agents can look up simulation models and their attributes while the
// source tree changes underneath.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/splash/pkg/catalog"
	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/util"
)

const serverVersion = "0.1.0-dev"

// Config configures a Server.
type Config struct {
	// Scanner provides the index and the extractor. Required.
	Scanner *indexer.WorkspaceScanner

	// Root resolves relative paths given to extract_file.
	Root string

	// Qualifier is stripped from parent types when linking models.
	// Default: "ns3::"
	Qualifier string

	// CallLog records every tool call when set.
	CallLog *CallLog

	Logger *slog.Logger
}

// Server exposes list_models, get_model, search_attributes and
// extract_file.
type Server struct {
	mcpServer *server.MCPServer
	scanner   *indexer.WorkspaceScanner
	index     *indexer.ModelIndex
	root      string
	qualifier string
	callLog   *CallLog
	logger    *slog.Logger

	// Query service over the index, rebuilt when the index version moves.
	mu           sync.Mutex
	query        *catalog.QueryService
	queryVersion uint64
}

// NewServer creates a server over the scanner's index.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, fmt.Errorf("mcp: scanner is required")
	}
	if cfg.Qualifier == "" {
		cfg.Qualifier = catalog.DefaultQualifier
	}

	s := &Server{
		scanner:   cfg.Scanner,
		index:     cfg.Scanner.Index(),
		root:      cfg.Root,
		qualifier: cfg.Qualifier,
		callLog:   cfg.CallLog,
		logger:    util.OrDefault(cfg.Logger),
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.callLogMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("splash", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listModelsTool(), Handler: s.handleListModels},
		server.ServerTool{Tool: getModelTool(), Handler: s.handleGetModel},
		server.ServerTool{Tool: searchAttributesTool(), Handler: s.handleSearchAttributes},
		server.ServerTool{Tool: extractFileTool(), Handler: s.handleExtractFile},
	)

	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve reads requests from in and writes responses to out until in is
// exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// queryService returns a query service over the current index content.
func (s *Server) queryService() *catalog.QueryService {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.index.Version()
	if s.query == nil || version != s.queryVersion {
		s.query = s.index.Query(s.qualifier)
		s.queryVersion = version
	}
	return s.query
}
