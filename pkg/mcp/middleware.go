package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// now is replaced in tests.
var now = time.Now

// callLogMiddleware records every tool call in the server's call log.
// NewServer installs it only when a call log is configured.
func (s *Server) callLogMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := now()
			result, err := next(ctx, req)

			var errStr *string
			if err != nil {
				msg := err.Error()
				errStr = &msg
			}

			rec := CallRecord{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Params:        sanitizeParams(req.GetArguments()),
				DurationMs:    time.Since(start).Milliseconds(),
				ResponseBytes: responseBytes(result),
				IndexVersion:  s.index.Version(),
				IsError:       result != nil && result.IsError,
				Error:         errStr,
			}
			if werr := s.callLog.Write(rec); werr != nil {
				s.logger.Warn("writing call log", "tool", rec.Tool, "error", werr)
			}

			return result, err
		}
	}
}
