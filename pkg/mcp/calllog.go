package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallRecord is one JSONL line written per tool call.
type CallRecord struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	IndexVersion  uint64         `json:"index_version"`
	IsError       bool           `json:"is_error"`
	Error         *string        `json:"error"`
}

// CallLog appends CallRecords to a file. Safe for concurrent use.
type CallLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenCallLog opens (or creates) path for appending, creating parent
// directories. An empty path returns nil, nil: a nil CallLog disables
// call logging.
func OpenCallLog(path string) (*CallLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcp: create call log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcp: open call log: %w", err)
	}
	return &CallLog{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one record.
func (l *CallLog) Write(rec CallRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(rec)
}

// Close closes the log file.
func (l *CallLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// sanitizeParams copies args for logging. Strings longer than 64 bytes are
// replaced by a "<key>_len" entry so paths and queries stay short.
func sanitizeParams(args map[string]any) map[string]any {
	const shortStringMax = 64
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > shortStringMax {
			out[k+"_len"] = len(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// responseBytes is the serialized size of a result's content.
func responseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}
