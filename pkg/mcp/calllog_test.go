package mcp

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		wantKeys []string
		wantSkip []string
	}{
		{name: "nil map returns empty", input: nil},
		{name: "short string passes through", input: map[string]any{"name": "DropTailQueue"}, wantKeys: []string{"name"}},
		{
			name:     "long string replaced with _len key",
			input:    map[string]any{"path": strings.Repeat("a", 200)},
			wantKeys: []string{"path_len"},
			wantSkip: []string{"path"},
		},
		{
			name:     "bool and number pass through",
			input:    map[string]any{"resolved": true, "limit": float64(5)},
			wantKeys: []string{"resolved", "limit"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := sanitizeParams(tc.input)
			assert.NotNil(t, out)
			for _, k := range tc.wantKeys {
				assert.Contains(t, out, k)
			}
			for _, k := range tc.wantSkip {
				assert.NotContains(t, out, k)
			}
		})
	}

	assert.Equal(t, 200, sanitizeParams(map[string]any{"path": strings.Repeat("a", 200)})["path_len"])
}

func TestResponseBytes(t *testing.T) {
	assert.Equal(t, 0, responseBytes(nil))
	assert.Positive(t, responseBytes(mcp.NewToolResultText("ok")))
}

func TestOpenCallLog_EmptyPathDisables(t *testing.T) {
	callLog, err := OpenCallLog("")
	require.NoError(t, err)
	assert.Nil(t, callLog)
}

func TestCallLog_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calls.jsonl")
	callLog, err := OpenCallLog(path)
	require.NoError(t, err)

	const goroutines = 20
	const writesEach = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writesEach; j++ {
				_ = callLog.Write(CallRecord{Tool: ToolListModels})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, callLog.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec CallRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), "torn write at line %d", count+1)
		assert.Equal(t, ToolListModels, rec.Tool)
		count++
	}
	assert.Equal(t, goroutines*writesEach, count)
}
