package indexer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gnana997/splash/pkg/util"
)

const watchTimeout = 5 * time.Second

func startWatcher(t *testing.T, scanner *WorkspaceScanner, root string) (*FileWatcher, <-chan string) {
	t.Helper()

	updates := make(chan string, 16)
	opts := DefaultWatchOptions()
	opts.DebounceMs = 20
	opts.OnUpdate = func(path string) {
		select {
		case updates <- path:
		default:
		}
	}

	watcher, err := NewFileWatcher(scanner, opts, util.NopLogger())
	require.NoError(t, err)
	require.NoError(t, watcher.Start(root))
	return watcher, updates
}

func waitForUpdate(t *testing.T, updates <-chan string, want string) {
	t.Helper()

	deadline := time.After(watchTimeout)
	for {
		select {
		case got := <-updates:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("no update for %s within %s", want, watchTimeout)
		}
	}
}

func TestFileWatcher_ReextractsAndRemoves(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	scanner := newRealScanner(t)
	watcher, updates := startWatcher(t, scanner, root)
	defer watcher.Stop()

	assert.True(t, watcher.GetStats().IsRunning)

	path := installFixture(t, "drop-tail-queue.cc", root, "src/drop-tail-queue.cc")
	waitForUpdate(t, updates, path)

	require.Eventually(t, func() bool {
		fm, ok := scanner.Index().GetFileModels(path)
		return ok && len(fm.Models) == 1 && !scanner.Index().IsDirty(path)
	}, watchTimeout, 10*time.Millisecond)

	fm, _ := scanner.Index().GetFileModels(path)
	assert.Equal(t, "DropTailQueue", fm.Models[0].Name)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, ok := scanner.Index().GetFileModels(path)
		return !ok
	}, watchTimeout, 10*time.Millisecond)
	assert.Empty(t, scanner.Index().AllModels())

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.GetStats().IsRunning)
}

func TestFileWatcher_Matches(t *testing.T) {
	opts := DefaultWatchOptions()
	watcher, err := NewFileWatcher(NewWorkspaceScanner(&stubExtractor{}, newTestIndex(t, DefaultModelIndexConfig()), util.NopLogger()), opts, util.NopLogger())
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.root = "/ws"

	tests := []struct {
		path string
		want bool
	}{
		{"/ws/src/queue.cc", true},
		{"/ws/src/queue.cpp", true},
		{"/ws/queue.ast.json", true},
		{"/ws/src/queue.h", false},
		{"/ws/notes.txt", false},
		{"/ws/build/src/queue.cc", false},
		{"/ws/.git/queue.cc", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, watcher.matches(tt.path))
		})
	}
}

func TestFileWatcher_Lifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	scanner := NewWorkspaceScanner(&stubExtractor{}, newTestIndex(t, DefaultModelIndexConfig()), util.NopLogger())
	watcher, err := NewFileWatcher(scanner, WatchOptions{}, util.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultWatchOptions().DebounceMs, watcher.options.DebounceMs)

	root := t.TempDir()
	require.NoError(t, watcher.Start(root))
	assert.Error(t, watcher.Start(root), "second start")

	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
	assert.Error(t, watcher.Start(root), "start after stop")
}

func TestFileWatcher_InvalidPattern(t *testing.T) {
	opts := DefaultWatchOptions()
	opts.Scan.Exclude = []string{"[invalid"}

	scanner := NewWorkspaceScanner(&stubExtractor{}, newTestIndex(t, DefaultModelIndexConfig()), util.NopLogger())
	_, err := NewFileWatcher(scanner, opts, util.NopLogger())
	assert.Error(t, err)
}
