package indexer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestDiscoverFiles_DefaultOptions(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "src/network/model/queue.cc", "")
	writeFile(t, tmp, "src/network/model/queue.h", "")
	writeFile(t, tmp, "src/wifi/model/wifi-phy.cpp", "")
	writeFile(t, tmp, "artifacts/queue.ast.json", "")
	writeFile(t, tmp, "artifacts/phy.ast", "")
	writeFile(t, tmp, "build/generated.cc", "")
	writeFile(t, tmp, "src/CMakeFiles/feature-check.cc", "")
	writeFile(t, tmp, ".git/hooks/hook.cc", "")
	writeFile(t, tmp, "CMakeLists.txt", "")

	files, err := DiscoverFiles(tmp, DefaultScanOptions())
	require.NoError(t, err)

	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), "expected absolute path, got %s", f)
	}
	assert.ElementsMatch(t,
		[]string{"queue.cc", "wifi-phy.cpp", "queue.ast.json", "phy.ast"},
		fileNames(files))
}

func TestDiscoverFiles_SortedOutput(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "z.cc", "")
	writeFile(t, tmp, "a/b.cc", "")
	writeFile(t, tmp, "m.cc", "")

	files, err := DiscoverFiles(tmp, DefaultScanOptions())
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i := 1; i < len(files); i++ {
		assert.LessOrEqual(t, files[i-1], files[i], "files should be sorted")
	}
}

func TestDiscoverFiles_EmptyIncludeMatchesAll(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.cc", "")
	writeFile(t, tmp, "notes.txt", "")

	files, err := DiscoverFiles(tmp, ScanOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.cc", "notes.txt"}, fileNames(files))
}

func TestDiscoverFiles_EmptyDirectory(t *testing.T) {
	files, err := DiscoverFiles(t.TempDir(), DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFiles_InvalidGlob(t *testing.T) {
	opts := DefaultScanOptions()
	opts.Exclude = append(opts.Exclude, "[invalid")

	_, err := DiscoverFiles(t.TempDir(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}
