package indexer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

// createTestModels builds count models named <prefix>0..<prefix>N, each
// with one attribute.
func createTestModels(count int, prefix string) []model.Model {
	models := make([]model.Model, count)
	for i := 0; i < count; i++ {
		models[i] = model.Model{
			Name:   fmt.Sprintf("%s%d", prefix, i),
			Parent: "ns3::Object",
			Attributes: []model.Attribute{
				{Name: "Delay", Description: "The delay.", Type: "ns3::TimeValue"},
			},
		}
	}
	return models
}

func newTestIndex(t *testing.T, config ModelIndexConfig) *ModelIndex {
	t.Helper()

	idx, err := NewModelIndex(config, util.NopLogger())
	require.NoError(t, err)
	return idx
}

func TestNewModelIndex(t *testing.T) {
	idx := newTestIndex(t, ModelIndexConfig{})

	assert.Equal(t, DefaultModelIndexConfig().MaxRecentFiles, idx.config.MaxRecentFiles)
	assert.Empty(t, idx.Files())
	assert.Equal(t, []model.Model{}, idx.AllModels())
	assert.Equal(t, uint64(0), idx.Version())
}

func TestAddFileModels_Basic(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	fm := idx.AddFileModels("/src/queue.cc", createTestModels(2, "Queue"), extractor.Stats{Namespaces: 1})
	require.NotNil(t, fm)
	assert.Equal(t, "/src/queue.cc", fm.FilePath)
	assert.NotZero(t, fm.Timestamp)

	got, ok := idx.GetFileModels("/src/queue.cc")
	require.True(t, ok)
	assert.Same(t, fm, got)
	assert.Equal(t, 1, got.Stats.Namespaces)

	_, ok = idx.GetFileModels("/src/missing.cc")
	assert.False(t, ok)

	assert.Equal(t, uint64(1), idx.Version())
}

func TestAddFileModels_ReplacesPreviousResult(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	idx.AddFileModels("/src/queue.cc", createTestModels(3, "Old"), extractor.Stats{})
	idx.AddFileModels("/src/queue.cc", createTestModels(1, "New"), extractor.Stats{})

	models := idx.AllModels()
	require.Len(t, models, 1)
	assert.Equal(t, "New0", models[0].Name)

	stats := idx.GetStats()
	assert.Equal(t, 1, stats.IndexedFiles)
	assert.Equal(t, int64(2), stats.Updates)
}

func TestAllModels_OrderedByFileThenTraversal(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	idx.AddFileModels("/src/wifi/wifi-phy.cc", createTestModels(2, "Wifi"), extractor.Stats{})
	idx.AddFileModels("/src/applications/on-off.cc", createTestModels(2, "OnOff"), extractor.Stats{})
	idx.AddFileModels("/src/internet/tcp.cc", createTestModels(1, "Tcp"), extractor.Stats{})

	names := make([]string, 0, 5)
	for _, m := range idx.AllModels() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"OnOff0", "OnOff1", "Tcp0", "Wifi0", "Wifi1"}, names)
	assert.Equal(t, []string{"/src/applications/on-off.cc", "/src/internet/tcp.cc", "/src/wifi/wifi-phy.cc"}, idx.Files())
}

func TestAllModels_ReturnsCopies(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())
	idx.AddFileModels("/src/a.cc", createTestModels(1, "A"), extractor.Stats{})

	models := idx.AllModels()
	models[0].Attributes[0].Name = "Changed"

	again := idx.AllModels()
	assert.Equal(t, "Delay", again[0].Attributes[0].Name)
}

func TestFindModels(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	models := createTestModels(3, "Queue")
	models[1].Parent = "ns3::Queue"
	idx.AddFileModels("/src/queue.cc", models, extractor.Stats{})

	found := idx.FindModels(func(m *model.Model) bool {
		return m.Parent == "ns3::Queue"
	})
	require.Len(t, found, 1)
	assert.Equal(t, "Queue1", found[0].Name)

	assert.Empty(t, idx.FindModels(func(*model.Model) bool { return false }))
}

func TestQuery(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	models := []model.Model{
		{Name: "Queue", Parent: "ns3::Object"},
		{Name: "DropTailQueue", Parent: "ns3::Queue"},
	}
	idx.AddFileModels("/src/queue.cc", models, extractor.Stats{})

	qs := idx.Query("ns3::")
	assert.Equal(t, 2, qs.Len())

	m, ok := qs.GetModel("DropTailQueue")
	require.True(t, ok)
	assert.Equal(t, "ns3::Queue", m.Parent)

	children := qs.Children("Queue")
	require.Len(t, children, 1)
	assert.Equal(t, "DropTailQueue", children[0].Name)
}

func TestInvalidateFile_LazyPattern(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())
	idx.AddFileModels("/src/queue.cc", createTestModels(2, "Queue"), extractor.Stats{})

	idx.InvalidateFile("/src/queue.cc")
	assert.True(t, idx.IsDirty("/src/queue.cc"))

	// Models stay visible until the file is re-extracted.
	assert.Len(t, idx.AllModels(), 2)
	assert.Equal(t, 1, idx.GetStats().DirtyFiles)

	idx.AddFileModels("/src/queue.cc", createTestModels(1, "Queue"), extractor.Stats{})
	assert.False(t, idx.IsDirty("/src/queue.cc"))
	assert.Equal(t, 0, idx.GetStats().DirtyFiles)
}

func TestRemoveFile(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())
	idx.AddFileModels("/src/a.cc", createTestModels(2, "A"), extractor.Stats{})
	idx.AddFileModels("/src/b.cc", createTestModels(1, "B"), extractor.Stats{})
	idx.InvalidateFile("/src/a.cc")

	before := idx.Version()
	assert.True(t, idx.RemoveFile("/src/a.cc"))
	assert.Greater(t, idx.Version(), before)
	assert.False(t, idx.IsDirty("/src/a.cc"))

	models := idx.AllModels()
	require.Len(t, models, 1)
	assert.Equal(t, "B0", models[0].Name)

	unchanged := idx.Version()
	assert.False(t, idx.RemoveFile("/src/a.cc"))
	assert.Equal(t, unchanged, idx.Version())

	stats := idx.GetStats()
	assert.Equal(t, int64(1), stats.Removals)
	assert.Equal(t, []string{"/src/b.cc"}, idx.RecentFiles(0))
}

func TestRecentFiles_LRU(t *testing.T) {
	idx := newTestIndex(t, ModelIndexConfig{MaxRecentFiles: 3})

	for i := 0; i < 5; i++ {
		idx.AddFileModels(fmt.Sprintf("/src/f%d.cc", i), createTestModels(1, "M"), extractor.Stats{})
	}

	assert.Equal(t, []string{"/src/f4.cc", "/src/f3.cc", "/src/f2.cc"}, idx.RecentFiles(0))
	assert.Equal(t, []string{"/src/f4.cc"}, idx.RecentFiles(1))

	stats := idx.GetStats()
	assert.Equal(t, 5, stats.IndexedFiles, "the recent-files bound never drops models")
	assert.Equal(t, 5, stats.TotalModels)
	assert.Equal(t, int64(2), stats.RecentEvicted)
}

func TestConcurrentAccess(t *testing.T) {
	idx := newTestIndex(t, DefaultModelIndexConfig())

	for i := 0; i < 10; i++ {
		idx.AddFileModels(fmt.Sprintf("/src/file%d.cc", i), createTestModels(5, "M"), extractor.Stats{})
	}

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			switch id % 4 {
			case 0:
				idx.AddFileModels(fmt.Sprintf("/src/concurrent%d.cc", id), createTestModels(3, "C"), extractor.Stats{})
			case 1:
				idx.GetFileModels(fmt.Sprintf("/src/file%d.cc", id%10))
			case 2:
				idx.AllModels()
			case 3:
				idx.InvalidateFile(fmt.Sprintf("/src/file%d.cc", id%10))
			}
		}(i)
	}

	wg.Wait()

	stats := idx.GetStats()
	assert.Equal(t, 10+13, stats.IndexedFiles)
	assert.Equal(t, 50+13*3, stats.TotalModels)
}
