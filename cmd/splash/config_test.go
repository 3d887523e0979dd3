package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/nodes"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProjectConfig_DefaultPathMissing(t *testing.T) {
	cfg, err := loadProjectConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, extractor.DefaultPatterns, cfg.patterns())
	assert.Equal(t, indexer.DefaultScanOptions().Include, cfg.scanOptions().Include)
	assert.Equal(t, nodes.DefaultValueTypes, cfg.valueTypes())
}

func TestLoadProjectConfig_ExplicitPathMissing(t *testing.T) {
	_, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadProjectConfig_Sections(t *testing.T) {
	path := writeConfig(t, `
patterns:
  factory_method: GetInstanceTypeId
  argument_count: 4
types:
  known: [Ssid]
scan:
  include: ["src/**/*.cc"]
  workers: 3
nodes:
  value_types:
    ns3::StringValue: str
`)

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)

	p := cfg.patterns()
	assert.Equal(t, "GetInstanceTypeId", p.FactoryMethod)
	assert.Equal(t, 4, p.ArgumentCount)
	assert.Equal(t, "ns3", p.Namespace, "unset keys keep their defaults")

	opts := cfg.scanOptions()
	assert.Equal(t, []string{"src/**/*.cc"}, opts.Include)
	assert.Equal(t, indexer.DefaultScanOptions().Exclude, opts.Exclude)
	assert.Equal(t, 3, opts.MaxWorkers)

	assert.Equal(t, map[string]string{"ns3::StringValue": "str"}, cfg.valueTypes())

	types, err := cfg.classifier()
	require.NoError(t, err)
	assert.True(t, types.IsType("ns3::Ssid"))
	assert.True(t, types.IsType("ns3::DoubleValue"))
}

func TestLoadProjectConfig_EmptyCastPatternDisablesMatching(t *testing.T) {
	cfg, err := loadProjectConfig(writeConfig(t, "types:\n  cast_pattern: \"\"\n"))
	require.NoError(t, err)

	types, err := cfg.classifier()
	require.NoError(t, err)
	assert.False(t, types.IsType("FrobnicateValue"))
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "patterns: [unclosed"},
		{name: "whitespace in pattern", content: "patterns:\n  namespace: \" ns3\"\n"},
		{name: "negative argument count", content: "patterns:\n  argument_count: -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadProjectConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadProjectConfig_BadCastPattern(t *testing.T) {
	cfg, err := loadProjectConfig(writeConfig(t, "types:\n  cast_pattern: \"([\"\n"))
	require.NoError(t, err)

	_, err = cfg.classifier()
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := writeConfig(t, "patterns:\n  factory_method: NoSuchMethod\n")
	out := filepath.Join(t.TempDir(), "out.json")

	res := run(t, "--config", path, fixture("drop-tail-queue.cc"), out)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, readModels(t, out))

	res = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), fixture("drop-tail-queue.cc"), out)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "read config")
}
