package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/frontend"
	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/nodes"
)

const defaultConfigPath = ".splash/config.yaml"

// ProjectConfig holds the contents of .splash/config.yaml.
type ProjectConfig struct {
	Patterns extractor.Patterns `yaml:"patterns"`
	Types    TypesConfig        `yaml:"types"`
	Scan     ScanConfig         `yaml:"scan"`
	Nodes    NodesConfig        `yaml:"nodes"`
}

// TypesConfig tunes how called identifiers are classified as type names.
type TypesConfig struct {
	// Known extends frontend.DefaultKnownTypes.
	Known []string `yaml:"known"`
	// CastPattern replaces frontend.DefaultCastPattern when set. An empty
	// string disables pattern matching.
	CastPattern *string `yaml:"cast_pattern"`
}

// ScanConfig overrides the batch scan defaults.
type ScanConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Workers int      `yaml:"workers"`
}

// NodesConfig configures node package generation.
type NodesConfig struct {
	ValueTypes map[string]string `yaml:"value_types"`
}

// loadProjectConfig reads the project configuration. An empty path reads
// .splash/config.yaml from the current directory, which may be absent; an
// explicit path must exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Patterns.WithDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// patterns returns the effective pattern table.
func (c *ProjectConfig) patterns() extractor.Patterns {
	return c.Patterns.WithDefaults()
}

// classifier builds the type classifier from the types section.
func (c *ProjectConfig) classifier() (*frontend.TypeClassifier, error) {
	if len(c.Types.Known) == 0 && c.Types.CastPattern == nil {
		return frontend.DefaultTypeClassifier(), nil
	}

	known := append(append([]string(nil), frontend.DefaultKnownTypes...), c.Types.Known...)
	pattern := frontend.DefaultCastPattern
	if c.Types.CastPattern != nil {
		pattern = *c.Types.CastPattern
	}
	return frontend.NewTypeClassifier(known, pattern)
}

// scanOptions merges the scan section into indexer.DefaultScanOptions.
func (c *ProjectConfig) scanOptions() indexer.ScanOptions {
	opts := indexer.DefaultScanOptions()
	if len(c.Scan.Include) > 0 {
		opts.Include = c.Scan.Include
	}
	if len(c.Scan.Exclude) > 0 {
		opts.Exclude = c.Scan.Exclude
	}
	if c.Scan.Workers > 0 {
		opts.MaxWorkers = c.Scan.Workers
	}
	return opts
}

func (c *ProjectConfig) valueTypes() map[string]string {
	if len(c.Nodes.ValueTypes) == 0 {
		return nodes.DefaultValueTypes
	}
	return c.Nodes.ValueTypes
}
