// Package nodes turns extracted models into a Ryven node package: one node
// per model with one data input per attribute, and a Python body that
// collects the connected inputs into a configuration dictionary.
package nodes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

// DefaultValueTypes maps attribute value types to the Python conversion
// applied to the connected input. Types not listed are passed through.
var DefaultValueTypes = map[string]string{
	"ns3::DoubleValue":   "float",
	"ns3::TimeValue":     "float",
	"ns3::BooleanValue":  "bool",
	"ns3::UintegerValue": "int",
}

// Config configures a Generator.
type Config struct {
	// Package is the node package name. It becomes a directory name and a
	// Python module prefix.
	Package string

	// ValueTypes overrides DefaultValueTypes when non-nil.
	ValueTypes map[string]string

	// Qualifier prefixes model names in the generated configuration, for
	// example "ns3::".
	Qualifier string

	Logger *slog.Logger
}

// Result lists what Generate wrote.
type Result struct {
	PackageDir string
	RPCFile    string
	NodeFiles  []string
	// Skipped counts models left out because they have no attributes.
	Skipped int
}

// Generator writes node packages.
type Generator struct {
	cfg    Config
	tmpl   *template.Template
	logger *slog.Logger
}

// NewGenerator validates cfg and parses the node template.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Package == "" {
		return nil, fmt.Errorf("nodes: package name is required")
	}
	if strings.ContainsAny(cfg.Package, `/\`) || cfg.Package == "." || cfg.Package == ".." {
		return nil, fmt.Errorf("nodes: invalid package name %q", cfg.Package)
	}
	if cfg.ValueTypes == nil {
		cfg.ValueTypes = DefaultValueTypes
	}
	if cfg.Qualifier == "" {
		cfg.Qualifier = "ns3::"
	}

	tmpl, err := template.New("metacode").
		Funcs(template.FuncMap{"pystr": pystr}).
		Parse(metacodeTemplate)
	if err != nil {
		return nil, fmt.Errorf("nodes: parse template: %w", err)
	}

	return &Generator{cfg: cfg, tmpl: tmpl, logger: util.OrDefault(cfg.Logger)}, nil
}

// pystr quotes s as a Python string literal. Every JSON string is one;
// invalid UTF-8 comes out as U+FFFD.
func pystr(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Generate writes the package for models under outDir:
//
//	<outDir>/<pkg>/<pkg>.rpc
//	<outDir>/<pkg>/nodes/<pkg>___<Model>0/<pkg>___<Model>0___METACODE.py
//
// Models without attributes are skipped.
func (g *Generator) Generate(models []model.Model, outDir string) (*Result, error) {
	var kept []model.Model
	for _, m := range models {
		if len(m.Attributes) > 0 {
			kept = append(kept, m)
		}
	}

	pkg := g.cfg.Package
	res := &Result{
		PackageDir: filepath.Join(outDir, pkg),
		Skipped:    len(models) - len(kept),
	}
	if err := os.MkdirAll(filepath.Join(res.PackageDir, "nodes"), 0755); err != nil {
		return nil, fmt.Errorf("nodes: create package directory: %w", err)
	}

	res.RPCFile = filepath.Join(res.PackageDir, pkg+".rpc")
	if err := g.writeRPC(res.RPCFile, kept); err != nil {
		return nil, err
	}

	for _, m := range kept {
		path, err := g.writeNode(res.PackageDir, m)
		if err != nil {
			return nil, err
		}
		res.NodeFiles = append(res.NodeFiles, path)
	}

	g.logger.Debug("generated node package",
		"dir", res.PackageDir,
		"nodes", len(res.NodeFiles),
		"skipped", res.Skipped)
	return res, nil
}

// moduleName is the Python module of a model's node.
func (g *Generator) moduleName(m model.Model) string {
	return g.cfg.Package + "___" + m.Name + "0"
}

type packageFile struct {
	Type  string     `json:"type"`
	Nodes []nodeFile `json:"nodes"`
}

type nodeFile struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               string     `json:"type"`
	ModuleName         string     `json:"module name"`
	ClassName          string     `json:"class name"`
	DesignStyle        string     `json:"design style"`
	Color              string     `json:"color"`
	HasMainWidget      bool       `json:"has main widget"`
	CustomInputWidgets []string   `json:"custom input widgets"`
	Inputs             []nodePort `json:"inputs"`
	Outputs            []nodePort `json:"outputs"`
}

type nodePort struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	HasWidget *bool  `json:"has widget,omitempty"`
}

func (g *Generator) writeRPC(path string, models []model.Model) error {
	pkg := packageFile{Type: "Ryven nodes package", Nodes: make([]nodeFile, 0, len(models))}
	noWidget := false

	for _, m := range models {
		node := nodeFile{
			Title:              m.Name,
			ModuleName:         g.moduleName(m),
			ClassName:          m.Name,
			DesignStyle:        "extended",
			Color:              "#d50000",
			CustomInputWidgets: []string{},
			Inputs:             make([]nodePort, 0, len(m.Attributes)),
			Outputs:            []nodePort{{Type: "data"}},
		}
		for _, a := range m.Attributes {
			node.Inputs = append(node.Inputs, nodePort{Type: "data", Label: a.Name, HasWidget: &noWidget})
		}
		pkg.Nodes = append(pkg.Nodes, node)
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return fmt.Errorf("nodes: encode package: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("nodes: write %s: %w", path, err)
	}
	return nil
}

type metacodeInput struct {
	Index int
	Name  string
	Value string
}

type metacodeData struct {
	TypeName string
	Inputs   []metacodeInput
}

func (g *Generator) writeNode(pkgDir string, m model.Model) (string, error) {
	module := g.moduleName(m)
	dir := filepath.Join(pkgDir, "nodes", module)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("nodes: create %s: %w", dir, err)
	}

	data := metacodeData{TypeName: g.cfg.Qualifier + m.Name}
	for i, a := range m.Attributes {
		data.Inputs = append(data.Inputs, metacodeInput{Index: i, Name: a.Name, Value: g.inputValue(i, a.Type)})
	}

	var buf strings.Builder
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("nodes: render %s: %w", m.Name, err)
	}

	path := filepath.Join(dir, module+"___METACODE.py")
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return "", fmt.Errorf("nodes: write %s: %w", path, err)
	}
	return path, nil
}

// inputValue is the Python expression reading input i.
func (g *Generator) inputValue(i int, valueType string) string {
	read := fmt.Sprintf("self.input(%d)", i)
	if conv, ok := g.cfg.ValueTypes[valueType]; ok && conv != "" {
		return conv + "(" + read + ")"
	}
	return read
}
