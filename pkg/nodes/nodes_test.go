package nodes

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

func testModels() []model.Model {
	return []model.Model{
		{
			Name: "RedQueue",
			Attributes: []model.Attribute{
				{Name: "MinTh", Description: "Minimum threshold.", Type: "ns3::DoubleValue"},
				{Name: "Gentle", Description: "Gentle mode.", Type: "ns3::BooleanValue"},
				{Name: "Mode", Description: "Queue mode.", Type: "ns3::EnumValue"},
			},
		},
		{Name: "Object", Attributes: []model.Attribute{}},
		{
			Name:       "DropTailQueue",
			Attributes: []model.Attribute{{Name: "MaxPackets", Type: "ns3::UintegerValue"}},
		},
	}
}

func newGenerator(t *testing.T, pkg string) *Generator {
	t.Helper()

	g, err := NewGenerator(Config{Package: pkg, Logger: util.NopLogger()})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_InvalidPackage(t *testing.T) {
	for _, pkg := range []string{"", "a/b", `a\b`, ".", ".."} {
		_, err := NewGenerator(Config{Package: pkg})
		assert.Error(t, err, pkg)
	}
}

func TestGenerate_Layout(t *testing.T) {
	out := t.TempDir()
	res, err := newGenerator(t, "ns3nodes").Generate(testModels(), out)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "ns3nodes"), res.PackageDir)
	assert.Equal(t, filepath.Join(out, "ns3nodes", "ns3nodes.rpc"), res.RPCFile)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{
		filepath.Join(out, "ns3nodes", "nodes", "ns3nodes___RedQueue0", "ns3nodes___RedQueue0___METACODE.py"),
		filepath.Join(out, "ns3nodes", "nodes", "ns3nodes___DropTailQueue0", "ns3nodes___DropTailQueue0___METACODE.py"),
	}, res.NodeFiles)

	for _, f := range res.NodeFiles {
		assert.FileExists(t, f)
	}
	assert.NoDirExists(t, filepath.Join(out, "ns3nodes", "nodes", "ns3nodes___Object0"))
}

func TestGenerate_PackageFile(t *testing.T) {
	res, err := newGenerator(t, "sim").Generate(testModels(), t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(res.RPCFile)
	require.NoError(t, err)

	var pkg map[string]any
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, "Ryven nodes package", pkg["type"])

	nodes := pkg["nodes"].([]any)
	require.Len(t, nodes, 2)

	red := nodes[0].(map[string]any)
	assert.Equal(t, "RedQueue", red["title"])
	assert.Equal(t, "RedQueue", red["class name"])
	assert.Equal(t, "sim___RedQueue0", red["module name"])
	assert.Equal(t, "extended", red["design style"])
	assert.Equal(t, false, red["has main widget"])

	inputs := red["inputs"].([]any)
	require.Len(t, inputs, 3)
	assert.Equal(t, map[string]any{"type": "data", "label": "MinTh", "has widget": false}, inputs[0])

	outputs := red["outputs"].([]any)
	assert.Equal(t, []any{map[string]any{"type": "data", "label": ""}}, outputs)
}

func TestGenerate_Metacode(t *testing.T) {
	res, err := newGenerator(t, "sim").Generate(testModels(), t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(res.NodeFiles[0])
	require.NoError(t, err)
	code := string(data)

	assert.Contains(t, code, "class %CLASS%(NodeInstance):")
	assert.Contains(t, code, `d = {"name": "ns3::RedQueue", "attributes": []}`)
	assert.Contains(t, code, `if self.input(0): d["attributes"].append({"name": "MinTh", "value": float(self.input(0))})`)
	assert.Contains(t, code, `if self.input(1): d["attributes"].append({"name": "Gentle", "value": bool(self.input(1))})`)
	assert.Contains(t, code, `if self.input(2): d["attributes"].append({"name": "Mode", "value": self.input(2)})`)
	assert.Contains(t, code, "self.set_output_val(0, d)")
}

func TestPystr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "MinTh", want: `"MinTh"`},
		{name: "quotes and backslash", in: `a "b" \c`, want: `"a \"b\" \\c"`},
		{name: "control characters", in: "tab\tbell\a", want: `"tab\tbell\u0007"`},
		{name: "invalid utf-8", in: "bad\xffbyte", want: `"bad\ufffdbyte"`},
		{name: "outside the basic plane", in: "rate \U0001F680", want: "\"rate \U0001F680\""},
		{name: "markup", in: "a<b&c", want: `"a<b&c"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pystr(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			var back string
			require.NoError(t, json.Unmarshal([]byte(got), &back))
			assert.Equal(t, strings.ToValidUTF8(tc.in, "\uFFFD"), back)
		})
	}
}

func TestGenerate_MetacodeQuotesNames(t *testing.T) {
	models := []model.Model{{
		Name:       "Odd",
		Attributes: []model.Attribute{{Name: "Max\"Size\xff", Type: "ns3::UintegerValue"}},
	}}

	res, err := newGenerator(t, "sim").Generate(models, t.TempDir())
	require.NoError(t, err)
	data, err := os.ReadFile(res.NodeFiles[0])
	require.NoError(t, err)

	assert.Contains(t, string(data), `{"name": "Max\"Size\ufffd", "value": int(self.input(0))}`)
}

func TestGenerate_CustomValueTypes(t *testing.T) {
	g, err := NewGenerator(Config{
		Package:    "sim",
		ValueTypes: map[string]string{"ns3::EnumValue": "str"},
		Qualifier:  "sim::",
	})
	require.NoError(t, err)

	res, err := g.Generate(testModels()[:1], t.TempDir())
	require.NoError(t, err)
	data, err := os.ReadFile(res.NodeFiles[0])
	require.NoError(t, err)

	assert.Contains(t, string(data), `"name": "sim::RedQueue"`)
	assert.Contains(t, string(data), `"value": str(self.input(2))`)
	assert.Contains(t, string(data), `"value": self.input(0)})`)
}

func TestGenerate_ExistingDirectory(t *testing.T) {
	out := t.TempDir()
	g := newGenerator(t, "sim")

	_, err := g.Generate(testModels(), out)
	require.NoError(t, err)
	_, err = g.Generate(testModels(), out)
	assert.NoError(t, err, "regenerating over a previous package is allowed")
}

func TestGenerate_NoModels(t *testing.T) {
	res, err := newGenerator(t, "sim").Generate(nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.NodeFiles)

	data, err := os.ReadFile(res.RPCFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodes": []`)
}
