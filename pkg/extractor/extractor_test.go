package extractor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/ast/asttest"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()

	e, err := New(Config{Logger: util.NopLogger()})
	require.NoError(t, err)
	return e
}

// factory builds namespace ns3 { TypeId Class::GetTypeId () { TypeId tid = ...; } }
// and returns the declaration under which a builder chain goes.
func factory(f *asttest.Fixture, class string) *ast.Cursor {
	ns := f.Namespace(f.Root(), "ns3")
	method := f.Method(ns, f.Class(class), "GetTypeId")
	body := f.Add(method, ast.CompoundStmt, "", "")
	stmt := f.Add(body, ast.DeclStmt, "", "")
	return f.Add(stmt, ast.VarDecl, "tid", "ns3::TypeId")
}

func TestRun_NoNamespace(t *testing.T) {
	f := asttest.New("model.cc")
	f.Namespace(f.Root(), "std")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	assert.Empty(t, result.Models)
	assert.NotNil(t, result.Models)
	assert.Equal(t, "model.cc", result.File)

	var buf bytes.Buffer
	require.NoError(t, model.Export(&buf, result.Models, false))
	assert.Equal(t, "[]", string(bytes.TrimSpace(buf.Bytes())))
}

func TestRun_SingleAttribute(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	f.AttributeCall(tid, "MaxPackets", "The maximum number of packets.", "ns3::UintegerValue")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, model.Model{
		Name: "Queue",
		Attributes: []model.Attribute{{
			Name:        "MaxPackets",
			Description: "The maximum number of packets.",
			Type:        "ns3::UintegerValue",
		}},
	}, result.Models[0])

	assert.Equal(t, 1, result.Stats.Namespaces)
	assert.Equal(t, 1, result.Stats.FactoryMethods)
	assert.Equal(t, 1, result.Stats.Declarations)
	assert.Equal(t, 1, result.Stats.AttributeCalls)
	assert.Equal(t, 2, result.Stats.Literals)
	assert.Equal(t, 1, result.Stats.Types)
	assert.Zero(t, result.Stats.TextFailures)
}

func TestRun_ChainBoundaries(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")

	// The call met first is the outer one of the chain.
	_, callee := f.AttributeCall(tid, "A", "B", "T")
	f.AttributeCall(callee, "C", "D", "U")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{
		{Name: "A", Description: "B", Type: "T"},
		{Name: "C", Description: "D", Type: "U"},
	}, result.Models[0].Attributes)
}

func TestRun_Parent(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "DropTailQueue")
	_, callee := f.AttributeCall(tid, "Mode", "Queue mode.", "ns3::EnumValue")

	ctor, ctorCallee := f.Call(callee, "AddConstructor", "ns3::TypeId")
	f.TypeRef(ctorCallee, "ns3::DropTailQueue")
	f.Args(ctor, 0)

	setParent, setParentCallee := f.Call(ctorCallee, "SetParent", "ns3::TypeId")
	f.TypeRef(setParentCallee, "ns3::Queue")
	f.Args(setParent, 0)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, "ns3::Queue", result.Models[0].Parent)
	assert.Equal(t, 1, result.Stats.ParentRefs)
	assert.Len(t, result.Models[0].Attributes, 1)
}

func TestRun_TypeRefOutsideParentCall(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	f.TypeRef(tid, "ns3::TypeId")
	call, callee := f.Call(tid, "AddConstructor", "ns3::TypeId")
	f.TypeRef(callee, "ns3::Queue")
	f.Args(call, 0)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Empty(t, result.Models[0].Parent)
	assert.Empty(t, result.Models[0].Attributes)
}

func TestRun_DepthGates(t *testing.T) {
	f := asttest.New("model.cc")

	// An attribute call directly in the namespace is not under a factory
	// method.
	ns := f.Namespace(f.Root(), "ns3")
	f.AttributeCall(ns, "Orphan", "Not inside a factory method.", "ns3::DoubleValue")

	// A factory method without the builder declaration opens a model that
	// stays empty.
	method := f.Method(ns, f.Class("Empty"), "GetTypeId")
	f.AttributeCall(method, "Skipped", "Not under the declaration.", "ns3::DoubleValue")

	// A declaration of another type does not open the chain.
	other := f.Method(ns, f.Class("Other"), "GetTypeId")
	f.AttributeCall(f.Add(other, ast.VarDecl, "x", "int"), "Skipped", "Wrong type.", "ns3::DoubleValue")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 2)
	assert.Equal(t, "Empty", result.Models[0].Name)
	assert.Equal(t, "Other", result.Models[1].Name)
	for _, m := range result.Models {
		assert.Empty(t, m.Attributes, m.Name)
	}
}

func TestRun_NamespaceOutsideMainFile(t *testing.T) {
	f := asttest.New("model.cc")
	b := f.Builder()
	header := b.Add(f.Root(), ast.Node{
		Kind:     ast.Namespace,
		Spelling: "ns3",
		Extent:   ast.Extent{File: "queue.h"},
	})
	method := f.Method(header, f.Class("Queue"), "GetTypeId")
	f.AttributeCall(f.Add(method, ast.VarDecl, "tid", "ns3::TypeId"), "A", "B", "T")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	assert.Empty(t, result.Models)
}

func TestRun_MethodNameMustMatch(t *testing.T) {
	f := asttest.New("model.cc")
	ns := f.Namespace(f.Root(), "ns3")
	f.Method(ns, f.Class("Queue"), "GetInstanceTypeId")
	f.Add(ns, ast.FunctionDecl, "GetTypeId", "ns3::TypeId ()")
	tu, src := f.Finish()

	assert.Empty(t, newExtractor(t).Run(tu, src).Models)
}

func TestRun_DuplicateModelsAreKept(t *testing.T) {
	f := asttest.New("model.cc")
	ns := f.Namespace(f.Root(), "ns3")
	class := f.Class("Queue")
	f.Method(ns, class, "GetTypeId")
	f.Method(ns, class, "GetTypeId")
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 2)
	assert.Equal(t, result.Models[0], result.Models[1])
}

func TestRun_ArgumentDescent(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")

	call, _ := f.Call(tid, "AddAttribute", "ns3::TypeId")
	// Literals wrapped in implicit conversions are found by recursion, and
	// the first literal stops the descent of its argument.
	wrapper := f.Add(call, ast.UnexposedExpr, "", "std::string")
	f.Literal(wrapper, `"Delay"`)
	f.Literal(wrapper, `"ignored"`)
	f.Literal(call, `"Propagation delay."`)
	value := f.Add(call, ast.CallExpr, "TimeValue", "ns3::TimeValue")
	f.TypeRef(value, "ns3::TimeValue")
	f.Literal(call, `"fourth argument"`)
	f.Args(call, 4)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{{
		Name:        "Delay",
		Description: "Propagation delay.",
		Type:        "ns3::TimeValue",
	}}, result.Models[0].Attributes)
}

func TestRun_MissingArgumentsAreSkipped(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	call, _ := f.Call(tid, "AddAttribute", "ns3::TypeId")
	f.Literal(call, `"OnlyName"`)
	f.Args(call, 1)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{{Name: "OnlyName"}}, result.Models[0].Attributes)
}

func TestRun_TypeWithoutOpenAttribute(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	call, _ := f.Call(tid, "AddAttribute", "ns3::TypeId")
	f.Cast(call, "ns3::DoubleValue")
	f.Literal(call, `"X"`)
	f.Literal(call, `"Y"`)
	f.Args(call, 3)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{{Name: "X", Description: "Y"}}, result.Models[0].Attributes)
	assert.Zero(t, result.Stats.Types)
}

func TestRun_LiteralCleanup(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	call, _ := f.Call(tid, "AddAttribute", "ns3::TypeId")
	f.Literal(call, "\"Hello\x00\"World\"\"")
	f.Literal(call, `""`)
	f.Cast(call, "ns3::StringValue")
	f.Args(call, 3)
	tu, src := f.Finish()

	result := newExtractor(t).Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{{Name: "HelloWorld", Type: "ns3::StringValue"}}, result.Models[0].Attributes)
}

func TestRun_UnreadableText(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	f.AttributeCall(tid, "Name", "Description", "ns3::DoubleValue")
	tu, _ := f.Finish()

	result := newExtractor(t).Run(tu, asttest.Source{})
	require.Len(t, result.Models, 1)
	assert.Equal(t, []model.Attribute{{Type: "ns3::DoubleValue"}}, result.Models[0].Attributes)
	assert.Equal(t, 2, result.Stats.TextFailures)

	result = newExtractor(t).Run(tu, nil)
	assert.Equal(t, 2, result.Stats.TextFailures)
}

func TestRun_Deterministic(t *testing.T) {
	f := asttest.New("model.cc")
	tid := factory(f, "Queue")
	_, callee := f.AttributeCall(tid, "A", "B", "T")
	f.AttributeCall(callee, "C", "D", "U")
	tu, src := f.Finish()

	e := newExtractor(t)
	var first, second bytes.Buffer
	require.NoError(t, model.Export(&first, e.Run(tu, src).Models, true))
	require.NoError(t, model.Export(&second, e.Run(tu, src).Models, true))
	assert.Equal(t, first.String(), second.String())
}

func TestRun_CustomPatterns(t *testing.T) {
	f := asttest.New("model.cc")
	ns := f.Namespace(f.Root(), "sim")
	method := f.Add(ns, ast.CXXMethod, "Describe", "sim::Info ()")
	f.Builder().SetSemanticParent(method, f.Class("Link"))
	info := f.Add(method, ast.VarDecl, "info", "sim::Info")
	call, _ := f.Call(info, "Field", "sim::Info")
	f.Literal(call, `"Rate"`)
	f.Cast(call, "sim::RateValue")
	f.Args(call, 2)
	tu, src := f.Finish()

	e, err := New(Config{
		Patterns: Patterns{
			Namespace:       "sim",
			FactoryMethod:   "Describe",
			DeclarationType: "sim::Info",
			AttributeCall:   "Field",
			ArgumentCount:   2,
		},
		Logger: util.NopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SetParent", e.Patterns().ParentCall)

	result := e.Run(tu, src)
	require.Len(t, result.Models, 1)
	assert.Equal(t, "Link", result.Models[0].Name)
	assert.Equal(t, []model.Attribute{{Name: "Rate", Type: "sim::RateValue"}}, result.Models[0].Attributes)
}

func TestExtractFile_NoLoader(t *testing.T) {
	_, err := newExtractor(t).ExtractFile(context.Background(), "model.cc")
	assert.Error(t, err)
}

func TestStripLiteral(t *testing.T) {
	assert.Equal(t, "HelloWorld", StripLiteral("\"Hello\x00\"World\"\""))
	assert.Equal(t, "", StripLiteral(`""`))
	assert.Equal(t, "plain", StripLiteral("plain"))
	assert.Equal(t, `a\b`, StripLiteral(`"a\b"`))
}
