package codegen

import (
	"strings"
	"testing"
)

// addRelu is the two-op graph relu(a + b) over two inputs.
func addRelu() CompilationInfo {
	return CompilationInfo{
		NumInputs: 2,
		Outputs:   []Var{Local(1)},
		Ops: []Op{
			{Kind: OpAdd, A: Input(0), B: Input(1), Out: 0},
			{Kind: OpRelu, A: Local(0), Out: 1},
		},
	}
}

func TestGraphIDDeterministic(t *testing.T) {
	a := addRelu()
	b := addRelu()
	if a.GraphID() != b.GraphID() {
		t.Errorf("identical graphs rendered different ids: %q vs %q", a.GraphID(), b.GraphID())
	}
}

func TestGraphIDDistinguishesStructure(t *testing.T) {
	a := addRelu()

	b := addRelu()
	b.Ops[0].Kind = OpMul
	if a.GraphID() == b.GraphID() {
		t.Error("graphs with different op kinds share an id")
	}

	c := addRelu()
	c.Ops[0].B = ScalarFloat(0)
	c.Scalars.Float = 1
	if a.GraphID() == c.GraphID() {
		t.Error("graphs with different operands share an id")
	}
}

func TestSettingsString(t *testing.T) {
	s := CompilationSettings{
		Vectorization: 4,
		Indexing:      IndexBroadcast,
		RefTensor:     2,
		WorkgroupSize: 256,
	}
	if got := s.String(); got != "v4-bcast-w256-r2-" {
		t.Errorf("String() = %q", got)
	}

	s.Mappings = []InplaceMapping{{InputIndex: 0, OutputIndex: 0}}
	if got := s.String(); got != "v4-bcast-w256-r2-ip0:0-" {
		t.Errorf("String() with mapping = %q", got)
	}
}

func TestSettingsStringDistinguishesVariants(t *testing.T) {
	base := CompilationSettings{Vectorization: 1, Indexing: IndexLinear, WorkgroupSize: 256}

	variants := []CompilationSettings{
		{Vectorization: 4, Indexing: IndexLinear, WorkgroupSize: 256},
		{Vectorization: 1, Indexing: IndexBroadcast, WorkgroupSize: 256},
		{Vectorization: 1, Indexing: IndexLinear, WorkgroupSize: 64},
		{Vectorization: 1, Indexing: IndexLinear, WorkgroupSize: 256, RefTensor: 1},
	}
	for _, v := range variants {
		if v.String() == base.String() {
			t.Errorf("settings %+v render the same identity as %+v", v, base)
		}
	}
}

func TestCompileBindings(t *testing.T) {
	info := addRelu()
	src := NewCompilation(info).Compile(CompilationSettings{
		Vectorization: 1,
		Indexing:      IndexLinear,
		WorkgroupSize: 256,
	})

	// Dispatch order: inputs, array output, metadata.
	wantBindings := []string{
		"@group(0) @binding(0) var<storage, read> in_0: array<f32>;",
		"@group(0) @binding(1) var<storage, read> in_1: array<f32>;",
		"@group(0) @binding(2) var<storage, read_write> out_0: array<f32>;",
		"@group(0) @binding(3) var<storage, read> info: array<u32>;",
	}
	for _, want := range wantBindings {
		if !strings.Contains(src, want) {
			t.Errorf("source missing binding %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "scalars_f32") {
		t.Error("scalar binding emitted for a graph without scalars")
	}
}

func TestCompileInplaceSharesInputBinding(t *testing.T) {
	info := addRelu()
	src := NewCompilation(info).Compile(CompilationSettings{
		Vectorization: 1,
		Indexing:      IndexLinear,
		Mappings:      []InplaceMapping{{InputIndex: 0, OutputIndex: 0}},
		WorkgroupSize: 256,
	})

	if !strings.Contains(src, "@group(0) @binding(0) var<storage, read_write> in_0: array<f32>;") {
		t.Error("inplace-mapped input should be bound read_write")
	}
	if strings.Contains(src, "out_0") {
		t.Error("inplace output should not get a dedicated binding")
	}
	if !strings.Contains(src, "in_0[idx_0] = ") {
		t.Errorf("inplace output should store through the input binding\n%s", src)
	}
}

func TestCompileScalarBindings(t *testing.T) {
	info := CompilationInfo{
		NumInputs: 1,
		Outputs:   []Var{Local(0)},
		Ops: []Op{
			{Kind: OpMul, A: Input(0), B: ScalarFloat(0), Out: 0},
		},
		Scalars: ScalarCount{Float: 1},
	}
	src := NewCompilation(info).Compile(CompilationSettings{Vectorization: 1, Indexing: IndexLinear, WorkgroupSize: 256})

	if !strings.Contains(src, "@group(0) @binding(3) var<storage, read> scalars_f32: array<f32>;") {
		t.Errorf("float scalar binding missing or misplaced\n%s", src)
	}
	if !strings.Contains(src, "scalars_f32[0u]") {
		t.Error("scalar operand not referenced in body")
	}
}

func TestCompileBroadcastIndexing(t *testing.T) {
	info := addRelu()
	src := NewCompilation(info).Compile(CompilationSettings{
		Vectorization: 2,
		Indexing:      IndexBroadcast,
		RefTensor:     2,
		WorkgroupSize: 256,
	})

	if !strings.Contains(src, "fn strided_index(") {
		t.Error("broadcast mode should emit the strided_index helper")
	}
	if !strings.Contains(src, "strided_index(id, 0u, rank)") {
		t.Error("inputs should be addressed through strided_index")
	}
	if !strings.Contains(src, "let id = global_id.x * 2u + v;") {
		t.Error("vectorization factor not applied to the invocation id")
	}
}

func TestCompileLinearSkipsHelper(t *testing.T) {
	src := NewCompilation(addRelu()).Compile(CompilationSettings{
		Vectorization: 1,
		Indexing:      IndexLinear,
		WorkgroupSize: 256,
	})
	if strings.Contains(src, "strided_index") {
		t.Error("linear mode should not emit the broadcast helper")
	}
	if !strings.Contains(src, "let idx_0 = id;") {
		t.Errorf("linear mode should use the flat id directly\n%s", src)
	}
}
