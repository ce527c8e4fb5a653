package codegen

import (
	"fmt"
	"strings"
)

// Compilation compiles an abstract op graph under one settings variant.
// The graph is first lowered to an intermediate binding/body form, then the
// WGSL pass renders the final source text.
type Compilation struct {
	info CompilationInfo
}

// NewCompilation creates a compilation for the given graph description.
func NewCompilation(info CompilationInfo) Compilation {
	return Compilation{info: info}
}

// Compile lowers the graph and renders WGSL source.
func (c Compilation) Compile(settings CompilationSettings) string {
	if settings.Vectorization <= 0 {
		settings.Vectorization = 1
	}
	if settings.WorkgroupSize <= 0 {
		settings.WorkgroupSize = DefaultWorkgroupSize
	}
	return c.lower(settings).render()
}

// binding is one buffer binding of the compiled kernel, in dispatch order.
type binding struct {
	name      string
	elemType  string
	readWrite bool
}

// compiled is the intermediate form between graph lowering and the WGSL
// rendering pass.
type compiled struct {
	bindings []binding
	body     []string
	settings CompilationSettings
}

// lower assigns bindings in dispatch-handle order (inputs, array outputs,
// metadata, scalar blocks) and emits the per-element body.
func (c Compilation) lower(settings CompilationSettings) compiled {
	info := c.info

	inplaceByOutput := make(map[int]int, len(settings.Mappings))
	mappedInputs := make(map[int]bool, len(settings.Mappings))
	for _, m := range settings.Mappings {
		inplaceByOutput[m.OutputIndex] = m.InputIndex
		mappedInputs[m.InputIndex] = true
	}

	var out compiled
	out.settings = settings

	for i := 0; i < info.NumInputs; i++ {
		out.bindings = append(out.bindings, binding{
			name:      fmt.Sprintf("in_%d", i),
			elemType:  "f32",
			readWrite: mappedInputs[i],
		})
	}

	// Metadata entry index per tensor: inputs first, then array outputs in
	// output order. Inplace outputs share their input's entry.
	entryOf := make([]int, len(info.Outputs))
	arrayOutputs := make([]int, 0, len(info.Outputs))
	next := info.NumInputs
	for o := range info.Outputs {
		if in, ok := inplaceByOutput[o]; ok {
			entryOf[o] = in
			continue
		}
		entryOf[o] = next
		next++
		arrayOutputs = append(arrayOutputs, o)
		out.bindings = append(out.bindings, binding{
			name:      fmt.Sprintf("out_%d", o),
			elemType:  "f32",
			readWrite: true,
		})
	}

	out.bindings = append(out.bindings, binding{name: "info", elemType: "u32"})
	if info.Scalars.Float > 0 {
		out.bindings = append(out.bindings, binding{name: "scalars_f32", elemType: "f32"})
	}
	if info.Scalars.Int > 0 {
		out.bindings = append(out.bindings, binding{name: "scalars_i32", elemType: "i32"})
	}

	out.body = c.emitBody(settings, entryOf, inplaceByOutput)
	return out
}

// emitBody produces the per-element statements: one index per distinct
// metadata entry, one local per op, one store per output.
func (c Compilation) emitBody(settings CompilationSettings, entryOf []int, inplaceByOutput map[int]int) []string {
	info := c.info
	var body []string

	emitted := make(map[int]bool)
	index := func(entry int) string {
		name := fmt.Sprintf("idx_%d", entry)
		if emitted[entry] {
			return name
		}
		emitted[entry] = true
		if settings.Indexing == IndexLinear {
			body = append(body, fmt.Sprintf("let %s = id;", name))
		} else {
			body = append(body, fmt.Sprintf("let %s = strided_index(id, %du, rank);", name, entry))
		}
		return name
	}

	operand := func(v Var) string {
		switch v.Kind {
		case VarInput:
			return fmt.Sprintf("in_%d[%s]", v.Index, index(v.Index))
		case VarLocal:
			return fmt.Sprintf("l%d", v.Index)
		case VarScalarFloat:
			return fmt.Sprintf("scalars_f32[%du]", v.Index)
		case VarScalarInt:
			return fmt.Sprintf("f32(scalars_i32[%d])", v.Index)
		default:
			panic("codegen: unknown operand kind")
		}
	}

	for _, op := range info.Ops {
		a := operand(op.A)
		var expr string
		switch op.Kind {
		case OpAdd:
			expr = fmt.Sprintf("%s + %s", a, operand(op.B))
		case OpSub:
			expr = fmt.Sprintf("%s - %s", a, operand(op.B))
		case OpMul:
			expr = fmt.Sprintf("%s * %s", a, operand(op.B))
		case OpDiv:
			expr = fmt.Sprintf("%s / %s", a, operand(op.B))
		case OpExp:
			expr = fmt.Sprintf("exp(%s)", a)
		case OpLog:
			expr = fmt.Sprintf("log(%s)", a)
		case OpSqrt:
			expr = fmt.Sprintf("sqrt(%s)", a)
		case OpTanh:
			expr = fmt.Sprintf("tanh(%s)", a)
		case OpRelu:
			expr = fmt.Sprintf("max(%s, 0.0)", a)
		default:
			panic("codegen: unknown op kind")
		}
		body = append(body, fmt.Sprintf("let l%d = %s;", op.Out, expr))
	}

	for o, v := range info.Outputs {
		value := operand(v)
		if in, ok := inplaceByOutput[o]; ok {
			body = append(body, fmt.Sprintf("in_%d[%s] = %s;", in, index(in), value))
		} else {
			body = append(body, fmt.Sprintf("out_%d[%s] = %s;", o, index(entryOf[o]), value))
		}
	}
	return body
}

// render is the WGSL pass: bindings, the broadcast index helper, and the
// vectorized main loop.
func (c compiled) render() string {
	var b strings.Builder

	for i, bind := range c.bindings {
		access := "read"
		if bind.readWrite {
			access = "read_write"
		}
		fmt.Fprintf(&b, "@group(0) @binding(%d) var<storage, %s> %s: array<%s>;\n", i, access, bind.name, bind.elemType)
	}
	b.WriteString("\n")

	if c.settings.Indexing == IndexBroadcast {
		fmt.Fprintf(&b, `fn strided_index(id: u32, t: u32, rank: u32) -> u32 {
    let ref_base = 1u + %du * 2u * rank;
    let base = 1u + t * 2u * rank;
    var offset = 0u;
    var remaining = id;
    for (var d = 0u; d < rank; d = d + 1u) {
        let coord = remaining / info[ref_base + d];
        remaining = remaining %% info[ref_base + d];
        offset = offset + (coord %% info[base + rank + d]) * info[base + d];
    }
    return offset;
}

`, c.settings.RefTensor)
	}

	fmt.Fprintf(&b, "@compute @workgroup_size(%d)\n", c.settings.WorkgroupSize)
	b.WriteString("fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {\n")
	b.WriteString("    let rank = info[0u];\n")
	fmt.Fprintf(&b, "    let ref_base = 1u + %du * 2u * rank;\n", c.settings.RefTensor)
	b.WriteString("    var total = 1u;\n")
	b.WriteString("    for (var d = 0u; d < rank; d = d + 1u) {\n")
	b.WriteString("        total = total * info[ref_base + rank + d];\n")
	b.WriteString("    }\n")
	fmt.Fprintf(&b, "    for (var v = 0u; v < %du; v = v + 1u) {\n", c.settings.Vectorization)
	fmt.Fprintf(&b, "        let id = global_id.x * %du + v;\n", c.settings.Vectorization)
	b.WriteString("        if (id >= total) {\n            break;\n        }\n")
	for _, line := range c.body {
		b.WriteString("        ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}
