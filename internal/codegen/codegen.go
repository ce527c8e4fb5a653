// Package codegen turns an abstract elementwise operation graph into WGSL
// compute-kernel source. The graph description (CompilationInfo) is fixed
// when a fusion stream is captured; the generation knobs
// (CompilationSettings) vary per kernel variant, so one graph can be
// compiled into several candidate kernels for autotuning.
package codegen

import (
	"fmt"
	"strings"
)

// VarKind discriminates the operand kinds of a fused graph.
type VarKind uint8

// Operand kinds.
const (
	VarInput VarKind = iota
	VarLocal
	VarScalarFloat
	VarScalarInt
)

// Var references a value inside the fused graph: an input tensor element,
// a local produced by an earlier op, or a traced scalar operand.
type Var struct {
	Kind  VarKind
	Index int
}

// Input references input tensor i.
func Input(i int) Var { return Var{Kind: VarInput, Index: i} }

// Local references the local value produced by op i.
func Local(i int) Var { return Var{Kind: VarLocal, Index: i} }

// ScalarFloat references the float scalar operand at trace index i.
func ScalarFloat(i int) Var { return Var{Kind: VarScalarFloat, Index: i} }

// ScalarInt references the int scalar operand at trace index i.
func ScalarInt(i int) Var { return Var{Kind: VarScalarInt, Index: i} }

// OpKind is the operation kind of one fused elementwise op.
type OpKind uint8

// Supported elementwise operations.
const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpExp
	OpLog
	OpSqrt
	OpTanh
	OpRelu
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpExp:
		return "exp"
	case OpLog:
		return "log"
	case OpSqrt:
		return "sqrt"
	case OpTanh:
		return "tanh"
	case OpRelu:
		return "relu"
	default:
		return "unknown"
	}
}

// unary reports whether the op kind ignores its B operand.
func (k OpKind) unary() bool {
	switch k {
	case OpExp, OpLog, OpSqrt, OpTanh, OpRelu:
		return true
	default:
		return false
	}
}

// Op is one operation of the fused graph. The result is stored in local
// slot Out.
type Op struct {
	Kind OpKind
	A    Var
	B    Var
	Out  int
}

// ScalarCount records how many scalar operands of each kind the fused
// stream carries.
type ScalarCount struct {
	Float int
	Int   int
}

// CompilationInfo is the immutable description of an abstract op graph.
// It is positional: tensors are referenced by input/output index, never by
// tensor id, so two traces with the same structure share one description.
type CompilationInfo struct {
	NumInputs int
	Outputs   []Var // value stored to each output, in output order
	Ops       []Op
	Scalars   ScalarCount
}

// GraphID renders the structural identity of the graph. It is the base part
// of a kernel's identity string: the same for all settings variants, and for
// all traces that differ only in tensor ids.
func (c *CompilationInfo) GraphID() string {
	var b strings.Builder
	fmt.Fprintf(&b, "elemwise-i%d-o%d", c.NumInputs, len(c.Outputs))
	for _, op := range c.Ops {
		fmt.Fprintf(&b, "-%s.%s", op.Kind, varToken(op.A))
		if !op.Kind.unary() {
			fmt.Fprintf(&b, ".%s", varToken(op.B))
		}
	}
	for _, out := range c.Outputs {
		fmt.Fprintf(&b, "-w%s", varToken(out))
	}
	return b.String()
}

func varToken(v Var) string {
	switch v.Kind {
	case VarInput:
		return fmt.Sprintf("i%d", v.Index)
	case VarLocal:
		return fmt.Sprintf("l%d", v.Index)
	case VarScalarFloat:
		return fmt.Sprintf("sf%d", v.Index)
	case VarScalarInt:
		return fmt.Sprintf("si%d", v.Index)
	default:
		return "?"
	}
}
