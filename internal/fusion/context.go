package fusion

import "fmt"

// MaxScalars is the fixed capacity of the per-stream scalar operand buffers.
// Scalar indices are assigned at trace time and embedded in the generated
// kernel, so the capacity is part of the trace contract.
const MaxScalars = 64

// Context is the per-execution-stream store: tensor descriptions keyed by
// id, the pending scalar operands, and the handle registry. Its lifetime is
// one fusion-stream flush; Reset clears it for the next stream.
type Context struct {
	tensors      map[TensorID]TensorDescription
	scalarFloats []float32
	scalarInts   []int32

	// Handles is the shared tensor handle registry. It survives Reset:
	// registered buffers outlive individual streams.
	Handles *HandleRegistry
}

// NewContext creates a context around the given registry.
func NewContext(handles *HandleRegistry) *Context {
	return &Context{
		tensors:      make(map[TensorID]TensorDescription),
		scalarFloats: make([]float32, 0, MaxScalars),
		scalarInts:   make([]int32, 0, MaxScalars),
		Handles:      handles,
	}
}

// RegisterTensor records a tensor description for the current stream.
func (c *Context) RegisterTensor(desc TensorDescription) {
	c.tensors[desc.ID] = desc
}

// Tensor returns the current description for a tensor id. A missing id is a
// malformed trace.
func (c *Context) Tensor(id TensorID) TensorDescription {
	desc, ok := c.tensors[id]
	if !ok {
		panic(fmt.Sprintf("fusion: tensor %d not in context (malformed trace)", id))
	}
	return desc
}

// PushScalarFloat appends a pending float scalar operand and returns its
// trace index.
func (c *Context) PushScalarFloat(v float32) int {
	if len(c.scalarFloats) == MaxScalars {
		panic("fusion: float scalar capacity exceeded")
	}
	c.scalarFloats = append(c.scalarFloats, v)
	return len(c.scalarFloats) - 1
}

// PushScalarInt appends a pending int scalar operand and returns its trace
// index.
func (c *Context) PushScalarInt(v int32) int {
	if len(c.scalarInts) == MaxScalars {
		panic("fusion: int scalar capacity exceeded")
	}
	c.scalarInts = append(c.scalarInts, v)
	return len(c.scalarInts) - 1
}

// ScalarFloats returns the first n valid float scalar values.
func (c *Context) ScalarFloats(n int) []float32 {
	return c.scalarFloats[:n]
}

// ScalarInts returns the first n valid int scalar values.
func (c *Context) ScalarInts(n int) []int32 {
	return c.scalarInts[:n]
}

// Reset clears the per-stream state after a dispatch. The handle registry
// is shared across streams and is left untouched.
func (c *Context) Reset() {
	clear(c.tensors)
	c.scalarFloats = c.scalarFloats[:0]
	c.scalarInts = c.scalarInts[:0]
}
