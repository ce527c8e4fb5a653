// Package fusion implements the just-in-time kernel-fusion core: it takes a
// recorded stream of elementwise tensor operations, resolves every logical
// tensor to device memory, decides which outputs reuse an input buffer and
// which get fresh allocations, packs the shape/stride metadata the device
// kernel reads, and wraps the result into a single executable dispatch.
package fusion

import (
	"github.com/weld-ml/weld/internal/tensor"
)

// TensorID identifies a logical tensor within a fusion stream.
type TensorID uint64

// Status is the read/write status of a tensor at one point of the trace.
type Status int

const (
	// StatusReadOnly marks a tensor that later operations still need.
	StatusReadOnly Status = iota
	// StatusReadWrite marks a tensor consumed by this operation; its buffer
	// may be mutated or reused in place.
	StatusReadWrite
	// StatusNotInit marks a tensor created by this operation.
	StatusNotInit
)

func (s Status) String() string {
	switch s {
	case StatusReadOnly:
		return "read-only"
	case StatusReadWrite:
		return "read-write"
	case StatusNotInit:
		return "not-init"
	default:
		return "unknown"
	}
}

// TensorDescription describes one logical tensor of a trace. It is immutable
// per use; the trace context owns it.
type TensorDescription struct {
	ID     TensorID
	Shape  tensor.Shape
	Status Status
}
