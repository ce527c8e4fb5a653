// Package compute defines the device-agnostic contracts between the fusion
// engine and a compute backend: the client that owns device memory and
// dispatches work, the kernel objects it executes, and the reference-counted
// handles to device-resident buffers.
package compute

// WorkGroup is the launch-dimension configuration for one kernel dispatch.
type WorkGroup struct {
	X uint32
	Y uint32
	Z uint32
}

// Kernel is a compute kernel ready for dispatch.
//
// Source is expected to be lazy: a client caches compiled modules by ID and
// calls Source only on a cache miss, so identical kernels compile once.
type Kernel interface {
	// Source returns the kernel source text.
	Source() string
	// ID returns the kernel identity string. Kernels with equal IDs must
	// produce equal source.
	ID() string
	// Workgroup returns the launch dimensions.
	Workgroup() WorkGroup
}

// Client owns device memory and submits kernels for execution.
// Dispatch is fire-and-forget: Execute returns once the work is submitted,
// not once the device has completed it.
type Client interface {
	// Create allocates a device buffer initialized with data.
	Create(data []byte) (*Handle, error)
	// Empty allocates an uninitialized device buffer of size 4-byte elements.
	Empty(size int) (*Handle, error)
	// Execute dispatches the kernel with the given buffers bound in order.
	Execute(kernel Kernel, handles []*Handle) error
	// Clone returns a client sharing the same device and caches.
	Clone() Client
}
