package fusion

import (
	"github.com/weld-ml/weld/internal/compute"
)

// ExecutableKernel is a fully resolved kernel ready for one dispatch. It is
// single-use: Execute consumes the handle list.
type ExecutableKernel struct {
	kernel  compute.Kernel
	handles []*compute.Handle
	client  compute.Client
}

// NewExecutableKernel bundles a kernel with its ordered handle list and the
// client that dispatches it.
func NewExecutableKernel(kernel compute.Kernel, handles []*compute.Handle, client compute.Client) *ExecutableKernel {
	return &ExecutableKernel{kernel: kernel, handles: handles, client: client}
}

// Execute dispatches the kernel once and releases the handle list. Calling
// Execute twice, or after ToAutotunable, is a programming error.
func (e *ExecutableKernel) Execute() error {
	if e.handles == nil {
		panic("fusion: executable kernel already consumed")
	}
	err := e.client.Execute(e.kernel, e.handles)
	for _, h := range e.handles {
		h.Release()
	}
	e.handles = nil
	return err
}

// AutotunableKernel is the benchmarkable counterpart of ExecutableKernel:
// the kernel object is shared so Clone can produce independent execution
// units without re-resolving tensors, letting a benchmarking harness
// dispatch the same logical operation many times.
type AutotunableKernel struct {
	kernel  compute.Kernel
	handles []*compute.Handle
	client  compute.Client
}

// ToAutotunable converts an executable kernel into an autotunable one. The
// conversion is always legal; it only gives up the kernel's unique
// ownership, consuming the executable.
func ToAutotunable(e *ExecutableKernel) *AutotunableKernel {
	if e.handles == nil {
		panic("fusion: executable kernel already consumed")
	}
	a := &AutotunableKernel{kernel: e.kernel, handles: e.handles, client: e.client}
	e.handles = nil
	return a
}

// Clone produces an independent execution unit: a new reference for every
// handle, the shared kernel object, the shared client. O(handle count); no
// device memory is copied.
func (a *AutotunableKernel) Clone() *AutotunableKernel {
	handles := make([]*compute.Handle, len(a.handles))
	for i, h := range a.handles {
		handles[i] = h.Clone()
	}
	return &AutotunableKernel{kernel: a.kernel, handles: handles, client: a.client}
}

// Execute dispatches once and releases this unit's handle references.
func (a *AutotunableKernel) Execute() error {
	if a.handles == nil {
		panic("fusion: autotunable kernel already consumed")
	}
	err := a.client.Execute(a.kernel, a.handles)
	a.release()
	return err
}

// Release drops the handle references without dispatching. Used for the
// template unit after benchmarking its clones.
func (a *AutotunableKernel) Release() {
	if a.handles != nil {
		a.release()
	}
}

// Handles exposes the ordered handle list for structural inspection.
func (a *AutotunableKernel) Handles() []*compute.Handle {
	return a.handles
}

// Kernel returns the shared kernel object.
func (a *AutotunableKernel) Kernel() compute.Kernel {
	return a.kernel
}

func (a *AutotunableKernel) release() {
	for _, h := range a.handles {
		h.Release()
	}
	a.handles = nil
}
