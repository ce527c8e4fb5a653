package fusion

import "fmt"

// HandleRegistry maps logical tensor ids to their physical bindings. It is
// the only mutable shared state of the fusion core; every mutation site
// receives the registry explicitly (through the Context) so registration
// order stays auditable.
type HandleRegistry struct {
	handles map[TensorID]FusionHandle
}

// NewHandleRegistry creates an empty registry.
func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{handles: make(map[TensorID]FusionHandle)}
}

// GetHandle resolves the physical handle for a tensor id.
//
// With StatusReadOnly the registry keeps the canonical binding and hands out
// a cloned reference the caller must not mutate through. With
// StatusReadWrite the binding is taken out of the registry: the caller owns
// the buffer and may mutate or reuse it in place.
//
// A missing id means the trace is malformed; that is a programming-invariant
// violation, not a recoverable error.
func (r *HandleRegistry) GetHandle(id TensorID, status Status) FusionHandle {
	h, ok := r.handles[id]
	if !ok {
		panic(fmt.Sprintf("fusion: no handle registered for tensor %d (malformed trace)", id))
	}
	if status == StatusReadWrite {
		delete(r.handles, id)
		return h
	}
	return h.Clone()
}

// RegisterHandle installs or overwrites the binding for a tensor id, after a
// kernel produced a new or aliased output. The replaced binding, if any, is
// released.
func (r *HandleRegistry) RegisterHandle(id TensorID, handle FusionHandle) {
	if old, ok := r.handles[id]; ok {
		old.Handle.Release()
	}
	r.handles[id] = handle
}

// Has reports whether a binding exists for the tensor id.
func (r *HandleRegistry) Has(id TensorID) bool {
	_, ok := r.handles[id]
	return ok
}

// Lookup returns the canonical binding without touching ownership. Intended
// for inspection (autotune signatures, tests), not for dispatch.
func (r *HandleRegistry) Lookup(id TensorID) (FusionHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Len returns the number of registered bindings.
func (r *HandleRegistry) Len() int {
	return len(r.handles)
}
