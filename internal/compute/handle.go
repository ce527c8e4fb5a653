package compute

import "sync/atomic"

// Resource is the backing memory of a Handle, owned by the client that
// allocated it.
type Resource interface {
	// Size returns the resource size in bytes.
	Size() int
	// Destroy frees the backing memory. Called once, when the last handle
	// referencing the resource is released.
	Destroy()
}

// Handle is an opaque, reference-counted reference to device-resident memory.
// Cloning a handle shares the backing resource; the resource is destroyed
// when the last reference is released.
type Handle struct {
	res      Resource
	refCount *atomic.Int32
}

// NewHandle wraps a freshly allocated resource with reference count 1.
func NewHandle(res Resource) *Handle {
	rc := new(atomic.Int32)
	rc.Store(1)
	return &Handle{res: res, refCount: rc}
}

// Clone returns a new reference to the same resource.
func (h *Handle) Clone() *Handle {
	h.refCount.Add(1)
	return &Handle{res: h.res, refCount: h.refCount}
}

// Release drops this reference and destroys the resource when it was the
// last one.
func (h *Handle) Release() {
	if h.refCount.Add(-1) == 0 {
		h.res.Destroy()
	}
}

// Resource returns the backing resource.
func (h *Handle) Resource() Resource {
	return h.res
}

// Is reports whether two handles reference the same physical memory.
func (h *Handle) Is(other *Handle) bool {
	return h.res == other.res
}
