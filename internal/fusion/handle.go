package fusion

import (
	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/tensor"
)

// FusionHandle is the physical binding of a logical tensor: device memory,
// element strides, and the client that owns the memory. The registry holds
// the canonical reference; in-flight kernels hold transient clones for the
// duration of one dispatch.
type FusionHandle struct {
	Client  compute.Client
	Device  tensor.Device
	Strides []int
	Handle  *compute.Handle
}

// Clone returns a handle sharing the same device buffer with its own
// reference.
func (h FusionHandle) Clone() FusionHandle {
	strides := make([]int, len(h.Strides))
	copy(strides, h.Strides)
	return FusionHandle{
		Client:  h.Client,
		Device:  h.Device,
		Strides: strides,
		Handle:  h.Handle.Clone(),
	}
}
