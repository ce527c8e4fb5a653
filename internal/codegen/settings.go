package codegen

import (
	"fmt"
	"strings"
)

// IndexingMode selects how a kernel maps its flat invocation id to tensor
// elements.
type IndexingMode int

const (
	// IndexLinear addresses every tensor with the flat id directly. Valid
	// only when all tensors are contiguous and share one shape.
	IndexLinear IndexingMode = iota
	// IndexBroadcast decomposes the flat id through the reference tensor's
	// strides and re-projects it per tensor, honoring broadcast metadata.
	IndexBroadcast
)

func (m IndexingMode) String() string {
	switch m {
	case IndexLinear:
		return "lin"
	case IndexBroadcast:
		return "bcast"
	default:
		return "unknown"
	}
}

// InplaceMapping declares that output OutputIndex writes into the buffer of
// input InputIndex instead of a dedicated output binding.
type InplaceMapping struct {
	InputIndex  int
	OutputIndex int
}

// CompilationSettings are the generation knobs for one kernel variant.
// Rendering the settings (String) is part of the kernel identity, so two
// variants with different settings never collide in a compilation cache.
type CompilationSettings struct {
	// Vectorization is the number of elements processed per invocation.
	Vectorization int
	// Indexing selects the id-to-element mapping.
	Indexing IndexingMode
	// Mappings lists the inplace output bindings.
	Mappings []InplaceMapping
	// RefTensor is the metadata entry whose layout defines the fused
	// iteration space, in broadcast mode.
	RefTensor int
	// WorkgroupSize is the number of invocations per workgroup.
	WorkgroupSize int
}

// Default generation knobs.
const DefaultWorkgroupSize = 256

// String renders the settings for kernel identity.
func (s CompilationSettings) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "v%d-%s-w%d-r%d", s.Vectorization, s.Indexing, s.WorkgroupSize, s.RefTensor)
	for _, m := range s.Mappings {
		fmt.Fprintf(&b, "-ip%d:%d", m.InputIndex, m.OutputIndex)
	}
	b.WriteString("-")
	return b.String()
}
