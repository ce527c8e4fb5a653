package fusion

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/weld-ml/weld/internal/codegen"
	"github.com/weld-ml/weld/internal/compute"
)

// OutputKind discriminates how one kernel output is materialized.
type OutputKind int

const (
	// OutputInplace aliases an input's physical buffer; no new allocation.
	OutputInplace OutputKind = iota
	// OutputArray allocates a fresh buffer.
	OutputArray
)

// OutputInfo is the per-output runtime decision, made once per kernel
// variant at build time and immutable afterward.
type OutputInfo struct {
	Kind OutputKind
	// InputIndex is the aliased input for OutputInplace.
	InputIndex int
	// Size is the element count to allocate for OutputArray.
	Size int
}

// InplaceOutput marks an output as aliasing input inputIndex.
func InplaceOutput(inputIndex int) OutputInfo {
	return OutputInfo{Kind: OutputInplace, InputIndex: inputIndex}
}

// ArrayOutput marks an output as a fresh allocation of size elements.
func ArrayOutput(size int) OutputInfo {
	return OutputInfo{Kind: OutputArray, Size: size}
}

// Trace is the ordered record of one fusible operation stream: the tensors
// it reads and writes, and how many scalar operands it carries.
type Trace struct {
	Inputs  []TensorDescription
	Outputs []TensorDescription
	Scalars codegen.ScalarCount
}

// KernelFactory is the pluggable strategy that, given resolved input
// handles and tensor descriptions, chooses or builds the concrete kernel
// variant (vectorization, inplace mappings, launch shape).
//
// stateful must be false when probing for autotune, so the factory never
// plans an inplace output that would mutate caller state.
type KernelFactory interface {
	Create(handleInputs []FusionHandle, inputs, outputs []TensorDescription, stateful bool) *FusionKernel
}

// FusionKernel is a fused kernel: the abstract graph plus one settings
// variant. Source text is generated lazily, on the first Source call, and
// cached on the kernel; a device client additionally caches compiled
// modules by ID so identical graphs compile once.
type FusionKernel struct {
	baseID    string // same for all settings variants of one graph
	info      codegen.CompilationInfo
	settings  codegen.CompilationSettings
	outputs   []OutputInfo
	workgroup compute.WorkGroup

	compileOnce sync.Once
	source      string
}

// NewFusionKernel bundles a graph description with one settings variant and
// the per-output runtime decisions.
func NewFusionKernel(baseID string, info codegen.CompilationInfo, settings codegen.CompilationSettings, outputs []OutputInfo, workgroup compute.WorkGroup) *FusionKernel {
	return &FusionKernel{
		baseID:    baseID,
		info:      info,
		settings:  settings,
		outputs:   outputs,
		workgroup: workgroup,
	}
}

// Source generates the kernel source text. Generation runs once; the result
// is cached on the kernel.
func (k *FusionKernel) Source() string {
	k.compileOnce.Do(func() {
		log.Info().Str("kernel", k.ID()).Msg("compiling")
		k.source = codegen.NewCompilation(k.info).Compile(k.settings)
	})
	return k.source
}

// ID returns the kernel identity string: the settings rendering followed by
// the graph's base id. Identical fused graphs with identical settings yield
// identical ids.
func (k *FusionKernel) ID() string {
	return k.settings.String() + k.baseID
}

// Workgroup returns the launch dimensions.
func (k *FusionKernel) Workgroup() compute.WorkGroup {
	return k.workgroup
}

// Outputs returns the per-output runtime decisions, in output order.
func (k *FusionKernel) Outputs() []OutputInfo {
	return k.outputs
}
