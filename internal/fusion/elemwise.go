package fusion

import (
	"github.com/weld-ml/weld/internal/codegen"
	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/tensor"
)

// ElemwiseFactory builds fused elementwise kernels for one op graph. Each
// factory instance is one variant of the closed strategy set: the same graph
// at a different vectorization width. An autotuner probes several factories
// and keeps the fastest.
type ElemwiseFactory struct {
	info          codegen.CompilationInfo
	baseID        string
	vectorization int
	workgroupSize int
}

// NewElemwiseFactory creates a factory for the graph at the given
// vectorization width.
func NewElemwiseFactory(info codegen.CompilationInfo, vectorization int) *ElemwiseFactory {
	if vectorization <= 0 {
		vectorization = 1
	}
	return &ElemwiseFactory{
		info:          info,
		baseID:        info.GraphID(),
		vectorization: vectorization,
		workgroupSize: codegen.DefaultWorkgroupSize,
	}
}

// Create decides the runtime layout of one kernel instance: which outputs
// reuse an input buffer, which indexing mode applies, and the launch shape.
func (f *ElemwiseFactory) Create(handleInputs []FusionHandle, inputs, outputs []TensorDescription, stateful bool) *FusionKernel {
	outputInfos := make([]OutputInfo, len(outputs))
	var mappings []codegen.InplaceMapping
	claimed := make(map[int]bool, len(inputs))

	for o, out := range outputs {
		in := -1
		if stateful {
			in = f.inplaceCandidate(handleInputs, inputs, out, claimed)
		}
		if in >= 0 {
			claimed[in] = true
			outputInfos[o] = InplaceOutput(in)
			mappings = append(mappings, codegen.InplaceMapping{InputIndex: in, OutputIndex: o})
		} else {
			outputInfos[o] = ArrayOutput(out.Shape.NumElements())
		}
	}

	ref, refShape := referenceEntry(inputs, outputs, outputInfos)

	indexing := codegen.IndexBroadcast
	if uniformLayout(handleInputs, inputs, outputs, refShape) {
		indexing = codegen.IndexLinear
	}

	total := refShape.NumElements()
	perWorkgroup := f.workgroupSize * f.vectorization
	workgroup := compute.WorkGroup{
		X: uint32((total + perWorkgroup - 1) / perWorkgroup), //nolint:gosec // G115: workgroup count is non-negative
		Y: 1,
		Z: 1,
	}

	settings := codegen.CompilationSettings{
		Vectorization: f.vectorization,
		Indexing:      indexing,
		Mappings:      mappings,
		RefTensor:     ref,
		WorkgroupSize: f.workgroupSize,
	}
	return NewFusionKernel(f.baseID, f.info, settings, outputInfos, workgroup)
}

// inplaceCandidate finds an input whose buffer the output may reuse: the
// trace must have consumed it (read-write status), the shapes must match,
// and the layout must be contiguous.
func (f *ElemwiseFactory) inplaceCandidate(handleInputs []FusionHandle, inputs []TensorDescription, out TensorDescription, claimed map[int]bool) int {
	for i, in := range inputs {
		if claimed[i] || in.Status != StatusReadWrite {
			continue
		}
		if !in.Shape.Equal(out.Shape) {
			continue
		}
		if !contiguousStrides(handleInputs[i].Strides, in.Shape.ComputeStrides()) {
			continue
		}
		return i
	}
	return -1
}

// referenceEntry picks the metadata entry whose layout defines the fused
// iteration space: the first array output, else the entry aliased by the
// first inplace output, else the first input.
func referenceEntry(inputs, outputs []TensorDescription, outputInfos []OutputInfo) (int, tensor.Shape) {
	entry := len(inputs)
	for o, info := range outputInfos {
		if info.Kind == OutputArray {
			return entry, outputs[o].Shape
		}
	}
	if len(outputInfos) > 0 {
		in := outputInfos[0].InputIndex
		return in, inputs[in].Shape
	}
	if len(inputs) > 0 {
		return 0, inputs[0].Shape
	}
	return 0, tensor.Shape{1}
}

// uniformLayout reports whether every tensor shares the reference shape with
// contiguous strides, enabling linear indexing.
func uniformLayout(handleInputs []FusionHandle, inputs, outputs []TensorDescription, ref tensor.Shape) bool {
	refStrides := ref.ComputeStrides()
	for i, in := range inputs {
		if !in.Shape.Equal(ref) || !contiguousStrides(handleInputs[i].Strides, refStrides) {
			return false
		}
	}
	for _, out := range outputs {
		if !out.Shape.Equal(ref) {
			return false
		}
	}
	return true
}

func contiguousStrides(strides, want []int) bool {
	if len(strides) != len(want) {
		return false
	}
	for i := range strides {
		if strides[i] != want[i] {
			return false
		}
	}
	return true
}
