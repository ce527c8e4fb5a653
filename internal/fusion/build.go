package fusion

import (
	"fmt"

	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/tensor"
)

// Build resolves a trace into a single dispatchable kernel.
//
// Inputs are bound to their physical handles, the per-tensor shape/stride
// metadata buffer is packed, each output is either aliased onto an input
// buffer or freshly allocated per the factory's decision, and every produced
// handle is registered back into the shared registry so later trace
// segments observe the effect. No device call is made until every handle
// has resolved; an allocation failure aborts the build before dispatch.
//
// stateful must be false for autotune probing: input statuses are then
// forced to read-only so probing never mutates caller state.
func Build(factory KernelFactory, trace *Trace, ctx *Context, device tensor.Device, client compute.Client, stateful bool) (*ExecutableKernel, error) {
	handleInputs, inputs, outputs := processInputsOutputs(trace, ctx, stateful)

	kernel := factory.Create(handleInputs, inputs, outputs, stateful)

	rank := fusedRank(inputs, outputs)

	numTensors := len(inputs) + len(outputs)
	// The buffer starts with the rank, then each tensor's strides and shape.
	infoSize := numTensors*rank*2 + 1

	numHandles := numTensors + 1
	if trace.Scalars.Float > 0 {
		numHandles++
	}
	if trace.Scalars.Int > 0 {
		numHandles++
	}

	info := make([]uint32, 0, infoSize)
	handles := make([]*compute.Handle, 0, numHandles)
	outputRegister := make([]outputRegistration, 0, len(outputs))

	// Roll back every transient reference if the build aborts before any
	// device call is made for this dispatch.
	abort := func(cause error) error {
		for _, h := range handles {
			h.Release()
		}
		for _, reg := range outputRegister {
			reg.handle.Handle.Release()
		}
		return cause
	}

	for i, handle := range handleInputs {
		registerTensorWords(&info, inputs[i].Shape, handle.Strides, rank)
		handles = append(handles, handle.Handle)
	}

	for i, out := range outputs {
		outputInfo := kernel.Outputs()[i]
		switch outputInfo.Kind {
		case OutputInplace:
			// Reuse the input buffer: no dispatch handle, no metadata entry.
			aliased := FusionHandle{
				Client:  client,
				Device:  device,
				Strides: out.Shape.ComputeStrides(),
				Handle:  handles[outputInfo.InputIndex].Clone(),
			}
			outputRegister = append(outputRegister, outputRegistration{out.ID, aliased})
		case OutputArray:
			buffer, err := client.Empty(outputInfo.Size)
			if err != nil {
				return nil, abort(fmt.Errorf("fusion: allocate output tensor %d: %w", out.ID, err))
			}
			fresh := FusionHandle{
				Client:  client,
				Device:  device,
				Strides: out.Shape.ComputeStrides(),
				Handle:  buffer,
			}
			registerTensorWords(&info, out.Shape, fresh.Strides, rank)
			handles = append(handles, buffer)
			outputRegister = append(outputRegister, outputRegistration{out.ID, FusionHandle{
				Client:  client,
				Device:  device,
				Strides: fresh.Strides,
				Handle:  buffer.Clone(),
			}})
		default:
			panic("fusion: unknown output kind")
		}
	}

	infoHandle, err := client.Create(compute.PackWords(info))
	if err != nil {
		return nil, abort(fmt.Errorf("fusion: create metadata buffer: %w", err))
	}
	handles = append(handles, infoHandle)

	if n := trace.Scalars.Float; n > 0 {
		h, err := client.Create(compute.PackFloats(ctx.ScalarFloats(n)))
		if err != nil {
			return nil, abort(fmt.Errorf("fusion: create float scalar buffer: %w", err))
		}
		handles = append(handles, h)
	}
	if n := trace.Scalars.Int; n > 0 {
		h, err := client.Create(compute.PackInts(ctx.ScalarInts(n)))
		if err != nil {
			return nil, abort(fmt.Errorf("fusion: create int scalar buffer: %w", err))
		}
		handles = append(handles, h)
	}

	// Commit the produced handles so later trace segments see them, in
	// program order matching the trace.
	for _, reg := range outputRegister {
		ctx.Handles.RegisterHandle(reg.id, reg.handle)
	}

	return NewExecutableKernel(kernel, handles, client), nil
}

// outputRegistration is a produced or aliased output awaiting commit into
// the registry.
type outputRegistration struct {
	id     TensorID
	handle FusionHandle
}

// processInputsOutputs resolves each input to its physical handle and
// refreshes the descriptions from the context.
//
// When stateful, the trace's recorded status is honored rather than the
// registry's view: the same tensor id may carry a later status further down
// the stream, and reusing that would free a buffer still needed here. When
// not stateful (autotune probing), read-only is forced.
func processInputsOutputs(trace *Trace, ctx *Context, stateful bool) (handleInputs []FusionHandle, inputs, outputs []TensorDescription) {
	handleInputs = make([]FusionHandle, 0, len(trace.Inputs))
	inputs = make([]TensorDescription, 0, len(trace.Inputs))
	outputs = make([]TensorDescription, 0, len(trace.Outputs))

	for _, traced := range trace.Inputs {
		status := traced.Status
		if !stateful {
			status = StatusReadOnly
		}

		desc := ctx.Tensor(traced.ID)
		handleInputs = append(handleInputs, ctx.Handles.GetHandle(traced.ID, status))
		inputs = append(inputs, desc)
	}

	for _, traced := range trace.Outputs {
		outputs = append(outputs, ctx.Tensor(traced.ID))
	}

	return handleInputs, inputs, outputs
}

// fusedRank is the padded rank shared by every tensor of the fused kernel:
// the maximum rank among inputs and outputs, at least 1 (scalar case).
func fusedRank(inputs, outputs []TensorDescription) int {
	rank := 1
	for _, in := range inputs {
		if len(in.Shape) > rank {
			rank = len(in.Shape)
		}
	}
	for _, out := range outputs {
		if len(out.Shape) > rank {
			rank = len(out.Shape)
		}
	}
	return rank
}

// registerTensorWords appends one tensor's metadata entry: rank stride words
// then rank shape words, both padded at the front up to the fused rank so
// lower-rank tensors broadcast (stride 0, dimension 1). The very first entry
// is preceded by the shared rank word.
func registerTensorWords(info *[]uint32, shape tensor.Shape, strides []int, rank int) {
	if len(*info) == 0 {
		*info = append(*info, uint32(rank)) //nolint:gosec // G115: rank is small and non-negative
	}

	pad := rank - len(shape)
	for i := 0; i < pad; i++ {
		*info = append(*info, 0)
	}
	for _, s := range strides {
		*info = append(*info, uint32(s)) //nolint:gosec // G115: strides are non-negative
	}
	for i := 0; i < pad; i++ {
		*info = append(*info, 1)
	}
	for _, d := range shape {
		*info = append(*info, uint32(d)) //nolint:gosec // G115: dimensions are positive
	}
}
