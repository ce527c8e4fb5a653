// Copyright 2026 Weld ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fusion provides the public API for just-in-time kernel fusion in
// the Weld ML framework.
//
// A fused kernel is built from a captured trace of element-wise operations,
// resolved against the registered tensor handles, and dispatched as a single
// compute pass:
//
//	ctx := fusion.NewContext()
//	// ... register tensors and handles while recording the trace ...
//	factory := fusion.NewElemwiseFactory(info, 4)
//	kernel, err := fusion.Build(factory, trace, ctx, device, client, true)
//	if err != nil {
//		return err
//	}
//	kernel.Execute()
package fusion

import (
	"github.com/weld-ml/weld/internal/codegen"
	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/fusion"
	"github.com/weld-ml/weld/internal/tensor"
)

// Type aliases for public API

// Device represents the compute device for tensor operations.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Client owns device memory and dispatches fused kernels.
type Client = compute.Client

// Handle is a reference-counted reference to device-resident memory.
type Handle = compute.Handle

// CompilationInfo is the abstract description of a fused op graph.
type CompilationInfo = codegen.CompilationInfo

// TensorID uniquely identifies a tensor within a fusion stream.
type TensorID = fusion.TensorID

// Status describes how a traced operation uses a tensor.
type Status = fusion.Status

// Status constants.
const (
	StatusReadOnly  Status = fusion.StatusReadOnly
	StatusReadWrite Status = fusion.StatusReadWrite
	StatusNotInit   Status = fusion.StatusNotInit
)

// TensorDescription is the trace-level view of a tensor.
type TensorDescription = fusion.TensorDescription

// FusionHandle binds a tensor to its device buffer and strides.
type FusionHandle = fusion.FusionHandle

// HandleRegistry maps tensor IDs to their device handles.
type HandleRegistry = fusion.HandleRegistry

// NewHandleRegistry returns an empty handle registry.
func NewHandleRegistry() *HandleRegistry { return fusion.NewHandleRegistry() }

// Context carries the tensors, scalars and handles of a fusion stream.
type Context = fusion.Context

// NewContext returns an empty fusion context with a fresh handle registry.
func NewContext() *Context { return fusion.NewContext(fusion.NewHandleRegistry()) }

// Trace is a captured sequence of fusable operations.
type Trace = fusion.Trace

// OutputInfo describes how one kernel output is materialized.
type OutputInfo = fusion.OutputInfo

// InplaceOutput declares an output written through the input at inputIndex.
func InplaceOutput(inputIndex int) OutputInfo { return fusion.InplaceOutput(inputIndex) }

// ArrayOutput declares an output backed by a fresh allocation of size
// elements.
func ArrayOutput(size int) OutputInfo { return fusion.ArrayOutput(size) }

// KernelFactory builds a fused kernel for a resolved set of tensors.
type KernelFactory = fusion.KernelFactory

// FusionKernel is a lazily-compiled fused kernel.
type FusionKernel = fusion.FusionKernel

// ExecutableKernel is a fully-resolved kernel ready for one dispatch.
type ExecutableKernel = fusion.ExecutableKernel

// AutotunableKernel is a cloneable kernel used for benchmarking variants.
type AutotunableKernel = fusion.AutotunableKernel

// NewElemwiseFactory returns a factory for element-wise fused kernels with
// the given vectorization factor.
func NewElemwiseFactory(info CompilationInfo, vectorization int) KernelFactory {
	return fusion.NewElemwiseFactory(info, vectorization)
}

// Build resolves a trace against the context and produces an executable
// kernel. When stateful is false, read-write tensors are treated as
// read-only so the caller's state is never mutated.
func Build(factory KernelFactory, trace *Trace, ctx *Context, device Device, client Client, stateful bool) (*ExecutableKernel, error) {
	return fusion.Build(factory, trace, ctx, device, client, stateful)
}
