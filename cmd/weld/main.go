// Package main provides the Weld ML Framework CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weld-ml/weld/internal/autotune"
	"github.com/weld-ml/weld/internal/codegen"
	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/device/webgpu"
	"github.com/weld-ml/weld/internal/fusion"
	"github.com/weld-ml/weld/internal/tensor"
)

const version = "v0.0.1-dev"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Weld ML Framework %s\n", version)
			return
		case "demo":
			runDemo()
			return
		}
	}

	fmt.Println("Weld ML Framework - JIT Kernel Fusion for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run a fused add+relu kernel on WebGPU")
}

// runDemo captures a small add+relu stream, autotunes the vectorization
// factor and dispatches the winning kernel.
func runDemo() {
	client, err := webgpu.New()
	if err != nil {
		log.Fatal().Err(err).Msg("WebGPU not available")
	}
	defer client.Release()

	const n = 1 << 16

	a := make([]float32, n)
	b := make([]float32, n)
	for i := range a {
		a[i] = float32(i)
		b[i] = float32(-i / 2)
	}

	ctx := fusion.NewContext(fusion.NewHandleRegistry())
	shape := tensor.Shape{n}
	strides := shape.ComputeStrides()

	register := func(id fusion.TensorID, data []float32) {
		buf, createErr := client.Create(compute.PackFloats(data))
		if createErr != nil {
			log.Fatal().Err(createErr).Msg("Failed to upload input")
		}
		ctx.RegisterTensor(fusion.TensorDescription{ID: id, Shape: shape, Status: fusion.StatusReadOnly})
		ctx.Handles.RegisterHandle(id, fusion.FusionHandle{
			Client:  client,
			Device:  tensor.WebGPU,
			Strides: strides,
			Handle:  buf,
		})
	}
	register(0, a)
	register(1, b)
	ctx.RegisterTensor(fusion.TensorDescription{ID: 2, Shape: shape, Status: fusion.StatusNotInit})

	// sum = a + b; out = relu(sum)
	info := codegen.CompilationInfo{
		NumInputs: 2,
		Outputs:   []codegen.Var{codegen.Local(1)},
		Ops: []codegen.Op{
			{Kind: codegen.OpAdd, A: codegen.Input(0), B: codegen.Input(1), Out: 0},
			{Kind: codegen.OpRelu, A: codegen.Local(0), Out: 1},
		},
	}
	trace := &fusion.Trace{
		Inputs: []fusion.TensorDescription{
			{ID: 0, Shape: shape, Status: fusion.StatusReadOnly},
			{ID: 1, Shape: shape, Status: fusion.StatusReadOnly},
		},
		Outputs: []fusion.TensorDescription{
			{ID: 2, Shape: shape, Status: fusion.StatusNotInit},
		},
	}

	variants := []autotune.Variant{
		{Name: "elemwise-v1", Factory: fusion.NewElemwiseFactory(info, 1)},
		{Name: "elemwise-v2", Factory: fusion.NewElemwiseFactory(info, 2)},
		{Name: "elemwise-v4", Factory: fusion.NewElemwiseFactory(info, 4)},
	}

	tuner := autotune.NewTuner()
	if err := tuner.Execute(variants, trace, ctx, tensor.WebGPU, client); err != nil {
		log.Fatal().Err(err).Msg("Fused dispatch failed")
	}

	log.Info().Int("elements", n).Msg("Fused add+relu dispatched")
}
