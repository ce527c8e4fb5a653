// Package webgpu implements the compute client for fused kernels on GPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/weld-ml/weld/internal/compute"
)

const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Client dispatches fused kernels through WebGPU. It owns the device, a
// shader-module and pipeline cache keyed by kernel identity, and a buffer
// pool for output allocations.
type Client struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache, keyed by kernel ID.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	pool *BufferPool
}

var _ compute.Client = (*Client)(nil)

// New creates a WebGPU client. Returns an error if WebGPU is not available
// or initialization fails.
func New() (client *Client, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Client{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		pool:      NewBufferPool(device),
	}, nil
}

// IsAvailable reports whether a WebGPU device can be initialized.
func IsAvailable() bool {
	c, err := New()
	if err != nil {
		return false
	}
	c.Release()
	return true
}

// Release frees the pool, device, adapter and instance.
func (c *Client) Release() {
	c.pool.Clear()
	c.device.Release()
	c.adapter.Release()
	c.instance.Release()
}

// bufferResource backs a compute.Handle with a GPU buffer. Pooled buffers
// (uninitialized output allocations) return to the pool on destroy; uploads
// are released outright.
type bufferResource struct {
	buffer *wgpu.Buffer
	size   uint64
	pool   *BufferPool
}

func (r *bufferResource) Size() int {
	return int(r.size) //nolint:gosec // G115: buffer sizes fit in int
}

func (r *bufferResource) Destroy() {
	if r.pool != nil {
		r.pool.Release(r.buffer, r.size)
		return
	}
	r.buffer.Release()
}

// Create allocates a device buffer initialized with data, using
// MappedAtCreation for the initial upload.
func (c *Client) Create(data []byte) (handle *compute.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
			err = fmt.Errorf("webgpu: create buffer: %v", r)
		}
	}()

	size := alignSize(uint64(len(data)))
	buffer := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            storageUsage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return compute.NewHandle(&bufferResource{buffer: buffer, size: size}), nil
}

// Empty allocates an uninitialized device buffer of size 4-byte elements,
// drawing from the buffer pool.
func (c *Client) Empty(size int) (handle *compute.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
			err = fmt.Errorf("webgpu: allocate %d elements: %v", size, r)
		}
	}()

	byteSize := alignSize(uint64(size) * 4) //nolint:gosec // G115: element counts are non-negative
	buffer := c.pool.Acquire(byteSize, storageUsage)
	return compute.NewHandle(&bufferResource{buffer: buffer, size: byteSize, pool: c.pool}), nil
}

// Execute binds the handles in order and submits one compute pass. Dispatch
// is fire-and-forget; the method returns once the work is queued.
func (c *Client) Execute(kernel compute.Kernel, handles []*compute.Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webgpu: dispatch %s: %v", kernel.ID(), r)
		}
	}()

	pipeline := c.pipeline(kernel)

	entries := make([]wgpu.BindGroupEntry, len(handles))
	for i, h := range handles {
		res, ok := h.Resource().(*bufferResource)
		if !ok {
			return fmt.Errorf("webgpu: handle %d is not a webgpu buffer", i)
		}
		entries[i] = wgpu.BufferBindingEntry(uint32(i), res.buffer, 0, res.size) //nolint:gosec // G115: binding index is small
	}

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := c.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	workgroup := kernel.Workgroup()
	computePass.DispatchWorkgroups(workgroup.X, workgroup.Y, workgroup.Z)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	c.queue.Submit(cmdBuffer)

	return nil
}

// Clone returns a client sharing the same device, caches and pool.
func (c *Client) Clone() compute.Client {
	return c
}

// pipeline returns the cached ComputePipeline for the kernel, compiling its
// source only on a cache miss.
func (c *Client) pipeline(kernel compute.Kernel) *wgpu.ComputePipeline {
	id := kernel.ID()

	c.mu.RLock()
	if pipeline, exists := c.pipelines[id]; exists {
		c.mu.RUnlock()
		return pipeline
	}
	c.mu.RUnlock()

	shader := c.device.CreateShaderModuleWGSL(kernel.Source())
	pipeline := c.device.CreateComputePipelineSimple(nil, shader, "main")

	c.mu.Lock()
	c.shaders[id] = shader
	c.pipelines[id] = pipeline
	c.mu.Unlock()

	return pipeline
}

// alignSize rounds a byte size up to the 4-byte granularity WebGPU buffers
// require.
func alignSize(size uint64) uint64 {
	return (size + 3) &^ 3
}
