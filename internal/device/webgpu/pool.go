package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 100         // Max buffers per category
)

// pooledBuffer wraps a GPU buffer with metadata.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// BufferPool manages GPU buffer reuse so fused-kernel output allocations do
// not hit the driver on every dispatch. Buffers are categorized by size.
type BufferPool struct {
	device *wgpu.Device

	small  []*pooledBuffer
	medium []*pooledBuffer
	large  []*pooledBuffer

	mu sync.Mutex
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		small:  make([]*pooledBuffer, 0, maxPoolSize),
		medium: make([]*pooledBuffer, 0, maxPoolSize),
		large:  make([]*pooledBuffer, 0, maxPoolSize),
	}
}

// Acquire gets a buffer from the pool or creates a new one. The returned
// buffer matches or exceeds the requested size.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.pool(size)
	for i, pb := range *pool {
		if pb.size >= size {
			buffer := pb.buffer
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			poolHits.Inc()
			poolBuffers.Dec()
			return buffer
		}
	}

	poolMisses.Inc()
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool for reuse. If the pool is full, the
// buffer is released immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.pool(size)
	if len(*pool) >= maxPoolSize {
		buffer.Release()
		return
	}
	*pool = append(*pool, &pooledBuffer{buffer: buffer, size: size})
	poolBuffers.Inc()
}

// Clear releases all pooled buffers. Called when the client is released.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pool := range []*[]*pooledBuffer{&p.small, &p.medium, &p.large} {
		for _, pb := range *pool {
			pb.buffer.Release()
			poolBuffers.Dec()
		}
		*pool = (*pool)[:0]
	}
}

// pool returns the slice for the buffer's size category.
func (p *BufferPool) pool(size uint64) *[]*pooledBuffer {
	if size < smallThreshold {
		return &p.small
	}
	if size < mediumThreshold {
		return &p.medium
	}
	return &p.large
}
