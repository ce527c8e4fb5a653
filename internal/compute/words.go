package compute

import (
	"encoding/binary"
	"math"
)

// Wire encoding for metadata and scalar buffers: flat little-endian 32-bit
// words, matching what the device consumes.

// PackWords encodes uint32 words as little-endian bytes.
func PackWords(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// UnpackWords decodes little-endian bytes back into uint32 words.
func UnpackWords(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

// PackFloats encodes float32 values as little-endian bytes.
func PackFloats(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// PackInts encodes int32 values as little-endian bytes.
func PackInts(values []int32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v)) //nolint:gosec // G115: intentional two's-complement reinterpretation
	}
	return out
}
