package webgpu

import "testing"

func TestAlignSize(t *testing.T) {
	tests := []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{1024, 1024},
	}
	for _, tt := range tests {
		if got := alignSize(tt.in); got != tt.want {
			t.Errorf("alignSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClientRoundTrip(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU device not available")
	}

	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Release()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h, err := client.Create(data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := h.Resource().Size(); got != 8 {
		t.Errorf("uploaded buffer size = %d, want 8", got)
	}
	h.Release()

	empty, err := client.Empty(16)
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if got := empty.Resource().Size(); got != 64 {
		t.Errorf("allocated buffer size = %d, want 64", got)
	}
	empty.Release()
}

func TestPoolReusesBuffers(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU device not available")
	}

	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Release()

	h1, err := client.Empty(256)
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	res1 := h1.Resource().(*bufferResource).buffer
	h1.Release()

	h2, err := client.Empty(256)
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	defer h2.Release()
	if h2.Resource().(*bufferResource).buffer != res1 {
		t.Error("released buffer was not reused for an equal-size allocation")
	}
}
