package compute

import "testing"

type fakeResource struct {
	size      int
	destroyed int
}

func (r *fakeResource) Size() int { return r.size }
func (r *fakeResource) Destroy()  { r.destroyed++ }

func TestHandleRefCounting(t *testing.T) {
	res := &fakeResource{size: 16}
	h := NewHandle(res)

	c := h.Clone()
	h.Release()
	if res.destroyed != 0 {
		t.Fatal("resource destroyed while a clone is alive")
	}

	c.Release()
	if res.destroyed != 1 {
		t.Fatalf("resource destroyed %d times, want 1", res.destroyed)
	}
}

func TestHandleIs(t *testing.T) {
	res := &fakeResource{size: 16}
	h := NewHandle(res)
	c := h.Clone()

	if !h.Is(c) {
		t.Error("clone should share physical identity with its origin")
	}

	other := NewHandle(&fakeResource{size: 16})
	if h.Is(other) {
		t.Error("distinct resources reported as identical")
	}
}

func TestHandleResourceSize(t *testing.T) {
	h := NewHandle(&fakeResource{size: 64})
	if got := h.Resource().Size(); got != 64 {
		t.Errorf("Resource().Size() = %d, want 64", got)
	}
}

func TestPackWordsRoundTrip(t *testing.T) {
	words := []uint32{2, 3, 1, 2, 3, 0, 1}
	data := PackWords(words)
	if len(data) != 4*len(words) {
		t.Fatalf("PackWords produced %d bytes, want %d", len(data), 4*len(words))
	}

	got := UnpackWords(data)
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("UnpackWords()[%d] = %d, want %d", i, got[i], words[i])
		}
	}
}

func TestPackFloats(t *testing.T) {
	data := PackFloats([]float32{1.5, -2.0})
	if len(data) != 8 {
		t.Fatalf("PackFloats produced %d bytes, want 8", len(data))
	}
	// 1.5 is 0x3FC00000 little-endian.
	if data[3] != 0x3F || data[2] != 0xC0 {
		t.Errorf("unexpected encoding for 1.5: % x", data[:4])
	}
}
