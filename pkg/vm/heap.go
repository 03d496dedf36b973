package vm

// DefaultMemorySize is the heap length used when no size is configured.
const DefaultMemorySize = 256

// Heap is a fixed-length byte-addressable memory arena. Addresses are
// offsets in [0, Len()).
type Heap struct {
	bytes []byte
}

// NewHeap creates a zeroed heap of the given length.
func NewHeap(size int) *Heap {
	return &Heap{bytes: make([]byte, size)}
}

// Len returns the heap length.
func (h *Heap) Len() int { return len(h.bytes) }

// CheckAddress returns a Runtime error when address is outside the heap.
func (h *Heap) CheckAddress(address int64) error {
	if address < 0 || address >= int64(len(h.bytes)) {
		return NewAddressOutOfRangeError(address, len(h.bytes))
	}
	return nil
}

// ReadByteAt returns the byte at address.
func (h *Heap) ReadByteAt(address int64) (byte, error) {
	if err := h.CheckAddress(address); err != nil {
		return 0, err
	}
	return h.bytes[address], nil
}

// WriteByteAt stores b at address.
func (h *Heap) WriteByteAt(address int64, b byte) error {
	if err := h.CheckAddress(address); err != nil {
		return err
	}
	h.bytes[address] = b
	return nil
}

// Store writes the low byte of v at address with wraparound: -1 stores 255
// and 256 stores 0. It returns the byte written.
func (h *Heap) Store(address int64, v int64) (byte, error) {
	b := wrapByte(v)
	if err := h.WriteByteAt(address, b); err != nil {
		return 0, err
	}
	return b, nil
}

// Bytes returns a copy of the heap contents.
func (h *Heap) Bytes() []byte {
	out := make([]byte, len(h.bytes))
	copy(out, h.bytes)
	return out
}

// Reset zeroes every byte.
func (h *Heap) Reset() {
	clear(h.bytes)
}
