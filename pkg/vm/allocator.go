package vm

import (
	"sort"
)

// Region is a reserved span of heap addresses [Start, Start+Size).
type Region struct {
	Start int64
	Size  int64
}

// End returns the first address after the region.
func (r Region) End() int64 { return r.Start + r.Size }

// Allocator hands out non-overlapping regions of a heap of fixed length.
// It is first-fit: a request takes the lowest gap between reservations
// that is large enough.
type Allocator struct {
	length   int64
	reserved []Region // sorted by Start
}

// NewAllocator creates an allocator for a heap of the given length.
func NewAllocator(length int) *Allocator {
	return &Allocator{length: int64(length)}
}

// Malloc reserves size bytes and returns the start address.
func (a *Allocator) Malloc(size int64) (int64, error) {
	if size <= 0 {
		return 0, NewRuntimeError("Cannot allocate %d bytes. Size must be positive.", size)
	}

	var cursor int64
	for i, r := range a.reserved {
		if r.Start-cursor >= size {
			a.insert(i, Region{Start: cursor, Size: size})
			return cursor, nil
		}
		cursor = r.End()
	}
	if a.length-cursor >= size {
		a.insert(len(a.reserved), Region{Start: cursor, Size: size})
		return cursor, nil
	}
	return 0, NewOutOfMemoryError(size, int(a.length))
}

func (a *Allocator) insert(i int, r Region) {
	a.reserved = append(a.reserved, Region{})
	copy(a.reserved[i+1:], a.reserved[i:])
	a.reserved[i] = r
}

// Regions returns the reserved regions in address order.
func (a *Allocator) Regions() []Region {
	out := make([]Region, len(a.reserved))
	copy(out, a.reserved)
	return out
}

// Free returns the total number of unreserved bytes.
func (a *Allocator) Free() int64 {
	used := int64(0)
	for _, r := range a.reserved {
		used += r.Size
	}
	return a.length - used
}

// IsReserved reports whether address lies in a reserved region.
func (a *Allocator) IsReserved(address int64) bool {
	i := sort.Search(len(a.reserved), func(i int) bool {
		return a.reserved[i].End() > address
	})
	return i < len(a.reserved) && a.reserved[i].Start <= address
}

// Reset drops every reservation.
func (a *Allocator) Reset() {
	a.reserved = nil
}
