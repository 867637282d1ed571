package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// Layout is the (size, alignment) shape of an allocation request.
// Size may be zero; Align must be a power of two.
type Layout struct {
	Size  int
	Align int
}

// NewLayout validates size and align and returns the Layout.
func NewLayout(size, align int) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LayoutOf returns a Layout with 8-byte alignment, the default for heap objects.
func LayoutOf(size int) Layout {
	return Layout{Size: size, Align: format.BlockAlign}
}

// Validate reports ErrBadLayout for a negative size or a non power-of-two alignment.
func (l Layout) Validate() error {
	if l.Size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrBadLayout, l.Size)
	}
	if !format.IsPow2(l.Align) {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrBadLayout, l.Align)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("{size=%d align=%d}", l.Size, l.Align)
}

// Allocator is the allocation contract shared by every heap strategy.
//
// Implementations:
//   - BumpAllocator: monotonic pointer, reset-only reclamation
//   - FreeListAllocator: first-fit free list with per-allocation free
//   - LockedAllocator: mutex wrapper serialising another Allocator
//   - CountingAllocator: leak-check wrapper used by tests
//
// Failure is a value, never a panic: Alloc returns heap.Null together with an
// error wrapping ErrOutOfMemory (or ErrBadLayout for malformed requests).
type Allocator interface {
	// Alloc returns the offset of a region of at least l.Size bytes aligned
	// to l.Align, or heap.Null and an error.
	Alloc(l Layout) (heap.Ptr, error)

	// Free returns a region obtained from Alloc with the same layout.
	// Strategies that cannot reclaim individual blocks treat it as a no-op.
	Free(p heap.Ptr, l Layout) error

	// Region returns the memory the allocator manages.
	Region() *heap.Region
}

// Stats holds basic usage counters.
type Stats struct {
	AllocCalls int // Total Alloc() calls
	FreeCalls  int // Total Free() calls
	Failures   int // Alloc() calls that returned heap.Null

	LiveAllocs int // Allocations not yet freed (bump: since last reset)
	LiveBytes  int // Bytes held by live allocations, including absorbed padding
	FreeBytes  int // Bytes available for future allocations
	FreeBlocks int // Blocks on the free list (bump: 0 or 1)

	SplitCount    int // Free-list blocks split on allocation
	CoalesceCount int // Free-list merges with an adjacent free block
}
