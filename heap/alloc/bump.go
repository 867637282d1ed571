package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/buf"
)

// BumpAllocator is an allocation-only allocator that serves requests by
// advancing a single offset through its region.
//
// Key characteristics:
//   - O(1) construction: no init step, the zero offset is ready to use
//   - O(1) allocation: align the offset, bounds check, advance
//   - Free() is a no-op; memory is reclaimed all at once by Reset()
//
// Ideal for workloads that allocate many small objects and drop them together
// (one processing pass, one frame).
//
// NOT thread-safe. Wrap in a LockedAllocator to share between goroutines.
type BumpAllocator struct {
	r   *heap.Region
	log *slog.Logger

	// next is the first free byte. Invariant: 0 <= next <= r.Size().
	// Bytes in [0, next) are allocated but individually indistinguishable.
	next int

	// peak is the high-water mark of next across resets.
	peak int

	stats Stats
}

// NewBump creates a BumpAllocator over r.
func NewBump(r *heap.Region, opts ...Option) *BumpAllocator {
	cfg := newConfig(opts)
	return &BumpAllocator{r: r, log: cfg.logger}
}

// Alloc returns the next offset aligned to l.Align with room for l.Size bytes.
// On exhaustion it returns heap.Null and ErrOutOfMemory and leaves the
// allocator unchanged, so a later smaller request can still succeed.
//
// A zero-size request succeeds with the aligned current offset; it may equal
// the offset handed to the next allocation.
func (ba *BumpAllocator) Alloc(l Layout) (heap.Ptr, error) {
	ba.stats.AllocCalls++

	if err := l.Validate(); err != nil {
		ba.stats.Failures++
		return heap.Null, err
	}

	start, ok := alignUp(ba.next, l.Align)
	var end int
	if ok {
		end, ok = buf.AddOverflowSafe(start, l.Size)
	}
	if !ok || end > ba.r.Size() {
		ba.stats.Failures++
		ba.log.Debug("bump alloc failed",
			"size", l.Size, "align", l.Align, "used", ba.next, "capacity", ba.r.Size())
		return heap.Null, fmt.Errorf("%w: %s with %d of %d bytes used",
			ErrOutOfMemory, l, ba.next, ba.r.Size())
	}

	ba.next = end
	ba.peak = max(ba.peak, end)
	ba.stats.LiveAllocs++
	return heap.Ptr(start), nil
}

// Free is a no-op. Individual reclamation is not supported; the arguments are
// never inspected, so foreign or stale pointers cannot corrupt the allocator.
func (ba *BumpAllocator) Free(heap.Ptr, Layout) error {
	ba.stats.FreeCalls++
	return nil
}

// Reset rewinds the allocator to offset 0, invalidating every prior
// allocation. The caller must ensure none of them is used afterwards.
func (ba *BumpAllocator) Reset() {
	ba.log.Debug("bump reset", "used", ba.next)
	ba.next = 0
	ba.stats.LiveAllocs = 0
}

// Used returns the current offset (bytes consumed since the last reset).
func (ba *BumpAllocator) Used() int { return ba.next }

// Size returns the total capacity of the region.
func (ba *BumpAllocator) Size() int { return ba.r.Size() }

// Remaining returns the bytes left before exhaustion, ignoring alignment.
func (ba *BumpAllocator) Remaining() int { return ba.r.Size() - ba.next }

// Peak returns the high-water mark of Used() across all resets.
func (ba *BumpAllocator) Peak() int { return ba.peak }

// Region returns the managed region.
func (ba *BumpAllocator) Region() *heap.Region { return ba.r }

// Stats returns a snapshot of the usage counters.
func (ba *BumpAllocator) Stats() Stats {
	s := ba.stats
	s.LiveBytes = ba.next
	s.FreeBytes = ba.Remaining()
	if s.FreeBytes > 0 {
		s.FreeBlocks = 1
	}
	return s
}

// Compile-time interface check
var _ Allocator = (*BumpAllocator)(nil)
