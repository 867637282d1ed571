package alloc

import (
	"fmt"
	"sort"
)

// span is a [start, end) interval used by Check.
type span struct {
	start, end int
	free       bool
}

// Check verifies the free-list invariants and returns an error wrapping
// ErrCorrupt describing the first violation found:
//   - the list is acyclic and agrees with the neighbour indexes
//   - every free block is at least MinBlockSize and inside the managed range
//   - free blocks and live allocations are pairwise disjoint
//   - free and live bytes together account for the whole managed range
//   - with coalescing enabled, no two free blocks are adjacent
func (fa *FreeListAllocator) Check() error {
	if !fa.ready {
		return nil
	}
	lo, hi := fa.base, fa.base+fa.capacity

	spans := make([]span, 0, len(fa.byOff)+len(fa.live))
	seen := 0
	for i := fa.head; i != nilNode; i = fa.nodes[i].next {
		seen++
		if seen > len(fa.nodes) {
			return fmt.Errorf("%w: free list cycle", ErrCorrupt)
		}
		blk := fa.nodes[i]
		if blk.size < MinBlockSize {
			return fmt.Errorf("%w: free block at %d has size %d < %d", ErrCorrupt, blk.off, blk.size, MinBlockSize)
		}
		if blk.off < lo || blk.off+blk.size > hi {
			return fmt.Errorf("%w: free block [%d,%d) outside [%d,%d)", ErrCorrupt, blk.off, blk.off+blk.size, lo, hi)
		}
		if fa.byOff[blk.off] != i || fa.byEnd[blk.off+blk.size] != i {
			return fmt.Errorf("%w: index mismatch for free block at %d", ErrCorrupt, blk.off)
		}
		spans = append(spans, span{start: blk.off, end: blk.off + blk.size, free: true})
	}
	if seen != len(fa.byOff) || seen != len(fa.byEnd) {
		return fmt.Errorf("%w: %d listed blocks, %d/%d indexed", ErrCorrupt, seen, len(fa.byOff), len(fa.byEnd))
	}

	for p, ext := range fa.live {
		if int(p) < ext.start || int(p)+ext.layout.Size > ext.end {
			return fmt.Errorf("%w: allocation %s outside its extent [%d,%d)", ErrCorrupt, p, ext.start, ext.end)
		}
		if int(p)%ext.layout.Align != 0 {
			return fmt.Errorf("%w: allocation %s not aligned to %d", ErrCorrupt, p, ext.layout.Align)
		}
		spans = append(spans, span{start: ext.start, end: ext.end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	total := 0
	for i, s := range spans {
		total += s.end - s.start
		if i == 0 {
			continue
		}
		prev := spans[i-1]
		if s.start < prev.end {
			return fmt.Errorf("%w: [%d,%d) overlaps [%d,%d)", ErrCorrupt, prev.start, prev.end, s.start, s.end)
		}
		if fa.cfg.coalesce && prev.free && s.free && prev.end == s.start {
			return fmt.Errorf("%w: adjacent free blocks at %d and %d", ErrCorrupt, prev.start, s.start)
		}
	}
	if total != fa.capacity {
		return fmt.Errorf("%w: accounted %d bytes of %d", ErrCorrupt, total, fa.capacity)
	}
	return nil
}
