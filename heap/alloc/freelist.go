package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// MinBlockSize is the smallest block the free list tracks: the room a
// {size, next} header would occupy. Leftovers smaller than this are absorbed
// into the neighbouring allocation.
const MinBlockSize = 16

// nilNode terminates the free list.
const nilNode = -1

// FreeListAllocator is a general-purpose allocator that tracks reclaimable
// space as a singly-linked list of free blocks.
//
//   - First-fit: the first block large enough (after alignment padding) wins
//   - Free() head-inserts the block, optionally merging with free neighbours
//   - Block metadata lives in an index beside the region, never inside it,
//     so freed memory and list links never alias
//
// First-fit can fragment the heap under adversarial patterns; no attempt is
// made to find a tighter fit.
//
// NOT thread-safe. Wrap in a LockedAllocator to share between goroutines.
type FreeListAllocator struct {
	r   *heap.Region
	log *slog.Logger
	cfg config

	// Managed range [base, base+capacity).
	base     int
	capacity int
	ready    bool

	// Free list nodes, linked by index. Retired nodes are recycled via spare.
	nodes []freeBlock
	spare []int
	head  int

	// Neighbour indexes for coalescing.
	// byOff: block start -> node, byEnd: block end -> node
	byOff map[int]int
	byEnd map[int]int

	// live maps each outstanding allocation to the extent it occupies.
	live map[heap.Ptr]extent

	stats Stats
}

// freeBlock is one entry of the free list. size includes what would be the
// block header and is always >= MinBlockSize.
type freeBlock struct {
	off  int
	size int
	next int
}

// extent is the span carved out for one allocation. It may be wider than the
// request when padding or a tail remainder was absorbed.
type extent struct {
	start  int
	end    int
	layout Layout
}

// BlockInfo describes a free block for diagnostics.
type BlockInfo struct {
	Off  heap.Ptr
	Size int
}

// NewFreeList creates a FreeListAllocator over r. Init (or InitRange) must be
// called exactly once before the first Alloc.
//
// Options:
//   - WithSplit(bool): return unused head/tail of matched blocks (default true)
//   - WithCoalesce(bool): merge adjacent free blocks on Free (default true)
//   - WithLogger(*slog.Logger): diagnostics
func NewFreeList(r *heap.Region, opts ...Option) *FreeListAllocator {
	cfg := newConfig(opts)
	return &FreeListAllocator{
		r:     r,
		log:   cfg.logger,
		cfg:   cfg,
		head:  nilNode,
		nodes: make([]freeBlock, 0, 64),
		byOff: make(map[int]int, 64),
		byEnd: make(map[int]int, 64),
		live:  make(map[heap.Ptr]extent, 64),
	}
}

// Init makes the whole region one free block with no successor.
func (fa *FreeListAllocator) Init() error {
	return fa.InitRange(0, fa.r.Size())
}

// InitRange makes [start, start+size) of the region one free block. start
// must be a multiple of BlockAlign; size is truncated to a multiple of
// BlockAlign and must be at least MinBlockSize.
func (fa *FreeListAllocator) InitRange(start heap.Ptr, size int) error {
	if fa.ready {
		return ErrAlreadyInit
	}
	if !fa.r.Contains(start, size) {
		return fmt.Errorf("%w: start=%s size=%d region=%d", ErrBadRange, start, size, fa.r.Size())
	}
	if int(start)%format.BlockAlign != 0 {
		return fmt.Errorf("%w: start %s not %d-byte aligned", ErrBadRange, start, format.BlockAlign)
	}
	size &^= format.BlockAlignMask
	if size < MinBlockSize {
		return fmt.Errorf("%w: size %d below minimum block %d", ErrBadRange, size, MinBlockSize)
	}

	fa.base = int(start)
	fa.capacity = size
	fa.insert(fa.base, size)
	fa.ready = true

	fa.log.Debug("free list initialized", "base", fa.base, "capacity", size,
		"split", fa.cfg.split, "coalesce", fa.cfg.coalesce)
	return nil
}

// Alloc walks the free list from its head and carves the request out of the
// first block that fits once alignment padding is accounted for. It returns
// heap.Null and ErrOutOfMemory when a full traversal finds nothing.
func (fa *FreeListAllocator) Alloc(l Layout) (heap.Ptr, error) {
	fa.stats.AllocCalls++

	if err := l.Validate(); err != nil {
		fa.stats.Failures++
		return heap.Null, err
	}
	if !fa.ready {
		fa.stats.Failures++
		return heap.Null, ErrNotInit
	}

	carve, ok := blockSize(l.Size)
	if !ok {
		return fa.fail(l)
	}

	prev := nilNode
	for i := fa.head; i != nilNode; prev, i = i, fa.nodes[i].next {
		blk := fa.nodes[i]

		start, ok := alignUp(blk.off, l.Align)
		if !ok {
			continue
		}
		pad := format.Padding(blk.off, l.Align)
		need, ok := buf.AddOverflowSafe(pad, carve)
		if !ok || need > blk.size {
			continue
		}

		fa.unlink(prev, i)
		ext := fa.place(blk, start, carve, l)
		fa.live[heap.Ptr(start)] = ext

		fa.stats.LiveAllocs++
		fa.stats.LiveBytes += ext.end - ext.start
		return heap.Ptr(start), nil
	}

	return fa.fail(l)
}

// place splits blk around the carve-out at start and returns the extent the
// allocation occupies. blk has already been unlinked.
func (fa *FreeListAllocator) place(blk freeBlock, start, carve int, l Layout) extent {
	ext := extent{start: blk.off, end: blk.off + blk.size, layout: l}
	if !fa.cfg.split {
		return ext
	}

	if pad := start - blk.off; pad >= MinBlockSize {
		fa.insert(blk.off, pad)
		ext.start = start
		fa.stats.SplitCount++
	}
	tail := start + carve
	if rem := ext.end - tail; rem >= MinBlockSize {
		fa.insert(tail, rem)
		ext.end = tail
		fa.stats.SplitCount++
	}
	return ext
}

func (fa *FreeListAllocator) fail(l Layout) (heap.Ptr, error) {
	fa.stats.Failures++
	fa.log.Debug("free list alloc failed",
		"size", l.Size, "align", l.Align,
		"free_blocks", fa.countFree(), "free_bytes", fa.freeBytes())
	return heap.Null, fmt.Errorf("%w: %s", ErrOutOfMemory, l)
}

// Free returns the allocation at p to the free list. p and l must exactly
// match an earlier successful Alloc that has not been freed; anything else is
// rejected with ErrInvalidFree and leaves the allocator unchanged.
func (fa *FreeListAllocator) Free(p heap.Ptr, l Layout) error {
	fa.stats.FreeCalls++

	if err := l.Validate(); err != nil {
		return err
	}
	ext, ok := fa.live[p]
	if !ok {
		return fmt.Errorf("%w: %s is not a live allocation", ErrInvalidFree, p)
	}
	if ext.layout != l {
		return fmt.Errorf("%w: %s allocated as %s, freed as %s", ErrInvalidFree, p, ext.layout, l)
	}

	delete(fa.live, p)
	fa.stats.LiveAllocs--
	fa.stats.LiveBytes -= ext.end - ext.start

	off, size := ext.start, ext.end-ext.start
	if fa.cfg.coalesce {
		// Backward: a free block ending exactly where this one starts.
		if j, ok := fa.byEnd[off]; ok {
			prevBlk := fa.nodes[j]
			fa.remove(j)
			off = prevBlk.off
			size += prevBlk.size
			fa.stats.CoalesceCount++
		}
		// Forward: a free block starting exactly where this one ends.
		if k, ok := fa.byOff[off+size]; ok {
			size += fa.nodes[k].size
			fa.remove(k)
			fa.stats.CoalesceCount++
		}
	}

	fa.insert(off, size)
	return nil
}

// insert head-inserts a free block.
func (fa *FreeListAllocator) insert(off, size int) {
	blk := freeBlock{off: off, size: size, next: fa.head}

	var idx int
	if n := len(fa.spare); n > 0 {
		idx = fa.spare[n-1]
		fa.spare = fa.spare[:n-1]
		fa.nodes[idx] = blk
	} else {
		idx = len(fa.nodes)
		fa.nodes = append(fa.nodes, blk)
	}

	fa.head = idx
	fa.byOff[off] = idx
	fa.byEnd[off+size] = idx
}

// unlink removes node i whose predecessor is prev (nilNode when i is the head).
func (fa *FreeListAllocator) unlink(prev, i int) {
	blk := fa.nodes[i]
	if prev == nilNode {
		fa.head = blk.next
	} else {
		fa.nodes[prev].next = blk.next
	}
	delete(fa.byOff, blk.off)
	delete(fa.byEnd, blk.off+blk.size)
	fa.spare = append(fa.spare, i)
}

// remove unlinks node i after locating its predecessor.
// O(n) in the list length; only coalescing needs it.
func (fa *FreeListAllocator) remove(i int) {
	prev := nilNode
	for cur := fa.head; cur != nilNode; prev, cur = cur, fa.nodes[cur].next {
		if cur == i {
			fa.unlink(prev, i)
			return
		}
	}
}

// FreeBlocks returns a snapshot of the free list in list order.
func (fa *FreeListAllocator) FreeBlocks() []BlockInfo {
	out := make([]BlockInfo, 0, len(fa.byOff))
	for i := fa.head; i != nilNode; i = fa.nodes[i].next {
		out = append(out, BlockInfo{Off: heap.Ptr(fa.nodes[i].off), Size: fa.nodes[i].size})
	}
	return out
}

func (fa *FreeListAllocator) countFree() int { return len(fa.byOff) }

func (fa *FreeListAllocator) freeBytes() int {
	total := 0
	for _, idx := range fa.byOff {
		total += fa.nodes[idx].size
	}
	return total
}

// Size returns the number of bytes under management.
func (fa *FreeListAllocator) Size() int { return fa.capacity }

// Region returns the managed region.
func (fa *FreeListAllocator) Region() *heap.Region { return fa.r }

// Stats returns a snapshot of the usage counters.
func (fa *FreeListAllocator) Stats() Stats {
	s := fa.stats
	s.FreeBlocks = fa.countFree()
	s.FreeBytes = fa.freeBytes()
	return s
}

// Compile-time interface check
var _ Allocator = (*FreeListAllocator)(nil)
