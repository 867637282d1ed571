// Package alloc provides heap allocators over a fixed-size heap.Region.
//
// # Overview
//
// Two interchangeable strategies implement the same Allocator contract
// (allocate by Layout, free by pointer + Layout). A program installs one of
// them as its sole provider of dynamic memory, initializes it once and then
// allocates through it.
//
// # Allocator Interface
//
//   - Alloc(layout): returns a heap.Ptr aligned to layout.Align with room for layout.Size bytes
//   - Free(ptr, layout): returns an allocation to the allocator
//   - Region(): the memory being managed
//
// # Implementations
//
// BumpAllocator: monotonic pointer allocator
//
//   - O(1) allocation, no per-allocation metadata
//   - Free() is a no-op, Reset() reclaims everything at once
//   - Used(), Size(), Remaining(), Peak()
//
// FreeListAllocator: first-fit free list
//
//   - Init() turns the whole region into one free block
//   - Alignment-aware first-fit search with optional splitting
//   - Optional coalescing of adjacent free blocks on Free()
//   - Check() verifies the heap invariants
//
// LockedAllocator: serialises any Allocator behind one mutex.
//
// CountingAllocator: records outstanding allocations for leak checks.
//
// # Usage Example
//
//	r, err := heap.New(heap.HeapSize)
//	if err != nil {
//	    return err
//	}
//	fa := alloc.NewFreeList(r, alloc.WithCoalesce(true))
//	if err := fa.Init(); err != nil {
//	    return err
//	}
//
//	l := alloc.Layout{Size: 100, Align: 8}
//	p, err := fa.Alloc(l)
//	if err != nil {
//	    // p == heap.Null, errors.Is(err, alloc.ErrOutOfMemory)
//	}
//	...
//	err = fa.Free(p, l)
//
// # Failure Handling
//
// Exhaustion is reported as heap.Null plus an error wrapping ErrOutOfMemory.
// Allocators never panic and never abort. What to do about exhaustion is the
// program's decision; MustAlloc routes failures to the hook installed with
// SetAllocErrorHook (default: panic with *AllocError).
//
// # Coalescing Policy
//
// Coalescing and splitting are explicit options (WithCoalesce, WithSplit),
// both enabled by default. Without coalescing, freed blocks stay separate
// and a request larger than every individual free block fails even if the
// combined free space would cover it.
//
// # Thread Safety
//
// BumpAllocator and FreeListAllocator are not thread-safe. Wrap them in a
// LockedAllocator to share them between goroutines.
package alloc
