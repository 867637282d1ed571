// Package heap provides the fixed-size memory region that heap allocators manage.
//
// # Overview
//
// A Region is a single contiguous byte buffer of fixed capacity, created once
// and never resized. Exactly one allocator owns a Region for its whole
// lifetime; no other code writes into it except through memory handed out as
// allocations.
//
// # Pointers
//
// Locations inside a Region are expressed as Ptr values: byte offsets from
// the start of the region, never raw addresses. The zero offset is a valid
// location, so failure is signalled by the Null sentinel:
//
//	p, err := a.Alloc(alloc.Layout{Size: 64, Align: 8})
//	if p.IsNull() {
//	    // out of memory, err wraps alloc.ErrOutOfMemory
//	}
//
// Every access through Slice, U32, PutU32, U64 and PutU64 is checked against
// the region bounds, with overflow-safe offset arithmetic.
//
// # Backing Memory
//
//   - New: zeroed Go-heap buffer
//   - Map: anonymous private OS mapping (page-aligned base) on unix, New elsewhere
//   - Wrap: an externally supplied byte range
//
// Alignment requests are honoured relative to offset 0. A Map-backed region
// starts on a page boundary, so offset alignment up to 4KB is also address
// alignment.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap/alloc: bump and free-list allocators
//   - github.com/joshuapare/heapkit/heap/objects: vectors, strings and boxes built on an allocator
package heap
