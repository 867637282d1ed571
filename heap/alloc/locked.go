package alloc

import (
	"sync"

	"github.com/joshuapare/heapkit/heap"
)

// LockedAllocator serialises every call to the wrapped Allocator behind a
// single mutex. The lock is held for the whole Alloc/Free call and released
// on every exit path, including failures. Under contention the entire heap is
// serialised.
type LockedAllocator struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *LockedAllocator {
	return &LockedAllocator{a: a}
}

// Alloc allocates under the lock.
func (la *LockedAllocator) Alloc(l Layout) (heap.Ptr, error) {
	la.mu.Lock()
	defer la.mu.Unlock()
	return la.a.Alloc(l)
}

// Free frees under the lock.
func (la *LockedAllocator) Free(p heap.Ptr, l Layout) error {
	la.mu.Lock()
	defer la.mu.Unlock()
	return la.a.Free(p, l)
}

// With runs fn with exclusive access to the wrapped allocator, for
// operations outside the Allocator contract such as Reset, Stats or Check.
// fn must not retain the allocator after returning.
func (la *LockedAllocator) With(fn func(Allocator)) {
	la.mu.Lock()
	defer la.mu.Unlock()
	fn(la.a)
}

// Region returns the managed region.
func (la *LockedAllocator) Region() *heap.Region { return la.a.Region() }

// Compile-time interface check
var _ Allocator = (*LockedAllocator)(nil)
