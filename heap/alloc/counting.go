package alloc

import (
	"sync"
	"sync/atomic"

	"github.com/joshuapare/heapkit/heap"
)

// CountingAllocator tracks outstanding allocations made through it so tests
// can assert that every allocation was released.
type CountingAllocator struct {
	a  Allocator
	sz int64

	allocs sync.Map // heap.Ptr -> Layout
}

// NewCounting wraps a.
func NewCounting(a Allocator) *CountingAllocator {
	return &CountingAllocator{a: a}
}

// CurrentAlloc returns the number of requested bytes not yet freed.
func (c *CountingAllocator) CurrentAlloc() int { return int(atomic.LoadInt64(&c.sz)) }

// Alloc allocates and records the allocation on success.
func (c *CountingAllocator) Alloc(l Layout) (heap.Ptr, error) {
	p, err := c.a.Alloc(l)
	if err != nil {
		return p, err
	}
	atomic.AddInt64(&c.sz, int64(l.Size))
	c.allocs.Store(p, l)
	return p, nil
}

// Free forwards to the wrapped allocator and forgets the allocation when the
// free was accepted.
func (c *CountingAllocator) Free(p heap.Ptr, l Layout) error {
	if err := c.a.Free(p, l); err != nil {
		return err
	}
	if _, ok := c.allocs.LoadAndDelete(p); ok {
		atomic.AddInt64(&c.sz, -int64(l.Size))
	}
	return nil
}

// Region returns the managed region.
func (c *CountingAllocator) Region() *heap.Region { return c.a.Region() }

// TestingT is the subset of testing.TB used by AssertSize.
type TestingT interface {
	Errorf(format string, args ...any)
	Helper()
}

// AssertSize reports every outstanding allocation and fails t when the
// outstanding byte count differs from sz.
func (c *CountingAllocator) AssertSize(t TestingT, sz int) {
	t.Helper()
	if got := c.CurrentAlloc(); got != sz {
		c.allocs.Range(func(key, value any) bool {
			t.Errorf("LEAK of %s at %s", value.(Layout), key.(heap.Ptr))
			return true
		})
		t.Errorf("invalid memory size exp=%d, got=%d", sz, got)
	}
}

// Outstanding returns the number of allocations not yet freed.
func (c *CountingAllocator) Outstanding() int {
	n := 0
	c.allocs.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Compile-time interface check
var _ Allocator = (*CountingAllocator)(nil)
