package alloc

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

// newTestRegion creates a Go-heap region of size bytes.
func newTestRegion(t testing.TB, size int) *heap.Region {
	t.Helper()
	r, err := heap.New(size)
	require.NoError(t, err)
	return r
}

// newTestFreeList creates and initializes a free-list allocator over a fresh region.
func newTestFreeList(t testing.TB, size int, opts ...Option) *FreeListAllocator {
	t.Helper()
	fa := NewFreeList(newTestRegion(t, size), opts...)
	require.NoError(t, fa.Init())
	return fa
}

// liveAlloc is a test-side record of an outstanding allocation.
type liveAlloc struct {
	p heap.Ptr
	l Layout
}

// requireDisjoint asserts that the requested ranges of all live allocations
// are pairwise disjoint.
func requireDisjoint(t testing.TB, live []liveAlloc) {
	t.Helper()
	sorted := append([]liveAlloc(nil), live...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].p != sorted[j].p {
			return sorted[i].p < sorted[j].p
		}
		return sorted[i].l.Size < sorted[j].l.Size
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		require.LessOrEqual(t, int(prev.p)+prev.l.Size, int(cur.p),
			"allocation %s%s overlaps %s%s", prev.p, prev.l, cur.p, cur.l)
	}
}

// fill writes a byte pattern into an allocation.
func fill(t testing.TB, r *heap.Region, a liveAlloc, pattern byte) {
	t.Helper()
	b, err := r.Slice(a.p, a.l.Size)
	require.NoError(t, err)
	for i := range b {
		b[i] = pattern
	}
}

// requireFilled asserts that an allocation still holds the pattern written by fill.
func requireFilled(t testing.TB, r *heap.Region, a liveAlloc, pattern byte) {
	t.Helper()
	b, err := r.Slice(a.p, a.l.Size)
	require.NoError(t, err)
	require.True(t, bytes.Equal(b, bytes.Repeat([]byte{pattern}, a.l.Size)),
		"allocation at %s corrupted", a.p)
}

// policies enumerates every split/coalesce combination.
var policies = []struct {
	name string
	opts []Option
}{
	{"split+coalesce", []Option{WithSplit(true), WithCoalesce(true)}},
	{"split-only", []Option{WithSplit(true), WithCoalesce(false)}},
	{"coalesce-only", []Option{WithSplit(false), WithCoalesce(true)}},
	{"simple", []Option{WithSplit(false), WithCoalesce(false)}},
}
