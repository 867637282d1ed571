package objects

import (
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// Box is a single fixed-size value stored in a heap region. Its bytes are
// zeroed on creation since freed memory is handed out again as-is.
type Box struct {
	a      alloc.Allocator
	ptr    heap.Ptr
	layout alloc.Layout

	released bool
}

// NewBox allocates a zeroed value of layout l.
func NewBox(a alloc.Allocator, l alloc.Layout) (*Box, error) {
	p, err := a.Alloc(l)
	if err != nil {
		return nil, err
	}
	b, err := a.Region().Slice(p, l.Size)
	if err != nil {
		return nil, err
	}
	clear(b)
	return &Box{a: a, ptr: p, layout: l}, nil
}

// Ptr returns the offset of the value.
func (b *Box) Ptr() heap.Ptr { return b.ptr }

// Layout returns the layout the box was allocated with.
func (b *Box) Layout() alloc.Layout { return b.layout }

// Bytes returns the value's bytes. The slice aliases heap memory.
func (b *Box) Bytes() ([]byte, error) {
	if b.released {
		return nil, ErrReleased
	}
	return b.a.Region().Slice(b.ptr, b.layout.Size)
}

// Release frees the box. Calling Release twice is a no-op.
func (b *Box) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	return b.a.Free(b.ptr, b.layout)
}
