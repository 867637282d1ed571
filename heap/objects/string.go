package objects

import (
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// String is an owned, immutable byte string stored in a heap region.
type String struct {
	a      alloc.Allocator
	ptr    heap.Ptr
	layout alloc.Layout

	released bool
}

// NewString copies s into memory obtained from a.
func NewString(a alloc.Allocator, s string) (*String, error) {
	l := alloc.Layout{Size: len(s), Align: 1}
	p, err := a.Alloc(l)
	if err != nil {
		return nil, err
	}
	dst, err := a.Region().Slice(p, len(s))
	if err != nil {
		return nil, err
	}
	copy(dst, s)
	return &String{a: a, ptr: p, layout: l}, nil
}

// Len returns the length in bytes.
func (s *String) Len() int { return s.layout.Size }

// Ptr returns the offset of the string bytes.
func (s *String) Ptr() heap.Ptr { return s.ptr }

// String returns a Go copy of the contents, or "" after Release.
func (s *String) String() string {
	if s.released {
		return ""
	}
	b, err := s.a.Region().Slice(s.ptr, s.layout.Size)
	if err != nil {
		return ""
	}
	return string(b)
}

// Release frees the string. Calling Release twice is a no-op.
func (s *String) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.a.Free(s.ptr, s.layout)
}
