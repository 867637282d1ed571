package objects

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/buf"
)

const minVecCap = 4

// Vec is a growable array of fixed-size elements stored in a heap region.
// Growth allocates a buffer twice as large, copies the elements over and
// frees the old buffer.
type Vec struct {
	a        alloc.Allocator
	elemSize int
	align    int

	ptr    heap.Ptr
	layout alloc.Layout
	n      int
	cap    int

	released bool
}

// NewVec creates an empty vector of elemSize-byte elements aligned to align.
// No memory is allocated until the first Push.
func NewVec(a alloc.Allocator, elemSize, align int) (*Vec, error) {
	if elemSize <= 0 {
		return nil, fmt.Errorf("%w: element size %d", ErrElemSize, elemSize)
	}
	if _, err := alloc.NewLayout(elemSize, align); err != nil {
		return nil, err
	}
	return &Vec{a: a, elemSize: elemSize, align: align, ptr: heap.Null}, nil
}

// Len returns the number of elements.
func (v *Vec) Len() int { return v.n }

// Cap returns the number of elements the current buffer can hold.
func (v *Vec) Cap() int { return v.cap }

// Ptr returns the offset of the backing buffer, or heap.Null before the first Push.
func (v *Vec) Ptr() heap.Ptr { return v.ptr }

// Push appends elem, growing the buffer when full.
func (v *Vec) Push(elem []byte) error {
	if v.released {
		return ErrReleased
	}
	if len(elem) != v.elemSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrElemSize, len(elem), v.elemSize)
	}
	if v.n == v.cap {
		if err := v.grow(); err != nil {
			return err
		}
	}
	dst, err := v.slot(v.n)
	if err != nil {
		return err
	}
	copy(dst, elem)
	v.n++
	return nil
}

// PushU64 appends v as a little-endian uint64. The element size must be 8.
func (v *Vec) PushU64(x uint64) error {
	var b [8]byte
	buf.PutU64LE(b[:], x)
	return v.Push(b[:])
}

// Get returns the bytes of element i. The slice aliases heap memory and is
// invalidated by the next growth.
func (v *Vec) Get(i int) ([]byte, error) {
	if v.released {
		return nil, ErrReleased
	}
	if i < 0 || i >= v.n {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndex, i, v.n)
	}
	return v.slot(i)
}

// U64 returns element i decoded as a little-endian uint64.
func (v *Vec) U64(i int) (uint64, error) {
	b, err := v.Get(i)
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: element size %d, want 8", ErrElemSize, len(b))
	}
	return buf.U64LE(b), nil
}

// Set overwrites element i.
func (v *Vec) Set(i int, elem []byte) error {
	if len(elem) != v.elemSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrElemSize, len(elem), v.elemSize)
	}
	dst, err := v.Get(i)
	if err != nil {
		return err
	}
	copy(dst, elem)
	return nil
}

// Release frees the backing buffer. Calling Release twice is a no-op.
func (v *Vec) Release() error {
	if v.released {
		return nil
	}
	v.released = true
	if v.ptr.IsNull() {
		return nil
	}
	err := v.a.Free(v.ptr, v.layout)
	v.ptr = heap.Null
	v.n, v.cap = 0, 0
	return err
}

func (v *Vec) slot(i int) ([]byte, error) {
	return v.a.Region().Slice(v.ptr.Add(i*v.elemSize), v.elemSize)
}

func (v *Vec) grow() error {
	newCap := max(minVecCap, v.cap*2)
	size, ok := buf.MulOverflowSafe(newCap, v.elemSize)
	if !ok {
		return fmt.Errorf("%w: %d x %d", ErrTooLarge, newCap, v.elemSize)
	}

	l := alloc.Layout{Size: size, Align: v.align}
	p, err := v.a.Alloc(l)
	if err != nil {
		return fmt.Errorf("vec grow to %d elements: %w", newCap, err)
	}

	oldPtr, oldLayout := v.ptr, v.layout
	if !oldPtr.IsNull() {
		r := v.a.Region()
		used := v.n * v.elemSize
		src, err := r.Slice(oldPtr, used)
		if err != nil {
			return errors.Join(err, v.a.Free(p, l))
		}
		dst, err := r.Slice(p, used)
		if err != nil {
			return errors.Join(err, v.a.Free(p, l))
		}
		copy(dst, src)
	}

	v.ptr, v.layout, v.cap = p, l, newCap
	if oldPtr.IsNull() {
		return nil
	}
	if err := v.a.Free(oldPtr, oldLayout); err != nil {
		return fmt.Errorf("vec release old buffer: %w", err)
	}
	return nil
}
