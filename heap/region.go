package heap

import (
	"fmt"
	"strconv"

	"github.com/joshuapare/heapkit/internal/buf"
)

// HeapSize is the default region capacity in bytes.
const HeapSize = 65536

// Ptr is a byte offset from the start of a Region.
type Ptr int

// Null is the sentinel returned when an allocation cannot be satisfied.
const Null Ptr = -1

// IsNull reports whether p is the Null sentinel (or any negative offset).
func (p Ptr) IsNull() bool { return p < 0 }

// Add returns p advanced by n bytes. Null stays Null.
func (p Ptr) Add(n int) Ptr {
	if p.IsNull() {
		return Null
	}
	return p + Ptr(n)
}

func (p Ptr) String() string {
	if p.IsNull() {
		return "null"
	}
	return "0x" + strconv.FormatInt(int64(p), 16)
}

// Region is a fixed-capacity byte buffer addressed by Ptr offsets.
//
// NOT thread-safe. The owning allocator serialises bookkeeping; callers may
// read and write their own allocations concurrently as long as those do not
// overlap.
type Region struct {
	data    []byte
	release func() error
	mapped  bool
}

// New creates a zeroed region of size bytes on the Go heap.
func New(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	return &Region{data: make([]byte, size)}, nil
}

// Wrap creates a region over an externally supplied byte range. The region
// takes ownership of b; the caller must not write into it afterwards.
func Wrap(b []byte) (*Region, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, len(b))
	}
	return &Region{data: b}, nil
}

// Size returns the capacity of the region in bytes.
func (r *Region) Size() int { return len(r.data) }

// Mapped reports whether the region is backed by an OS mapping.
func (r *Region) Mapped() bool { return r.mapped }

// Bytes returns the whole backing buffer. Intended for allocator bookkeeping
// and diagnostics; program code should go through Slice.
func (r *Region) Bytes() []byte { return r.data }

// Contains reports whether [p, p+n) lies within the region.
func (r *Region) Contains(p Ptr, n int) bool {
	if p.IsNull() {
		return false
	}
	return buf.Has(r.data, int(p), n)
}

// Slice returns the n bytes starting at p. The slice capacity is clipped to n.
func (r *Region) Slice(p Ptr, n int) ([]byte, error) {
	if r.data == nil {
		return nil, ErrClosed
	}
	if p.IsNull() {
		return nil, ErrNullPtr
	}
	if _, err := buf.CheckRange(len(r.data), int(p), n); err != nil {
		return nil, fmt.Errorf("%w: ptr=%s len=%d: %w", ErrOutOfBounds, p, n, err)
	}
	b, _ := buf.Slice(r.data, int(p), n)
	return b, nil
}

// U32 reads a little-endian uint32 at p.
func (r *Region) U32(p Ptr) (uint32, error) {
	b, err := r.Slice(p, 4)
	if err != nil {
		return 0, err
	}
	return buf.U32LE(b), nil
}

// PutU32 writes v as little-endian at p.
func (r *Region) PutU32(p Ptr, v uint32) error {
	b, err := r.Slice(p, 4)
	if err != nil {
		return err
	}
	buf.PutU32LE(b, v)
	return nil
}

// U64 reads a little-endian uint64 at p.
func (r *Region) U64(p Ptr) (uint64, error) {
	b, err := r.Slice(p, 8)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(b), nil
}

// PutU64 writes v as little-endian at p.
func (r *Region) PutU64(p Ptr, v uint64) error {
	b, err := r.Slice(p, 8)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, v)
	return nil
}

// Close releases the backing memory. Subsequent accesses fail with ErrClosed.
// Calling Close more than once is a no-op.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	var err error
	if r.release != nil {
		err = r.release()
	}
	r.data = nil
	r.release = nil
	return err
}
