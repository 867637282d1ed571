package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that no free block (free-list) or no remaining
	// capacity (bump) can satisfy the requested layout. Always paired with a
	// heap.Null result.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadLayout indicates a negative size or an alignment that is not a power of two.
	ErrBadLayout = errors.New("alloc: invalid layout")

	// ErrInvalidFree indicates a pointer/layout pair that does not match a live allocation.
	ErrInvalidFree = errors.New("alloc: invalid free")

	// ErrNotInit indicates use of a free-list allocator before Init.
	ErrNotInit = errors.New("alloc: allocator not initialized")

	// ErrAlreadyInit indicates a second Init call.
	ErrAlreadyInit = errors.New("alloc: allocator already initialized")

	// ErrBadRange indicates a managed range that is out of bounds or smaller than MinBlockSize.
	ErrBadRange = errors.New("alloc: bad heap range")

	// ErrCorrupt is returned by Check when an allocator invariant is broken.
	ErrCorrupt = errors.New("alloc: heap invariant violated")
)
