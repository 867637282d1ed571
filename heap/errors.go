package heap

import "errors"

var (
	// ErrBadSize indicates a non-positive region size.
	ErrBadSize = errors.New("heap: region size must be positive")

	// ErrNullPtr indicates an access through the Null sentinel.
	ErrNullPtr = errors.New("heap: null pointer")

	// ErrOutOfBounds indicates an access that does not fit inside the region.
	ErrOutOfBounds = errors.New("heap: access out of bounds")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("heap: region closed")
)
