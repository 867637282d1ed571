package objects

import "errors"

var (
	// ErrReleased indicates use of an object after Release.
	ErrReleased = errors.New("objects: use after release")

	// ErrIndex indicates a vector index outside [0, Len()).
	ErrIndex = errors.New("objects: index out of range")

	// ErrElemSize indicates an element whose length does not match the vector element size.
	ErrElemSize = errors.New("objects: element size mismatch")

	// ErrTooLarge indicates a capacity whose byte size overflows int.
	ErrTooLarge = errors.New("objects: capacity overflow")
)
