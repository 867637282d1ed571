// Package format holds the alignment arithmetic shared by the heap allocators.
package format

// Alignment utilities for heap offsets. Every alignment handled here is a
// power of two, so rounding is done with masks rather than division.

const (
	// BlockAlign is the granularity of free-list blocks.
	BlockAlign = 8

	// BlockAlignMask is BlockAlign-1.
	BlockAlignMask = BlockAlign - 1

	// PageSize is the size of an OS page on the platforms heap.Map targets.
	PageSize = 4096
)

// IsPow2 reports whether n is a power of two (1, 2, 4, ...).
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two. The caller is responsible for overflow
// checks when n is close to math.MaxInt.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 16) = 16
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Padding returns the number of bytes needed to move n up to a multiple of align.
func Padding(n, align int) int {
	return AlignUp(n, align) - n
}

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + BlockAlignMask) &^ BlockAlignMask
}

// AlignPage returns n aligned up to the next 4KB boundary.
func AlignPage(n int) int {
	return AlignUp(n, PageSize)
}
