// Package objects implements the dynamic-memory constructs a freestanding
// program allocates through its installed heap allocator: growable vectors,
// owned strings and fixed-size boxes.
//
// Every object records the Layout it was allocated with and frees itself
// with the same Layout, so it works unchanged over any alloc.Allocator.
// Objects must be released explicitly; a BumpAllocator ignores the release
// and reclaims on Reset.
package objects
