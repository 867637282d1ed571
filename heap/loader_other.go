//go:build !unix

package heap

// Map falls back to a Go-heap region where anonymous mappings are not available.
func Map(size int) (*Region, error) {
	return New(size)
}
