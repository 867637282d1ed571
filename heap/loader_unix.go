//go:build unix

package heap

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"golang.org/x/sys/unix"
)

// Map creates a region backed by an anonymous private mapping of at least size
// bytes, rounded up to whole pages. The mapping starts on a page boundary and
// is zero-filled by the kernel. Close unmaps it.
func Map(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	length := format.AlignPage(size)
	data, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	return &Region{
		data:   data[:size:size],
		mapped: true,
		release: func() error {
			err := unix.Munmap(data)
			if errors.Is(err, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				return nil
			}
			return err
		},
	}, nil
}
