//go:build unix

package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestMap_PageAlignedAndZeroed(t *testing.T) {
	r, err := Map(10000)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, r.Close())
	}()

	require.True(t, r.Mapped())
	require.Equal(t, 10000, r.Size(), "region size must be the requested size, not the page-rounded length")

	base := uintptr(unsafe.Pointer(&r.Bytes()[0]))
	require.Zero(t, base%format.PageSize, "mapping must start on a page boundary")

	for i, b := range r.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: 0x%x", i, b)
		}
	}

	require.NoError(t, r.PutU64(9992, 42))
	v, err := r.U64(9992)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)
}

func TestMap_RejectsBadSize(t *testing.T) {
	_, err := Map(0)
	require.ErrorIs(t, err, ErrBadSize)
}
