package alloc

import (
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// alignUp rounds off up to align, reporting false on int overflow.
func alignUp(off, align int) (int, bool) {
	if _, ok := buf.AddOverflowSafe(off, align-1); !ok {
		return 0, false
	}
	return format.AlignUp(off, align), true
}

// blockSize returns the number of bytes a free-list carve-out for size needs:
// size rounded up to BlockAlign and never below MinBlockSize.
func blockSize(size int) (int, bool) {
	if _, ok := buf.AddOverflowSafe(size, format.BlockAlignMask); !ok {
		return 0, false
	}
	return max(format.Align8(size), MinBlockSize), true
}
