package alloc

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/heapkit/heap"
)

// AllocError is the panic value raised by the default allocation-error hook.
type AllocError struct {
	Layout Layout
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("memory allocation of %d bytes (align %d) failed", e.Layout.Size, e.Layout.Align)
}

func (e *AllocError) Unwrap() error { return ErrOutOfMemory }

// IsOutOfMemory reports whether err signals allocation failure.
func IsOutOfMemory(err error) bool { return errors.Is(err, ErrOutOfMemory) }

var allocErrorHook atomic.Pointer[func(Layout)]

// SetAllocErrorHook installs the program-wide policy for allocation failure
// observed through MustAlloc and returns the previous hook (nil for the
// default). Passing nil restores the default, which panics with *AllocError.
//
// The allocators never call the hook themselves; it belongs to the program.
func SetAllocErrorHook(hook func(Layout)) func(Layout) {
	var prev *func(Layout)
	if hook == nil {
		prev = allocErrorHook.Swap(nil)
	} else {
		prev = allocErrorHook.Swap(&hook)
	}
	if prev == nil {
		return nil
	}
	return *prev
}

// HandleAllocError runs the installed hook for l, or panics with *AllocError
// when none is installed.
func HandleAllocError(l Layout) {
	if hook := allocErrorHook.Load(); hook != nil {
		(*hook)(l)
		return
	}
	panic(&AllocError{Layout: l})
}

// MustAlloc allocates from a and hands exhaustion to HandleAllocError.
// If the hook returns, MustAlloc returns heap.Null. Malformed layouts are
// programming errors and panic.
func MustAlloc(a Allocator, l Layout) heap.Ptr {
	p, err := a.Alloc(l)
	switch {
	case err == nil:
		return p
	case IsOutOfMemory(err):
		HandleAllocError(l)
		return heap.Null
	default:
		panic(err)
	}
}
