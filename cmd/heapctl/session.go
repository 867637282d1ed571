package main

import (
	"fmt"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

const (
	kindBump     = "bump"
	kindFreeList = "freelist"
)

// session is one region and the allocator that owns it, built from the
// global flags.
type session struct {
	kind   string
	region *heap.Region
	alloc  alloc.Allocator

	bump *alloc.BumpAllocator
	fl   *alloc.FreeListAllocator
}

func newSession(size int) (*session, error) {
	var (
		r   *heap.Region
		err error
	)
	if useMmap {
		r, err = heap.Map(size)
	} else {
		r, err = heap.New(size)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %d-byte region: %w", size, err)
	}

	s := &session{kind: allocKind, region: r}
	switch allocKind {
	case kindBump:
		s.bump = alloc.NewBump(r, alloc.WithLogger(logger.L))
		s.alloc = s.bump
	case kindFreeList:
		s.fl = alloc.NewFreeList(r,
			alloc.WithSplit(split),
			alloc.WithCoalesce(coalesce),
			alloc.WithLogger(logger.L))
		if err := s.fl.Init(); err != nil {
			r.Close()
			return nil, err
		}
		s.alloc = s.fl
	default:
		r.Close()
		return nil, fmt.Errorf("unknown allocator %q (want %s or %s)", allocKind, kindBump, kindFreeList)
	}

	logger.Debug("session ready", "allocator", allocKind, "size", size,
		"mapped", r.Mapped(), "split", split, "coalesce", coalesce)
	return s, nil
}

func (s *session) Close() error { return s.region.Close() }

func (s *session) stats() alloc.Stats {
	if s.bump != nil {
		return s.bump.Stats()
	}
	return s.fl.Stats()
}

// reset reclaims every allocation at once. Only the bump allocator supports it.
func (s *session) reset() error {
	if s.bump == nil {
		return fmt.Errorf("reset is only supported by the %s allocator", kindBump)
	}
	s.bump.Reset()
	return nil
}

// check verifies allocator invariants. A bump allocator has none beyond
// its bounds, which Alloc enforces.
func (s *session) check() error {
	if s.fl == nil {
		return nil
	}
	return s.fl.Check()
}

// policy describes the active configuration for reports.
func (s *session) policy() string {
	if s.bump != nil {
		return kindBump
	}
	return fmt.Sprintf("%s(split=%t,coalesce=%t)", kindFreeList, split, coalesce)
}
