package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// Trace operations.
const (
	opAlloc = "alloc"
	opFree  = "free"
	opReset = "reset"
	opCheck = "check"
)

// Trace is a scripted sequence of allocator operations.
//
//	steps:
//	  - {op: alloc, id: a, size: 100, align: 8}
//	  - {op: free, id: a}
//	  - {op: reset}
//	  - {op: check}
type Trace struct {
	Steps []Step `yaml:"steps"`
}

// Step is one trace operation. Allocations are named by ID so later free
// steps can refer to them; Align defaults to 8.
type Step struct {
	Op    string `yaml:"op"`
	ID    string `yaml:"id,omitempty"`
	Size  int    `yaml:"size,omitempty"`
	Align int    `yaml:"align,omitempty"`
}

func loadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := parseTrace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// parseTrace decodes and validates a YAML trace. Unknown fields are rejected.
func parseTrace(data []byte) (*Trace, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Trace
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty trace")
		}
		return nil, err
	}

	for i := range t.Steps {
		st := &t.Steps[i]
		switch st.Op {
		case opAlloc:
			if st.Align == 0 {
				st.Align = alloc.LayoutOf(st.Size).Align
			}
			if _, err := alloc.NewLayout(st.Size, st.Align); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			fallthrough
		case opFree:
			if st.ID == "" {
				return nil, fmt.Errorf("step %d: %s needs an id", i, st.Op)
			}
		case opReset, opCheck:
		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return &t, nil
}

// StepResult is the outcome of one replayed step. Ptr is heap.Null for
// failed allocations and for steps that do not address memory.
type StepResult struct {
	Index int      `json:"index"`
	Op    string   `json:"op"`
	ID    string   `json:"id,omitempty"`
	Size  int      `json:"size,omitempty"`
	Align int      `json:"align,omitempty"`
	Ptr   heap.Ptr `json:"ptr"`
	OK    bool     `json:"ok"`
	Error string   `json:"error,omitempty"`
}

type liveAlloc struct {
	ptr    heap.Ptr
	layout alloc.Layout
}

// replayer applies trace steps to a session, remembering live
// allocations by ID.
type replayer struct {
	s    *session
	live map[string]liveAlloc
	must bool // route allocations through alloc.MustAlloc
}

func newReplayer(s *session, must bool) *replayer {
	return &replayer{s: s, live: make(map[string]liveAlloc), must: must}
}

func (rp *replayer) run(t *Trace) []StepResult {
	out := make([]StepResult, 0, len(t.Steps))
	for i, st := range t.Steps {
		res := rp.step(i, st)
		if !res.OK {
			logger.Warn("step failed", "index", i, "op", st.Op, "id", st.ID, "error", res.Error)
		}
		out = append(out, res)
	}
	return out
}

func (rp *replayer) step(i int, st Step) StepResult {
	res := StepResult{Index: i, Op: st.Op, ID: st.ID, Ptr: heap.Null}

	var err error
	switch st.Op {
	case opAlloc:
		res.Size, res.Align = st.Size, st.Align
		res.Ptr, err = rp.alloc(st)
	case opFree:
		res.Ptr, err = rp.free(st.ID)
	case opReset:
		if err = rp.s.reset(); err == nil {
			clear(rp.live)
		}
	case opCheck:
		err = rp.s.check()
	default:
		err = fmt.Errorf("unknown op %q", st.Op)
	}

	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

func (rp *replayer) alloc(st Step) (heap.Ptr, error) {
	if _, ok := rp.live[st.ID]; ok {
		return heap.Null, fmt.Errorf("id %q is already live", st.ID)
	}
	l, err := alloc.NewLayout(st.Size, st.Align)
	if err != nil {
		return heap.Null, err
	}

	var p heap.Ptr
	if rp.must {
		// The installed hook decides; if it returns, the step fails.
		if p = alloc.MustAlloc(rp.s.alloc, l); p.IsNull() {
			err = &alloc.AllocError{Layout: l}
		}
	} else {
		p, err = rp.s.alloc.Alloc(l)
	}
	if err != nil {
		return heap.Null, err
	}

	rp.live[st.ID] = liveAlloc{ptr: p, layout: l}
	return p, nil
}

func (rp *replayer) free(id string) (heap.Ptr, error) {
	la, ok := rp.live[id]
	if !ok {
		return heap.Null, fmt.Errorf("id %q is not live", id)
	}
	if err := rp.s.alloc.Free(la.ptr, la.layout); err != nil {
		return heap.Null, err
	}
	delete(rp.live, id)
	return la.ptr, nil
}
