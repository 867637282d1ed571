package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

func TestParseTrace(t *testing.T) {
	tr, err := parseTrace([]byte(`
steps:
  - {op: alloc, id: a, size: 24}
  - {op: alloc, id: b, size: 0, align: 64}
  - {op: free, id: a}
  - {op: reset}
  - {op: check}
`))
	require.NoError(t, err)
	require.Len(t, tr.Steps, 5)
	assert.Equal(t, Step{Op: opAlloc, ID: "a", Size: 24, Align: 8}, tr.Steps[0], "align defaults to 8")
	assert.Equal(t, 64, tr.Steps[1].Align)
	assert.Equal(t, opReset, tr.Steps[3].Op)
}

func TestParseTrace_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "empty", data: "", wantErr: "empty trace"},
		{name: "unknown op", data: "steps: [{op: realloc, id: a}]", wantErr: `unknown op "realloc"`},
		{name: "alloc without id", data: "steps: [{op: alloc, size: 8}]", wantErr: "needs an id"},
		{name: "free without id", data: "steps: [{op: free}]", wantErr: "needs an id"},
		{name: "bad align", data: "steps: [{op: alloc, id: a, size: 8, align: 3}]", wantErr: "power of two"},
		{name: "negative size", data: "steps: [{op: alloc, id: a, size: -1}]", wantErr: "negative size"},
		{name: "unknown field", data: "steps: [{op: alloc, id: a, bytes: 8}]", wantErr: "bytes"},
		{name: "not yaml", data: "steps: [", wantErr: "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTrace([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTrace_Missing(t *testing.T) {
	_, err := loadTrace("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func newTestSession(t *testing.T, kind string, size int) *session {
	t.Helper()
	resetFlags(t)
	allocKind = kind
	s, err := newSession(size)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplayer_FreeList(t *testing.T) {
	s := newTestSession(t, kindFreeList, 256)
	tr, err := loadTrace(testTracePath(t, "exhaust.yaml"))
	require.NoError(t, err)

	res := newReplayer(s, false).run(tr)
	require.Len(t, res, 5)

	assert.True(t, res[0].OK)
	assert.Equal(t, heap.Ptr(0), res[0].Ptr)

	assert.False(t, res[1].OK, "only 56 bytes remain")
	assert.Equal(t, heap.Null, res[1].Ptr)
	assert.Contains(t, res[1].Error, "out of memory")

	assert.False(t, res[2].OK)
	assert.Contains(t, res[2].Error, `"missing" is not live`)

	assert.True(t, res[3].OK)
	assert.Equal(t, heap.Ptr(0), res[3].Ptr, "free reports the released offset")

	assert.True(t, res[4].OK, "freed block is reused")
	assert.Equal(t, heap.Ptr(0), res[4].Ptr)

	require.NoError(t, s.check())
}

func TestReplayer_DuplicateID(t *testing.T) {
	s := newTestSession(t, kindFreeList, 256)
	rp := newReplayer(s, false)

	first := rp.step(0, Step{Op: opAlloc, ID: "x", Size: 8, Align: 8})
	require.True(t, first.OK)
	second := rp.step(1, Step{Op: opAlloc, ID: "x", Size: 8, Align: 8})
	assert.False(t, second.OK)
	assert.Contains(t, second.Error, "already live")
}

func TestReplayer_Reset(t *testing.T) {
	t.Run("bump", func(t *testing.T) {
		s := newTestSession(t, kindBump, 256)
		rp := newReplayer(s, false)

		require.True(t, rp.step(0, Step{Op: opAlloc, ID: "a", Size: 200, Align: 8}).OK)
		require.True(t, rp.step(1, Step{Op: opReset}).OK)
		assert.Empty(t, rp.live)

		again := rp.step(2, Step{Op: opAlloc, ID: "a", Size: 200, Align: 8})
		require.True(t, again.OK)
		assert.Equal(t, heap.Ptr(0), again.Ptr)
	})

	t.Run("freelist", func(t *testing.T) {
		s := newTestSession(t, kindFreeList, 256)
		res := newReplayer(s, false).step(0, Step{Op: opReset})
		assert.False(t, res.OK)
		assert.Contains(t, res.Error, "only supported by the bump allocator")
	})
}

func TestReplayer_MustAllocHook(t *testing.T) {
	s := newTestSession(t, kindBump, 64)

	var failed []alloc.Layout
	prev := alloc.SetAllocErrorHook(func(l alloc.Layout) { failed = append(failed, l) })
	defer alloc.SetAllocErrorHook(prev)

	rp := newReplayer(s, true)
	ok := rp.step(0, Step{Op: opAlloc, ID: "a", Size: 48, Align: 8})
	require.True(t, ok.OK)

	res := rp.step(1, Step{Op: opAlloc, ID: "b", Size: 48, Align: 8})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "memory allocation of 48 bytes")
	assert.Equal(t, []alloc.Layout{{Size: 48, Align: 8}}, failed)
	assert.NotContains(t, rp.live, "b")
}

func TestNewSession_UnknownAllocator(t *testing.T) {
	resetFlags(t)
	allocKind = "slab"
	_, err := newSession(1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown allocator "slab"`)
}

func TestNewSession_Mmap(t *testing.T) {
	resetFlags(t)
	useMmap = true
	s, err := newSession(4096)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.alloc.Alloc(alloc.LayoutOf(64))
	require.NoError(t, err)
	require.NoError(t, s.region.PutU64(p, 0xfeedface))
	v, err := s.region.U64(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xfeedface), v)
}
