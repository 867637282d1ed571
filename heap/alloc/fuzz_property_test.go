package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_Property_RandomAllocFree performs random alloc/free sequences under
// every policy and validates the invariants after each step:
//   - live allocations are pairwise disjoint and correctly aligned
//   - allocator bookkeeping passes Check
//   - no live allocation is overwritten by another allocation's writes
func Test_Property_RandomAllocFree(t *testing.T) {
	aligns := []int{1, 2, 4, 8, 16, 32, 64}

	for _, pol := range policies {
		t.Run(pol.name, func(t *testing.T) {
			fa := newTestFreeList(t, 8192, pol.opts...)
			r := fa.Region()
			rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility

			var live []liveAlloc
			patterns := map[int]byte{}
			failures := 0

			for i := range 2000 {
				if len(live) == 0 || rng.Intn(3) != 0 {
					l := Layout{Size: rng.Intn(300), Align: aligns[rng.Intn(len(aligns))]}
					p, err := fa.Alloc(l)
					if err != nil {
						require.ErrorIs(t, err, ErrOutOfMemory, "step %d", i)
						require.True(t, p.IsNull(), "step %d", i)
						failures++
						continue
					}
					require.Zero(t, int(p)%l.Align, "step %d: %s not aligned to %d", i, p, l.Align)
					a := liveAlloc{p: p, l: l}
					fill(t, r, a, byte(i))
					patterns[int(p)] = byte(i)
					live = append(live, a)
				} else {
					k := rng.Intn(len(live))
					a := live[k]
					requireFilled(t, r, a, patterns[int(a.p)])
					require.NoError(t, fa.Free(a.p, a.l), "step %d", i)
					delete(patterns, int(a.p))
					live[k] = live[len(live)-1]
					live = live[:len(live)-1]
				}

				requireDisjoint(t, live)
				require.NoError(t, fa.Check(), "step %d", i)
			}

			for _, a := range live {
				requireFilled(t, r, a, patterns[int(a.p)])
				require.NoError(t, fa.Free(a.p, a.l))
			}
			require.NoError(t, fa.Check())
			require.Zero(t, fa.Stats().LiveAllocs)
			require.Equal(t, 8192, fa.Stats().FreeBytes, "every byte is reclaimed once all allocations are freed")
			t.Logf("%s: %d allocation failures", pol.name, failures)
		})
	}
}

// Test_Property_BumpRandom validates bump invariants over random requests.
func Test_Property_BumpRandom(t *testing.T) {
	ba := NewBump(newTestRegion(t, 16384))
	rng := rand.New(rand.NewSource(7))

	for round := range 3 {
		var live []liveAlloc
		for {
			l := Layout{Size: rng.Intn(200), Align: 1 << rng.Intn(7)}
			p, err := ba.Alloc(l)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory)
				break
			}
			require.Zero(t, int(p)%l.Align)
			require.LessOrEqual(t, int(p)+l.Size, ba.Used())
			require.LessOrEqual(t, ba.Used(), ba.Size())
			live = append(live, liveAlloc{p: p, l: l})
		}
		requireDisjoint(t, live)
		t.Logf("round %d: %d allocations, %d bytes used", round, len(live), ba.Used())
		ba.Reset()
	}
}
