package geost

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kindsAround returns one constraint of every kind over a 2D object whose
// domain is [0,7]².
func kindsAround(t *testing.T, rng *rand.Rand) (*Object, []InternalConstraint) {
	t.Helper()
	s, self := newBareObject(t, 1, []int{0, 0}, []int{7, 7})
	other := NewObject(2, s.Const(1), s.MustIntVar("ox", 2, 4), s.MustIntVar("oy", 3, 3))
	box := func() ([]int, []int) {
		return []int{rng.IntN(8), rng.IntN(8)}, []int{1 + rng.IntN(4), 1 + rng.IntN(4)}
	}
	ot, ol := box()
	it, il := box()
	dp := distPair{
		Q: 2, D: 1 + rng.IntN(4), S1: 1, S2: 1, O1: 1, O2: 2,
		self: self, other: other,
		selfBox:  NewShiftedBox(1, []int{0, 0}, []int{1 + rng.IntN(2), 1 + rng.IntN(2)}),
		otherBox: NewShiftedBox(1, []int{rng.IntN(2), 0}, []int{1, 1 + rng.IntN(2)}),
	}
	a := []int{rng.IntN(5) - 2, rng.IntN(5) - 2}
	return self, []InternalConstraint{
		NewOutbox(ot, ol),
		NewInbox(it, il),
		&DistGeqIC{dp},
		&DistLeqIC{dp},
		&DistLinearIC{A: a, O1: 1, D: rng.IntN(10) - 3},
	}
}

func TestIsFeasible_BoxIsForbiddenAndReachesForward(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 60; round++ {
		o, ictrs := kindsAround(t, rng)
		lo, hi := o.Lower(), o.Upper()
		for _, ic := range ictrs {
			for d := 0; d < 2; d++ {
				for _, min := range []bool{true, false} {
					jump := Point{hi[0] + 1, hi[1] + 1}
					if !min {
						jump = Point{lo[0] - 1, lo[1] - 1}
					}
					eachPoint(lo, hi, func(p Point) {
						got, f := IsFeasible(ic, min, d, 2, o, p, jump)
						if !ic.InsideForbidden(p) {
							require.Nil(t, f, "%v at %v", ic, p)
							require.Equal(t, p, got)
							return
						}
						require.NotNil(t, f, "%v at %v", ic, p)
						require.True(t, f.Contains(p), "%v: box %v misses %v", ic, *f, p)
						if min {
							require.GreaterOrEqual(t, f.Max[d], p[d])
						} else {
							require.LessOrEqual(t, f.Min[d], p[d])
						}
						eachPoint(f.Min, f.Max, func(q Point) {
							require.True(t, ic.InsideForbidden(q), "%v: box %v holds allowed %v", ic, *f, q)
						})
					})
				}
			}
		}
	}
}

func TestLexInfeasible_NeverAfterFirstForbidden(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 4))
	for round := 0; round < 60; round++ {
		o, ictrs := kindsAround(t, rng)
		for _, ic := range ictrs {
			for d := 0; d < 2; d++ {
				for _, min := range []bool{true, false} {
					ord := rotatedOrder(2, d, min)
					var first Point
					eachPoint(o.Lower(), o.Upper(), func(p Point) {
						if ic.InsideForbidden(p) && (first == nil || ord.precedes(p, first)) {
							first = p
						}
					})
					key, ok := LexInfeasible(ic, min, d, 2, o)
					if first == nil {
						if _, exact := ic.(*Outbox); exact {
							assert.False(t, ok, "%v", ic)
						}
						continue
					}
					require.True(t, ok, "%v forbids %v", ic, first)
					assert.True(t, ord.precedes(key, first), "%v: key %v after %v", ic, key, first)
				}
			}
		}
	}
}

func TestCardInfeasible(t *testing.T) {
	_, o := newBareObject(t, 1, []int{0, 0}, []int{3, 3})
	assert.Equal(t, int64(4), CardInfeasible(NewOutbox([]int{2, 2}, []int{5, 5}), 2, o))
	assert.Equal(t, int64(0), CardInfeasible(NewOutbox([]int{5, 0}, []int{1, 1}), 2, o))
	assert.Equal(t, int64(12), CardInfeasible(NewInbox([]int{0, 0}, []int{2, 2}), 2, o))
	assert.Equal(t, int64(0), CardInfeasible(NewInbox([]int{-1, -1}, []int{9, 9}), 2, o))
	assert.Equal(t, int64(16), CardInfeasible(NewInbox([]int{0, 0}, []int{0, 2}), 2, o))
	assert.Equal(t, int64(-1), CardInfeasible(&DistLinearIC{A: []int{1, 0}}, 2, o))
}
