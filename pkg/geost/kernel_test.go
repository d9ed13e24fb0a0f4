package geost

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two-object configurations from the Tetris suite. Shape 1 is an L made
// of a 1x2 column and a 2x1 cap shifted left.
var (
	lShape = []ShiftedBox{
		NewShiftedBox(1, []int{0, 0}, []int{1, 2}),
		NewShiftedBox(1, []int{-1, 2}, []int{2, 1}),
	}
	scenarioA = scenario{
		name:  "cap collides",
		boxes: append(append([]ShiftedBox{}, lShape...), NewShiftedBox(2, []int{0, 2}, []int{2, 1})),
		objs: []objSpec{
			{id: 1, shapes: []int{1}, lo: []int{2, 1}, hi: []int{2, 1}},
			{id: 2, shapes: []int{2}, lo: []int{1, 1}, hi: []int{1, 1}},
		},
		want: 0,
	}
	scenarioB = scenario{
		name: "mirrored pair fits once",
		boxes: append(append([]ShiftedBox{}, lShape...),
			NewShiftedBox(2, []int{0, 0}, []int{1, 2}),
			NewShiftedBox(2, []int{0, 2}, []int{2, 1})),
		objs: []objSpec{
			{id: 1, shapes: []int{1}, lo: []int{1, 1}, hi: []int{2, 1}},
			{id: 2, shapes: []int{2}, lo: []int{1, 1}, hi: []int{2, 1}},
		},
		want: 1,
	}
	scenarioBar = scenario{
		name:  "bar on the cap",
		boxes: append(append([]ShiftedBox{}, lShape...), NewShiftedBox(2, []int{0, 0}, []int{2, 1})),
		objs: []objSpec{
			{id: 1, shapes: []int{1}, lo: []int{2, 1}, hi: []int{2, 1}},
			{id: 2, shapes: []int{2}, lo: []int{1, 3}, hi: []int{1, 3}},
		},
		want: 0,
	}
)

type scenario struct {
	name  string
	boxes []ShiftedBox
	objs  []objSpec
	want  int
}

func (sc scenario) nonOverlap() []ExternalConstraint {
	ids := make([]int, len(sc.objs))
	for i, o := range sc.objs {
		ids[i] = o.id
	}
	return []ExternalConstraint{NewNonOverlapping(nil, ids...)}
}

func TestScenarios_SolutionCounts(t *testing.T) {
	for _, sc := range []scenario{scenarioA, scenarioB, scenarioBar} {
		t.Run(sc.name, func(t *testing.T) {
			m := newModel(t, 2, sc.boxes, sc.objs, DefaultOptions(), sc.nonOverlap()...)
			assert.Equal(t, sc.want, m.count(t))
			assert.Equal(t, sc.want, bruteCount(2, sc.objs, disjoint(shapeTable(sc.boxes))))
		})
	}
}

func TestScenarios_GreedyMatchesFiltering(t *testing.T) {
	vectors := []ControlVector{{1, 2, 3}, {-1, -3, 2}, {1, -2, -3}}
	for _, sc := range []scenario{scenarioA, scenarioB, scenarioBar} {
		for _, cv := range vectors {
			t.Run(sc.name, func(t *testing.T) {
				plain := newModel(t, 2, sc.boxes, sc.objs, DefaultOptions(), sc.nonOverlap()...)
				greedy := newModel(t, 2, sc.boxes, sc.objs, NewOptions(WithGreedy(cv)), sc.nonOverlap()...)
				incr := newModel(t, 2, sc.boxes, sc.objs, NewOptions(WithGreedy(cv), WithIncrement(true)), sc.nonOverlap()...)
				want := plain.count(t)
				assert.Equal(t, want, greedy.count(t), "greedy %v", []int(cv))
				assert.Equal(t, want, incr.count(t), "incremental greedy %v", []int(cv))
			})
		}
	}
}

func TestGreedy_PlacesEverythingAtTheRoot(t *testing.T) {
	boxes := []ShiftedBox{NewShiftedBox(1, []int{0, 0}, []int{2, 2})}
	objs := []objSpec{
		{id: 1, shapes: []int{1}, lo: []int{0, 0}, hi: []int{3, 1}},
		{id: 2, shapes: []int{1}, lo: []int{0, 0}, hi: []int{3, 1}},
	}
	m := newModel(t, 2, boxes, objs, NewOptions(WithGreedy(ControlVector{1, 2, 3})), NewNonOverlapping(nil, 1, 2))
	require.NoError(t, m.store.Propagate(context.Background()))
	for _, o := range m.objects {
		require.True(t, o.IsFixed(), "%v", o)
	}
	assert.Equal(t, Point{0, 0}, m.objects[0].Lower())
	assert.Equal(t, Point{2, 0}, m.objects[1].Lower())
	st := m.counters.Stats()
	assert.Equal(t, 1, st.GreedySuccesses)

	e, err := m.geost.IsEntailed()
	require.NoError(t, err)
	assert.Equal(t, Entailed, e)
}

func TestGreedy_FallsBackWithoutSideEffects(t *testing.T) {
	boxes := []ShiftedBox{NewShiftedBox(1, []int{0, 0}, []int{2, 1})}
	// objects 2 and 3 leave no room for object 1
	objs := []objSpec{
		{id: 1, shapes: []int{1}, lo: []int{0, 0}, hi: []int{2, 0}},
		{id: 2, shapes: []int{1}, lo: []int{2, 0}, hi: []int{2, 0}},
		{id: 3, shapes: []int{1}, lo: []int{0, 0}, hi: []int{0, 0}},
	}
	m := newModel(t, 2, boxes, objs, NewOptions(WithGreedy(ControlVector{1, 2, 3})), NewNonOverlapping(nil, 1, 2, 3))
	err := m.store.Propagate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomainContradiction)
	st := m.counters.Stats()
	assert.Equal(t, 1, st.GreedyAttempts)
	assert.Equal(t, 0, st.GreedySuccesses)
}

func TestPrune_NarrowsBounds(t *testing.T) {
	boxes := []ShiftedBox{NewShiftedBox(1, []int{0, 0}, []int{3, 1})}
	objs := []objSpec{
		{id: 1, shapes: []int{1}, lo: []int{0, 0}, hi: []int{5, 0}},
		{id: 2, shapes: []int{1}, lo: []int{0, 0}, hi: []int{0, 0}},
	}
	m := newModel(t, 2, boxes, objs, DefaultOptions(), NewNonOverlapping(nil, 1, 2))
	require.NoError(t, m.store.Propagate(context.Background()))
	assert.Equal(t, 3, m.objects[0].Coord(0).LB())
	assert.Equal(t, 5, m.objects[0].Coord(0).UB())
}

func TestFilterObj_RemovesImpossibleShapes(t *testing.T) {
	boxes := []ShiftedBox{
		NewShiftedBox(1, []int{0, 0}, []int{4, 1}),
		NewShiftedBox(2, []int{0, 0}, []int{1, 1}),
		NewShiftedBox(3, []int{0, 0}, []int{2, 2}),
	}
	objs := []objSpec{
		{id: 1, shapes: []int{1, 2, 3}, lo: []int{1, 0}, hi: []int{2, 1}},
		{id: 2, shapes: []int{2}, lo: []int{0, 0}, hi: []int{0, 1}},
	}
	m := newModel(t, 2, boxes, objs, DefaultOptions(),
		NewNonOverlapping(nil, 1, 2),
		NewIncluded(nil, []int{0, 0}, []int{3, 2}, 1, 2))
	require.NoError(t, m.store.Propagate(context.Background()))
	assert.Equal(t, []int{2, 3}, m.objects[0].ShapeVar().Values())
	assert.Equal(t, bruteCount(2, objs, func(pl placement) bool {
		return disjoint(shapeTable(boxes))(pl) && inContainer(shapeTable(boxes), pl, Point{0, 0}, Point{3, 2})
	}), m.count(t))
}

func inContainer(shapes map[int]*Shape, pl placement, t, l Point) bool {
	for i, sid := range pl.shapes {
		for _, b := range shapes[sid].Boxes {
			for d := range t {
				lo := pl.origins[i][d] + b.Offset[d]
				if lo < t[d] || lo+b.Size[d] > t[d]+l[d] {
					return false
				}
			}
		}
	}
	return true
}

func TestRandomProblems_MatchBruteForce(t *testing.T) {
	library := []ShiftedBox{
		NewShiftedBox(1, []int{0, 0}, []int{1, 1}),
		NewShiftedBox(2, []int{0, 0}, []int{2, 1}),
		NewShiftedBox(3, []int{0, 0}, []int{1, 2}),
		NewShiftedBox(4, []int{0, 0}, []int{1, 2}),
		NewShiftedBox(4, []int{1, 1}, []int{1, 1}),
		NewShiftedBox(5, []int{0, 0}, []int{2, 1}),
		NewShiftedBox(5, []int{-1, 1}, []int{2, 1}),
	}
	shapes := shapeTable(library)
	rng := rand.New(rand.NewPCG(2024, 10))
	for round := 0; round < 40; round++ {
		n := 2 + rng.IntN(2)
		objs := make([]objSpec, n)
		ids := make([]int, n)
		for i := range objs {
			lo := []int{rng.IntN(3), rng.IntN(3)}
			hi := []int{lo[0] + rng.IntN(3), lo[1] + rng.IntN(2)}
			cand := []int{1 + rng.IntN(5)}
			if rng.IntN(2) == 0 {
				if extra := 1 + rng.IntN(5); extra != cand[0] {
					cand = append(cand, extra)
				}
			}
			objs[i] = objSpec{id: i + 1, shapes: cand, lo: lo, hi: hi}
			ids[i] = i + 1
		}
		want := bruteCount(2, objs, disjoint(shapes))
		for _, memo := range []bool{true, false} {
			m := newModel(t, 2, library, objs, NewOptions(WithMemoisation(memo)), NewNonOverlapping(nil, ids...))
			require.Equal(t, want, m.count(t), "round %d memo=%v objects %+v", round, memo, objs)
		}
	}
}

func TestNonOverlapping_RestrictedDims(t *testing.T) {
	// only x matters: the bars may share cells in y
	boxes := []ShiftedBox{NewShiftedBox(1, []int{0, 0}, []int{2, 1})}
	objs := []objSpec{
		{id: 1, shapes: []int{1}, lo: []int{0, 0}, hi: []int{3, 1}},
		{id: 2, shapes: []int{1}, lo: []int{0, 0}, hi: []int{3, 1}},
	}
	m := newModel(t, 2, boxes, objs, DefaultOptions(), NewNonOverlapping([]int{0}, 1, 2))
	want := bruteCount(2, objs, func(pl placement) bool {
		a, b := pl.origins[0][0], pl.origins[1][0]
		return a+2 <= b || b+2 <= a
	})
	assert.Equal(t, want, m.count(t))
}

func TestIncludedPairs_SkipSeparation(t *testing.T) {
	boxes := []ShiftedBox{NewShiftedBox(1, []int{0, 0}, []int{1, 1})}
	objs := []objSpec{
		{id: 1, shapes: []int{1}, lo: []int{0, 0}, hi: []int{1, 0}},
		{id: 2, shapes: []int{1}, lo: []int{0, 0}, hi: []int{1, 0}},
	}
	m := newModel(t, 2, boxes, objs, NewOptions(WithIncludedPairs(ObjectPair{2, 1})), NewNonOverlapping(nil, 1, 2))
	assert.Equal(t, 4, m.count(t))
}
