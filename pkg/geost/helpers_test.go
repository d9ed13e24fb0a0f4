package geost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/geost/pkg/fd"
)

// objSpec describes a test object: candidate shapes and an origin box.
type objSpec struct {
	id     int
	shapes []int
	lo, hi []int
}

// model is a small placement problem posted on its own store.
type model struct {
	store   *fd.Store
	geost   *Geost
	objects []*Object
	// decision lists shape then coordinate variables, object by object.
	decision []*fd.IntVar
	counters *Counters
}

func newModel(t testing.TB, k int, boxes []ShiftedBox, objs []objSpec, opts Options, ectrs ...ExternalConstraint) *model {
	t.Helper()
	m := &model{store: fd.NewStore(), counters: NewCounters()}
	for _, spec := range objs {
		shape := m.store.MustEnumVar("s", spec.shapes...)
		coords := make([]*fd.IntVar, k)
		for d := range coords {
			coords[d] = m.store.MustIntVar("x", spec.lo[d], spec.hi[d])
		}
		o := NewObject(spec.id, shape, coords...)
		m.objects = append(m.objects, o)
		m.decision = append(m.decision, shape)
		m.decision = append(m.decision, coords...)
	}
	g, err := New(m.store, Config{
		Dimension:   k,
		Objects:     m.objects,
		Boxes:       boxes,
		Constraints: ectrs,
		Options:     opts,
		Metrics:     m.counters,
	})
	require.NoError(t, err)
	m.geost = g
	return m
}

func (m *model) count(t testing.TB) int {
	t.Helper()
	n, err := m.store.Count(context.Background(), m.decision)
	require.NoError(t, err)
	return n
}

// shapeTable indexes boxes by shape id.
func shapeTable(boxes []ShiftedBox) map[int]*Shape {
	out := make(map[int]*Shape)
	for _, b := range boxes {
		s, ok := out[b.ShapeID]
		if !ok {
			s = &Shape{ID: b.ShapeID}
			out[b.ShapeID] = s
		}
		s.Boxes = append(s.Boxes, b)
	}
	return out
}

// placement is one candidate assignment in the brute-force oracle.
type placement struct {
	shapes  []int
	origins []Point
}

// bruteCount enumerates every assignment of the objects' initial domains
// and counts those accepted by ok.
func bruteCount(k int, objs []objSpec, ok func(placement) bool) int {
	n := 0
	pl := placement{shapes: make([]int, len(objs)), origins: make([]Point, len(objs))}
	var rec func(i int)
	rec = func(i int) {
		if i == len(objs) {
			if ok(pl) {
				n++
			}
			return
		}
		for _, s := range objs[i].shapes {
			pl.shapes[i] = s
			p := make(Point, k)
			copy(p, objs[i].lo)
			for {
				pl.origins[i] = p.Clone()
				rec(i + 1)
				d := k - 1
				for ; d >= 0; d-- {
					if p[d] < objs[i].hi[d] {
						p[d]++
						break
					}
					p[d] = objs[i].lo[d]
				}
				if d < 0 {
					break
				}
			}
		}
	}
	rec(0)
	return n
}

// disjoint accepts placements where no two objects share a cell.
func disjoint(shapes map[int]*Shape) func(placement) bool {
	return func(pl placement) bool {
		for i := range pl.shapes {
			for j := i + 1; j < len(pl.shapes); j++ {
				if shapes[pl.shapes[i]].Overlaps(pl.origins[i], shapes[pl.shapes[j]], pl.origins[j]) {
					return false
				}
			}
		}
		return true
	}
}

// newBareObject builds an object on its own store, for tests that only
// need domains.
func newBareObject(t testing.TB, id int, lo, hi []int) (*fd.Store, *Object) {
	t.Helper()
	s := fd.NewStore()
	coords := make([]*fd.IntVar, len(lo))
	for d := range coords {
		coords[d] = s.MustIntVar("x", lo[d], hi[d])
	}
	return s, NewObject(id, s.Const(1), coords...)
}

// eachPoint calls f for every point of the box [lo, hi].
func eachPoint(lo, hi Point, f func(Point)) {
	for d := range lo {
		if lo[d] > hi[d] {
			return
		}
	}
	p := lo.Clone()
	for {
		f(p.Clone())
		d := len(p) - 1
		for ; d >= 0; d-- {
			if p[d] < hi[d] {
				p[d]++
				break
			}
			p[d] = lo[d]
		}
		if d < 0 {
			return
		}
	}
}
