package geost

// dist.go: Euclidean distance bounds between two single-box objects

import (
	"fmt"

	"github.com/gitrdm/geost/pkg/fd"
)

// gapSpan is one axis of a distance bound: the self box [t1, t1+l1) rides
// on an origin in [xlo, xhi], the other box [t2, t2+l2) on one in [ylo, yhi].
type gapSpan struct {
	xlo, xhi, t1, l1 int
	ylo, yhi, t2, l2 int
}

// maxGap is the largest separation the two intervals can reach.
func (g gapSpan) maxGap() int {
	return max(0, g.xhi+g.t1-(g.ylo+g.t2+g.l2), g.yhi+g.t2-(g.xlo+g.t1+g.l1))
}

// minGap is the smallest separation the two intervals can reach.
func (g gapSpan) minGap() int {
	return max(0, g.xlo+g.t1-(g.yhi+g.t2+g.l2), g.ylo+g.t2-(g.xhi+g.t1+g.l1))
}

// distPair is the geometry shared by both distance kinds. self is the
// object the constraint was compiled for.
type distPair struct {
	Q, D     int
	S1, S2   int
	O1, O2   int
	self     *Object
	other    *Object
	selfBox  ShiftedBox
	otherBox ShiftedBox
	dvar     *fd.IntVar
}

func (dp *distPair) span(i, xlo, xhi int) gapSpan {
	return gapSpan{
		xlo: xlo, xhi: xhi, t1: dp.selfBox.Offset[i], l1: dp.selfBox.Size[i],
		ylo: dp.other.coords[i].LB(), yhi: dp.other.coords[i].UB(), t2: dp.otherBox.Offset[i], l2: dp.otherBox.Size[i],
	}
}

// domainSpan uses the self object's current domain instead of a point.
func (dp *distPair) domainSpan(i int) gapSpan {
	return dp.span(i, dp.self.coords[i].LB(), dp.self.coords[i].UB())
}

// DistVar returns the distance variable, or nil for a constant bound.
func (dp *distPair) DistVar() *fd.IntVar { return dp.dvar }

// DistGeqIC forbids origins of the self object from which the two boxes
// are certainly closer than D.
type DistGeqIC struct{ distPair }

// bound is the distance the boxes must at least keep.
func (c *DistGeqIC) bound() int {
	if c.dvar != nil {
		return c.dvar.LB()
	}
	return c.D
}

func (c *DistGeqIC) InsideForbidden(p Point) bool {
	const op = "DistGeqIC.InsideForbidden"
	s := 0
	for i := range p {
		s = add(op, s, sq(op, c.span(i, p[i], p[i]).maxGap()))
	}
	return s < sq(op, c.bound())
}

func (c *DistGeqIC) MaximizeSizeOfFBox(min bool, d, k int, f Region) int {
	const op = "DistGeqIC.MaximizeSizeOfFBox"
	qsum := 0
	for i := 0; i < k; i++ {
		if i != d {
			qsum = add(op, qsum, sq(op, c.span(i, f.Min[i], f.Max[i]).maxGap()))
		}
	}
	v := sq(op, c.bound()) - qsum
	if v <= 0 {
		arithmeticFault(op, "box %v is not forbidden", f)
	}
	// the gap along d must stay at most r-1
	r := ceilSqrt(op, v)
	t1, l1 := c.selfBox.Offset[d], c.selfBox.Size[d]
	t2, l2 := c.otherBox.Offset[d], c.otherBox.Size[d]
	lb, ub := c.other.coords[d].LB(), c.other.coords[d].UB()
	if min {
		return r - 1 + lb + t2 + l2 - t1
	}
	return ub + t2 - t1 - l1 - r + 1
}

// UpdateDistance lowers the distance variable's upper bound to the
// largest distance the two current domains allow.
func (c *DistGeqIC) UpdateDistance(s *fd.Store, cause fd.Propagator) (bool, error) {
	const op = "DistGeqIC.UpdateDistance"
	if c.dvar == nil {
		return false, nil
	}
	m := 0
	for i := range c.self.coords {
		m = add(op, m, sq(op, c.domainSpan(i).maxGap()))
	}
	return s.UpdateUpperBound(c.dvar, floorSqrt(op, m), cause)
}

func (c *DistGeqIC) String() string {
	return fmt.Sprintf("DistGeqIC(o%d,o%d,s%d,s%d,D=%d)", c.O1, c.O2, c.S1, c.S2, c.bound())
}

// DistLeqIC forbids origins of the self object from which the two boxes
// are certainly further apart than D.
type DistLeqIC struct{ distPair }

// bound is the distance the boxes must not exceed.
func (c *DistLeqIC) bound() int {
	if c.dvar != nil {
		return c.dvar.UB()
	}
	return c.D
}

func (c *DistLeqIC) InsideForbidden(p Point) bool {
	const op = "DistLeqIC.InsideForbidden"
	s := 0
	for i := range p {
		s = add(op, s, sq(op, c.span(i, p[i], p[i]).minGap()))
	}
	return s > sq(op, c.bound())
}

func (c *DistLeqIC) MaximizeSizeOfFBox(min bool, d, k int, f Region) int {
	const op = "DistLeqIC.MaximizeSizeOfFBox"
	qsum := 0
	for i := 0; i < k; i++ {
		if i != d {
			qsum = add(op, qsum, sq(op, c.span(i, f.Min[i], f.Max[i]).minGap()))
		}
	}
	v := sq(op, c.bound()) - qsum
	if v < 0 {
		return signed(min, unbounded)
	}
	// the gap along d must reach at least s
	s := floorSqrt(op, v) + 1
	t1, l1 := c.selfBox.Offset[d], c.selfBox.Size[d]
	t2, l2 := c.otherBox.Offset[d], c.otherBox.Size[d]
	lb, ub := c.other.coords[d].LB(), c.other.coords[d].UB()
	if min {
		if f.Min[d]+t1-(ub+t2+l2) >= s {
			return unbounded
		}
		return lb + t2 - t1 - l1 - s
	}
	if lb+t2-(f.Max[d]+t1+l1) >= s {
		return -unbounded
	}
	return ub + t2 + l2 - t1 + s
}

// UpdateDistance raises the distance variable's lower bound to the
// smallest distance the two current domains allow.
func (c *DistLeqIC) UpdateDistance(s *fd.Store, cause fd.Propagator) (bool, error) {
	const op = "DistLeqIC.UpdateDistance"
	if c.dvar == nil {
		return false, nil
	}
	m := 0
	for i := range c.self.coords {
		m = add(op, m, sq(op, c.domainSpan(i).minGap()))
	}
	return s.UpdateLowerBound(c.dvar, ceilSqrt(op, m), cause)
}

func (c *DistLeqIC) String() string {
	return fmt.Sprintf("DistLeqIC(o%d,o%d,s%d,s%d,D=%d)", c.O1, c.O2, c.S1, c.S2, c.bound())
}
