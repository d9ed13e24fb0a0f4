// Package geost implements the GEOST placement constraint: k-dimensional
// objects with a choice of shapes and an origin domain are kept apart,
// inside containers, or within distance bounds of each other by a
// sweep-point algorithm that jumps over forbidden boxes.
//
// The package is organised in layers:
//   - geometric primitives (Point, Region, ShiftedBox, Shape)
//   - forbidden regions, the internal constraints the sweep understands
//   - the external layer compiling user constraints into forbidden regions
//   - the intermediate layer dispatching queries by region kind
//   - the kernel running sweeps, the fixpoint and the greedy placement
//   - the Geost propagator plugging the kernel into an fd.Store
package geost

import (
	"fmt"
	"strings"
)

// Point is a k-dimensional integer vector.
type Point []int

// NewPoint returns the origin of a k-dimensional space.
func NewPoint(k int) Point { return make(Point, k) }

// Clone returns an independent copy.
func (p Point) Clone() Point {
	out := make(Point, len(p))
	copy(out, p)
	return out
}

// LexCompare compares p and q lexicographically, visiting dimensions in
// the cyclic order start, start+1, ..., start-1. It returns -1, 0 or +1.
func (p Point) LexCompare(q Point, start int) int {
	k := len(p)
	for i := 0; i < k; i++ {
		j := (start + i) % k
		if c := compareInt(p[j], q[j]); c != 0 {
			return c
		}
	}
	return 0
}

// LexCompareControl compares p and q in the order named by a control
// vector: axes are visited in the vector's order and a negative entry
// reverses the comparison on its axis.
func (p Point) LexCompareControl(q Point, cv ControlVector) int {
	for i := 0; i < cv.Axes(); i++ {
		d, asc := cv.Axis(i)
		if c := compareInt(p[d], q[d]); c != 0 {
			if !asc {
				return -c
			}
			return c
		}
	}
	return 0
}

func (p Point) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ControlVector drives greedy placement. Entry 0 orders shape ids, entries
// 1..k name one axis each as |v|-2. A positive sign prefers small values,
// a negative sign large ones. {-1, 2, 3} means largest shape first, then
// smallest x, then smallest y.
type ControlVector []int

// ShapeAscending reports whether the smallest shape id is preferred.
func (cv ControlVector) ShapeAscending() bool { return cv[0] > 0 }

// Axes returns the number of axis entries.
func (cv ControlVector) Axes() int { return len(cv) - 1 }

// Axis returns the i-th axis in priority order and its direction.
func (cv ControlVector) Axis(i int) (dim int, ascending bool) {
	v := cv[i+1]
	if v < 0 {
		return -v - 2, false
	}
	return v - 2, true
}

// validate checks the vector is a signed permutation of k axes.
func (cv ControlVector) validate(k int) error {
	if len(cv) != k+1 {
		return fmt.Errorf("geost: control vector %v: want %d entries: %w", []int(cv), k+1, ErrConfigurationMismatch)
	}
	if abs(cv[0]) != 1 {
		return fmt.Errorf("geost: control vector %v: shape entry must be 1 or -1: %w", []int(cv), ErrConfigurationMismatch)
	}
	seen := make([]bool, k)
	for i := 0; i < cv.Axes(); i++ {
		d, _ := cv.Axis(i)
		if cv[i+1] == 0 || d < 0 || d >= k || seen[d] {
			return fmt.Errorf("geost: control vector %v: entry %d does not name a fresh axis: %w", []int(cv), cv[i+1], ErrConfigurationMismatch)
		}
		seen[d] = true
	}
	return nil
}

// sweepOrder fixes in which order a sweep visits candidate points. dims
// runs from most to least significant; asc is indexed by dimension.
type sweepOrder struct {
	dims []int
	asc  []bool
	// cmp is the raw comparator; descending inverts the heap built on it.
	cmp        func(a, b Point) int
	descending bool
}

// rotatedOrder is the order used to prune one bound of dimension d.
func rotatedOrder(k, d int, forward bool) sweepOrder {
	o := sweepOrder{dims: make([]int, k), asc: make([]bool, k), descending: !forward}
	for i := 0; i < k; i++ {
		o.dims[i] = (d + i) % k
		o.asc[i] = forward
	}
	o.cmp = func(a, b Point) int { return a.LexCompare(b, d) }
	return o
}

// controlOrder is the order a control vector prescribes.
func controlOrder(cv ControlVector) sweepOrder {
	k := cv.Axes()
	o := sweepOrder{dims: make([]int, k), asc: make([]bool, k)}
	for i := 0; i < k; i++ {
		d, asc := cv.Axis(i)
		o.dims[i] = d
		o.asc[d] = asc
	}
	o.cmp = func(a, b Point) int { return a.LexCompareControl(b, cv) }
	return o
}

// precedes reports whether a is visited no later than b.
func (o sweepOrder) precedes(a, b Point) bool {
	if o.descending {
		return o.cmp(a, b) >= 0
	}
	return o.cmp(a, b) <= 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
