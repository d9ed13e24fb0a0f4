package geost

import (
	"fmt"
	"strings"
)

// Region is an axis-aligned box [Min, Max] (both ends included) owned by
// an object. Regions are built degenerate at a point and then widened one
// dimension at a time.
type Region struct {
	Min   Point
	Max   Point
	Owner int
}

// NewRegionAt returns the box Min = Max = p.
func NewRegionAt(p Point, owner int) Region {
	return Region{Min: p.Clone(), Max: p.Clone(), Owner: owner}
}

// Dim returns the dimension count.
func (r Region) Dim() int { return len(r.Min) }

// MinimumBoundary returns Min[d].
func (r Region) MinimumBoundary(d int) int { return r.Min[d] }

// MaximumBoundary returns Max[d].
func (r Region) MaximumBoundary(d int) int { return r.Max[d] }

// SetMinimumBoundary sets Min[d].
func (r Region) SetMinimumBoundary(d, v int) { r.Min[d] = v }

// SetMaximumBoundary sets Max[d].
func (r Region) SetMaximumBoundary(d, v int) { r.Max[d] = v }

// Empty reports whether some dimension has Min > Max.
func (r Region) Empty() bool {
	for d := range r.Min {
		if r.Min[d] > r.Max[d] {
			return true
		}
	}
	return false
}

// Contains reports whether p lies in the box.
func (r Region) Contains(p Point) bool {
	for d := range r.Min {
		if p[d] < r.Min[d] || p[d] > r.Max[d] {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes share a point.
func (r Region) Intersects(o Region) bool {
	for d := range r.Min {
		if r.Max[d] < o.Min[d] || o.Max[d] < r.Min[d] {
			return false
		}
	}
	return true
}

func (r Region) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "o%d:", r.Owner)
	for d := range r.Min {
		fmt.Fprintf(&sb, "[%d,%d]", r.Min[d], r.Max[d])
	}
	return sb.String()
}
