package geost

// dist_linear.go: half-space bound on one object's boxes

import (
	"fmt"
	"math"
)

// DistLinearIC forbids origins p with A·p > D. D is derived from the
// object's shape domain so that every box of an allowed shape stays inside
// the half-space A·x <= B.
type DistLinearIC struct {
	A  []int
	B  int
	O1 int
	D  int
}

// linearBound returns the largest D such that some candidate shape keeps
// all its boxes inside A·x <= b when its origin satisfies A·p <= D.
func linearBound(a []int, b int, shapes []*Shape) int {
	const op = "linearBound"
	d := math.MinInt
	for _, s := range shapes {
		sd := math.MaxInt
		for _, box := range s.Boxes {
			v := b
			for i, ai := range a {
				v = add(op, v, -mul(op, ai, box.Offset[i]))
				if ai > 0 {
					v = add(op, v, -mul(op, ai, box.Size[i]))
				}
			}
			sd = min(sd, v)
		}
		d = max(d, sd)
	}
	return d
}

func (c *DistLinearIC) dot(p Point) int {
	const op = "DistLinearIC.dot"
	s := 0
	for i, ai := range c.A {
		s = add(op, s, mul(op, ai, p[i]))
	}
	return s
}

func (c *DistLinearIC) InsideForbidden(p Point) bool { return c.dot(p) > c.D }

// MaximizeSizeOfFBox takes the least favourable corner of f on every other
// axis and solves A_d·x + r > D for the far boundary along d.
func (c *DistLinearIC) MaximizeSizeOfFBox(min bool, d, k int, f Region) int {
	const op = "DistLinearIC.MaximizeSizeOfFBox"
	r := 0
	for j := 0; j < k; j++ {
		if j == d {
			continue
		}
		if c.A[j] > 0 {
			r = add(op, r, mul(op, c.A[j], f.Min[j]))
		} else {
			r = add(op, r, mul(op, c.A[j], f.Max[j]))
		}
	}
	ad := c.A[d]
	rest := add(op, c.D, -r)
	if min {
		if ad >= 0 {
			return unbounded
		}
		return ceilDiv(rest, ad) - 1
	}
	if ad <= 0 {
		return -unbounded
	}
	return floorDiv(rest, ad) + 1
}

func (c *DistLinearIC) String() string {
	return fmt.Sprintf("DistLinearIC(o%d,a=%v,b=%d,D=%d)", c.O1, c.A, c.B, c.D)
}
