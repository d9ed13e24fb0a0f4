package geost

// intermediate_layer.go: queries dispatched on the kind of forbidden region

import (
	"fmt"
	"math"
)

// IsFeasible checks p against ictr for a sweep over dimension d, towards
// larger values when min is true. A feasible p is returned with a nil
// box. Otherwise the box is a subset of the forbidden region containing p
// that stops short of jump, and its far boundary along d lies on the
// sweep side of p[d].
func IsFeasible(ictr InternalConstraint, min bool, d, k int, o *Object, p, jump Point) (Point, *Region) {
	if f := isFeasible(ictr, rotatedOrder(k, d, min), o, p, jump); f != nil {
		return nil, f
	}
	return p, nil
}

func isFeasible(ictr InternalConstraint, ord sweepOrder, o *Object, p, jump Point) *Region {
	switch ictr.(type) {
	case *Inbox, *Outbox, *DistLeqIC, *DistGeqIC, *DistLinearIC:
		return growForbiddenBox(ictr, ord, o.id, p, jump)
	}
	panic(fmt.Sprintf("geost: unknown internal constraint %T", ictr))
}

// LexInfeasible returns a point of o's domain hull no later, in the sweep
// order over d, than the first point ictr forbids. ok is false when ictr
// forbids nothing in the hull.
func LexInfeasible(ictr InternalConstraint, minLex bool, d, k int, o *Object) (Point, bool) {
	return lexInfeasible(ictr, rotatedOrder(k, d, minLex), o)
}

func lexInfeasible(ictr InternalConstraint, ord sweepOrder, o *Object) (Point, bool) {
	k := len(o.coords)
	corner := make(Point, k)
	for j, v := range o.coords {
		if ord.asc[j] {
			corner[j] = v.LB()
		} else {
			corner[j] = v.UB()
		}
	}
	switch ic := ictr.(type) {
	case *Outbox:
		for j, v := range o.coords {
			lo := max(ic.T[j], v.LB())
			hi := min(ic.T[j]+ic.L[j]-1, v.UB())
			if lo > hi {
				return nil, false
			}
			if ord.asc[j] {
				corner[j] = lo
			} else {
				corner[j] = hi
			}
		}
		return corner, true
	case *Inbox:
		if ic.InsideForbidden(corner) {
			return corner, true
		}
		for i := k - 1; i >= 0; i-- {
			j := ord.dims[i]
			v := o.coords[j]
			if ord.asc[j] && ic.T[j]+ic.L[j] <= v.UB() {
				corner[j] = ic.T[j] + ic.L[j]
				return corner, true
			}
			if !ord.asc[j] && ic.T[j]-1 >= v.LB() {
				corner[j] = ic.T[j] - 1
				return corner, true
			}
		}
		return nil, false
	case *DistLeqIC, *DistGeqIC, *DistLinearIC:
		return corner, true
	}
	panic(fmt.Sprintf("geost: unknown internal constraint %T", ictr))
}

// CardInfeasible returns how many points of o's domain hull ictr forbids,
// saturating at math.MaxInt64, or -1 when the kind cannot tell.
func CardInfeasible(ictr InternalConstraint, k int, o *Object) int64 {
	switch ic := ictr.(type) {
	case *Outbox:
		return overlapVolume(ic.T, ic.L, o)
	case *Inbox:
		if ic.empty() {
			return hullVolume(o)
		}
		inside := overlapVolume(ic.T, ic.L, o)
		total := hullVolume(o)
		if inside == total && total != math.MaxInt64 {
			return 0
		}
		return max(1, total-inside)
	case *DistLeqIC, *DistGeqIC, *DistLinearIC:
		return -1
	}
	panic(fmt.Sprintf("geost: unknown internal constraint %T", ictr))
}

func overlapVolume(t, l []int, o *Object) int64 {
	var n int64 = 1
	for j, v := range o.coords {
		lo := max(t[j], v.LB())
		hi := min(t[j]+l[j]-1, v.UB())
		if lo > hi {
			return 0
		}
		n = satMul(n, int64(hi-lo+1))
	}
	return n
}

func hullVolume(o *Object) int64 {
	var n int64 = 1
	for _, v := range o.coords {
		n = satMul(n, int64(v.UB()-v.LB()+1))
	}
	return n
}

func satMul(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}
