// Package fd provides the finite-domain host engine that placement
// constraints run inside: integer variables, a trail with nested
// checkpoints, trailed integer cells, a propagation queue and an iterative
// depth-first search.
//
// This file implements IntVar. Two representations are supported:
//   - bounded variables keep only [lo, hi] and cannot hold holes
//   - enumerated variables keep an offset bitset and may hold any subset
//
// Both accept negative values. Variables are created through a Store and
// are only mutated through the Store's update operations so that every
// change is recorded on the trail.
package fd

import (
	"fmt"
	"math/bits"
	"strings"
)

// IntVar is a finite-domain integer variable.
type IntVar struct {
	id   int
	name string

	lo, hi int
	size   int

	// base is the value represented by bit 0 when bits is non-nil.
	base int
	bits []uint64

	stamp    uint64
	watchers []int
}

// ID returns the variable's index inside its store.
func (v *IntVar) ID() int { return v.id }

// Name returns the name given at creation.
func (v *IntVar) Name() string { return v.name }

// LB returns the current lower bound.
func (v *IntVar) LB() int { return v.lo }

// UB returns the current upper bound.
func (v *IntVar) UB() int { return v.hi }

// Size returns the number of values left in the domain.
func (v *IntVar) Size() int { return v.size }

// IsInstantiated reports whether exactly one value is left.
func (v *IntVar) IsInstantiated() bool { return v.size == 1 }

// Value returns the value of an instantiated variable. For a variable that
// is not instantiated it returns the lower bound.
func (v *IntVar) Value() int { return v.lo }

// Enumerated reports whether the variable can represent holes.
func (v *IntVar) Enumerated() bool { return v.bits != nil }

// Stamp returns the store clock value of the last change to this variable,
// restorations on backtrack included.
func (v *IntVar) Stamp() uint64 { return v.stamp }

// Contains reports whether x is in the domain.
func (v *IntVar) Contains(x int) bool {
	if x < v.lo || x > v.hi {
		return false
	}
	if v.bits == nil {
		return true
	}
	return v.hasBit(x)
}

// NextValue returns the smallest domain value strictly greater than x.
func (v *IntVar) NextValue(x int) (int, bool) {
	if x >= v.hi {
		return 0, false
	}
	if x < v.lo {
		return v.lo, true
	}
	if v.bits == nil {
		return x + 1, true
	}
	n, ok := v.scanUp(x + 1)
	return n, ok
}

// PrevValue returns the largest domain value strictly lower than x.
func (v *IntVar) PrevValue(x int) (int, bool) {
	if x <= v.lo {
		return 0, false
	}
	if x > v.hi {
		return v.hi, true
	}
	if v.bits == nil {
		return x - 1, true
	}
	return v.scanDown(x - 1)
}

// Values returns the domain in ascending order.
func (v *IntVar) Values() []int {
	out := make([]int, 0, v.size)
	for x, ok := v.lo, v.size > 0; ok; x, ok = v.NextValue(x) {
		out = append(out, x)
	}
	return out
}

// String renders the variable as name[lo..hi] or name{a,b,c}.
func (v *IntVar) String() string {
	switch {
	case v.size == 1:
		return fmt.Sprintf("%s=%d", v.name, v.lo)
	case v.bits == nil || v.size == v.hi-v.lo+1:
		return fmt.Sprintf("%s[%d..%d]", v.name, v.lo, v.hi)
	}
	var sb strings.Builder
	sb.WriteString(v.name)
	sb.WriteByte('{')
	for i, x := range v.Values() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", x)
	}
	sb.WriteByte('}')
	return sb.String()
}

func (v *IntVar) hasBit(x int) bool {
	i := x - v.base
	return (v.bits[i/64]>>(uint(i)%64))&1 == 1
}

func (v *IntVar) clearBit(x int) {
	i := x - v.base
	v.bits[i/64] &^= 1 << (uint(i) % 64)
}

// scanUp finds the first set bit at or above x, bounded by hi.
func (v *IntVar) scanUp(x int) (int, bool) {
	if x < v.lo {
		x = v.lo
	}
	for i := x - v.base; i <= v.hi-v.base; {
		w := v.bits[i/64] >> (uint(i) % 64)
		if w != 0 {
			r := i + bits.TrailingZeros64(w) + v.base
			return r, r <= v.hi
		}
		i = (i/64 + 1) * 64
	}
	return 0, false
}

// scanDown finds the last set bit at or below x, bounded by lo.
func (v *IntVar) scanDown(x int) (int, bool) {
	if x > v.hi {
		x = v.hi
	}
	for i := x - v.base; i >= v.lo-v.base; {
		shift := 63 - uint(i)%64
		w := v.bits[i/64] << shift
		if w != 0 {
			r := i - bits.LeadingZeros64(w) + v.base
			return r, r >= v.lo
		}
		i = (i/64)*64 - 1
	}
	return 0, false
}

func (v *IntVar) cloneBits() []uint64 {
	if v.bits == nil {
		return nil
	}
	out := make([]uint64, len(v.bits))
	copy(out, v.bits)
	return out
}
