package geost

// internal_constraint.go: forbidden regions the sweep understands

import (
	"fmt"
	"math"
)

// unbounded stands for an infinite boundary. Sweeps always cap it with the
// jump vector, which never leaves the object's domain by more than one.
const unbounded = math.MaxInt >> 2

// ForbiddenRegion is a set F of forbidden origins for one object.
//
// MaximizeSizeOfFBox receives a box f already contained in F and returns
// the furthest boundary along d that keeps f inside F: the largest
// f.Max[d] when min is true, the smallest f.Min[d] otherwise.
type ForbiddenRegion interface {
	InsideForbidden(p Point) bool
	MaximizeSizeOfFBox(min bool, d, k int, f Region) int
}

// InternalConstraint is the closed set of forbidden-region kinds: *Inbox,
// *Outbox, *DistLeqIC, *DistGeqIC and *DistLinearIC.
type InternalConstraint interface {
	ForbiddenRegion
	fmt.Stringer
	internalConstraint()
}

func (*Inbox) internalConstraint()        {}
func (*Outbox) internalConstraint()       {}
func (*DistLeqIC) internalConstraint()    {}
func (*DistGeqIC) internalConstraint()    {}
func (*DistLinearIC) internalConstraint() {}

// growForbiddenBox returns nil when p is outside F. Otherwise it grows the
// degenerate box at p one dimension at a time, least significant first,
// never reaching jump on any axis.
func growForbiddenBox(fr ForbiddenRegion, ord sweepOrder, owner int, p, jump Point) *Region {
	if !fr.InsideForbidden(p) {
		return nil
	}
	k := len(p)
	f := NewRegionAt(p, owner)
	for i := k - 1; i >= 0; i-- {
		j := ord.dims[i]
		if ord.asc[j] {
			f.Max[j] = min(jump[j]-1, fr.MaximizeSizeOfFBox(true, j, k, f))
		} else {
			f.Min[j] = max(jump[j]+1, fr.MaximizeSizeOfFBox(false, j, k, f))
		}
	}
	return &f
}

// Outbox forbids origins inside [T, T+L-1].
type Outbox struct {
	T []int
	L []int
}

// NewOutbox builds an Outbox; t and l are adopted.
func NewOutbox(t, l []int) *Outbox { return &Outbox{T: t, L: l} }

// OutboxFromRegion builds the Outbox covering r.
func OutboxFromRegion(r Region) *Outbox {
	t := make([]int, r.Dim())
	l := make([]int, r.Dim())
	for d := range t {
		t[d] = r.Min[d]
		l[d] = r.Max[d] - r.Min[d] + 1
	}
	return &Outbox{T: t, L: l}
}

// Region returns the box as a Region owned by owner.
func (b *Outbox) Region(owner int) Region {
	r := Region{Min: make(Point, len(b.T)), Max: make(Point, len(b.T)), Owner: owner}
	for d := range b.T {
		r.Min[d] = b.T[d]
		r.Max[d] = b.T[d] + b.L[d] - 1
	}
	return r
}

func (b *Outbox) InsideForbidden(p Point) bool { return b.Contains(p) }

// Contains reports whether p lies in [T, T+L-1].
func (b *Outbox) Contains(p Point) bool {
	for d := range b.T {
		if p[d] < b.T[d] || p[d] > b.T[d]+b.L[d]-1 {
			return false
		}
	}
	return true
}

func (b *Outbox) MaximizeSizeOfFBox(min bool, d, _ int, _ Region) int {
	if min {
		return b.T[d] + b.L[d] - 1
	}
	return b.T[d]
}

// Adjacent returns the axis along which b and o touch, provided they touch
// along exactly one axis and start at the same offset on all the others.
func (b *Outbox) Adjacent(o *Outbox) (int, bool) {
	found := -1
	for i := range b.T {
		if b.T[i]+b.L[i] == o.T[i] || o.T[i]+o.L[i] == b.T[i] {
			if found != -1 {
				return -1, false
			}
			found = i
			continue
		}
		if b.T[i] != o.T[i] {
			return -1, false
		}
	}
	return found, found != -1
}

// SameSize reports whether b and o have equal extents off axis dim.
func (b *Outbox) SameSize(o *Outbox, dim int) bool {
	for i := range b.L {
		if i != dim && b.L[i] != o.L[i] {
			return false
		}
	}
	return true
}

// Merge widens b along dim to the union of b and o on that axis.
func (b *Outbox) Merge(o *Outbox, dim int) {
	lo := min(b.T[dim], o.T[dim])
	hi := max(b.T[dim]+b.L[dim], o.T[dim]+o.L[dim])
	b.T[dim] = lo
	b.L[dim] = hi - lo
}

func (b *Outbox) String() string { return fmt.Sprintf("Outbox(t=%v,l=%v)", b.T, b.L) }

// Inbox forbids every origin outside [T, T+L-1]. A non-positive extent
// forbids everything.
type Inbox struct {
	T []int
	L []int
}

// NewInbox builds an Inbox; t and l are adopted.
func NewInbox(t, l []int) *Inbox { return &Inbox{T: t, L: l} }

func (b *Inbox) empty() bool {
	for _, l := range b.L {
		if l <= 0 {
			return true
		}
	}
	return false
}

func (b *Inbox) InsideForbidden(p Point) bool {
	for d := range b.T {
		if p[d] < b.T[d] || p[d] > b.T[d]+b.L[d]-1 {
			return true
		}
	}
	return false
}

// MaximizeSizeOfFBox relies on f being disjoint from the box: either some
// other axis separates them, which leaves d free, or d itself does.
func (b *Inbox) MaximizeSizeOfFBox(min bool, d, _ int, f Region) int {
	if b.empty() {
		return signed(min, unbounded)
	}
	for i := range b.T {
		if i != d && (f.Max[i] < b.T[i] || f.Min[i] > b.T[i]+b.L[i]-1) {
			return signed(min, unbounded)
		}
	}
	if min {
		if f.Max[d] < b.T[d] {
			return b.T[d] - 1
		}
		return unbounded
	}
	if f.Min[d] > b.T[d]+b.L[d]-1 {
		return b.T[d] + b.L[d]
	}
	return -unbounded
}

func (b *Inbox) String() string { return fmt.Sprintf("Inbox(t=%v,l=%v)", b.T, b.L) }

// signed returns v for forward sweeps and -v for backward ones.
func signed(forward bool, v int) int {
	if forward {
		return v
	}
	return -v
}
