package geost

// external.go: user-level constraints over groups of objects

import (
	"fmt"

	"github.com/gitrdm/geost/pkg/fd"
)

// ExternalConstraint is the closed set of user constraints: *NonOverlapping,
// *Included, *Visible, *DistLeq, *DistGeq and *DistLinear. Ids are
// assigned when the constraint is registered with a Setup.
type ExternalConstraint interface {
	ID() int
	// Dims lists the axes the constraint restricts.
	Dims() []int
	// Objects lists the ids of the constrained objects.
	Objects() []int
	String() string
	base() *ectrBase
}

type ectrBase struct {
	id      int
	dims    []int
	objects []int
}

func (b *ectrBase) ID() int         { return b.id }
func (b *ectrBase) Dims() []int     { return b.dims }
func (b *ectrBase) Objects() []int  { return b.objects }
func (b *ectrBase) base() *ectrBase { return b }
func (b *ectrBase) hasDim(d int) bool {
	for _, x := range b.dims {
		if x == d {
			return true
		}
	}
	return false
}

// NonOverlapping forbids any two of its objects from sharing a cell when
// projected on Dims.
type NonOverlapping struct{ ectrBase }

// NewNonOverlapping builds a non-overlapping constraint. Nil dims means
// every axis.
func NewNonOverlapping(dims []int, objects ...int) *NonOverlapping {
	return &NonOverlapping{ectrBase{dims: dims, objects: objects}}
}

func (c *NonOverlapping) String() string {
	return fmt.Sprintf("NonOverlapping#%d(dims=%v,objects=%v)", c.id, c.dims, c.objects)
}

// Included keeps every box of its objects inside the container [T, T+L)
// on the axes in Dims. T and L have one entry per dimension.
type Included struct {
	ectrBase
	T, L []int
}

// NewIncluded builds an inclusion constraint. Nil dims means every axis.
func NewIncluded(dims []int, t, l []int, objects ...int) *Included {
	return &Included{ectrBase: ectrBase{dims: dims, objects: objects}, T: t, L: l}
}

func (c *Included) String() string {
	return fmt.Sprintf("Included#%d(t=%v,l=%v,objects=%v)", c.id, c.T, c.L, c.objects)
}

// Visible is accepted for model compatibility and compiles to nothing.
type Visible struct{ ectrBase }

// NewVisible builds a visibility constraint.
func NewVisible(dims []int, objects ...int) *Visible {
	return &Visible{ectrBase{dims: dims, objects: objects}}
}

func (c *Visible) String() string {
	return fmt.Sprintf("Visible#%d(objects=%v)", c.id, c.objects)
}

// distBase holds the fields shared by both distance bounds. Q is the norm
// and must be 2. DVar, when set, replaces the constant D.
//
// Distances are compared as squared gaps with exact integer roots, so D²
// and every squared gap in the domains must fit in an int. A broken root
// bracket or an overflow panics with *ArithmeticError.
type distBase struct {
	ectrBase
	Q, D   int
	O1, O2 int
	DVar   *fd.IntVar
}

// DistLeq keeps the boxes of O1 and O2 within Euclidean distance D.
type DistLeq struct{ distBase }

// NewDistLeq builds an upper distance bound. dvar may be nil.
func NewDistLeq(q, d, o1, o2 int, dvar *fd.IntVar) *DistLeq {
	return &DistLeq{distBase{ectrBase: ectrBase{objects: []int{o1, o2}}, Q: q, D: d, O1: o1, O2: o2, DVar: dvar}}
}

func (c *DistLeq) String() string {
	return fmt.Sprintf("DistLeq#%d(o%d,o%d,D=%s)", c.id, c.O1, c.O2, distText(c.D, c.DVar))
}

// DistGeq keeps the boxes of O1 and O2 at Euclidean distance D or more.
type DistGeq struct{ distBase }

// NewDistGeq builds a lower distance bound. dvar may be nil.
func NewDistGeq(q, d, o1, o2 int, dvar *fd.IntVar) *DistGeq {
	return &DistGeq{distBase{ectrBase: ectrBase{objects: []int{o1, o2}}, Q: q, D: d, O1: o1, O2: o2, DVar: dvar}}
}

func (c *DistGeq) String() string {
	return fmt.Sprintf("DistGeq#%d(o%d,o%d,D=%s)", c.id, c.O1, c.O2, distText(c.D, c.DVar))
}

func distText(d int, v *fd.IntVar) string {
	if v != nil {
		return v.String()
	}
	return fmt.Sprint(d)
}

// DistLinear keeps every box of O1 inside the half-space A·x <= B.
type DistLinear struct {
	ectrBase
	A  []int
	B  int
	O1 int
}

// NewDistLinear builds a half-space constraint.
func NewDistLinear(a []int, b, o1 int) *DistLinear {
	return &DistLinear{ectrBase: ectrBase{objects: []int{o1}}, A: a, B: b, O1: o1}
}

func (c *DistLinear) String() string {
	return fmt.Sprintf("DistLinear#%d(o%d,a=%v,b=%d)", c.id, c.O1, c.A, c.B)
}
