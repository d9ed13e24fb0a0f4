package geost

import (
	"fmt"
	"strings"

	"github.com/gitrdm/geost/pkg/fd"
)

// Object is a placeable item: a shape-id variable, one origin coordinate
// variable per dimension and optional time attributes.
type Object struct {
	id     int
	shape  *fd.IntVar
	coords []*fd.IntVar

	start, duration, end *fd.IntVar
	radius               int

	// rebuilt every propagation episode
	relatedExternal []ExternalConstraint
	relatedInternal []InternalConstraint
}

// NewObject creates an object. Dimensions are checked when the object is
// registered with a Setup.
func NewObject(id int, shape *fd.IntVar, coords ...*fd.IntVar) *Object {
	return &Object{id: id, shape: shape, coords: coords}
}

// WithTime attaches start, duration and end variables; the constraint
// keeps start+duration=end bounds-consistent.
func (o *Object) WithTime(start, duration, end *fd.IntVar) *Object {
	o.start, o.duration, o.end = start, duration, end
	return o
}

// WithRadius records a fixed radius for circular objects.
func (o *Object) WithRadius(r int) *Object {
	o.radius = r
	return o
}

// ID returns the object id.
func (o *Object) ID() int { return o.id }

// ShapeVar returns the shape-id variable.
func (o *Object) ShapeVar() *fd.IntVar { return o.shape }

// Coord returns the origin variable of dimension d.
func (o *Object) Coord(d int) *fd.IntVar { return o.coords[d] }

// Coords returns all origin variables.
func (o *Object) Coords() []*fd.IntVar { return o.coords }

// Radius returns the radius given with WithRadius.
func (o *Object) Radius() int { return o.radius }

// Start, Duration and End return the time variables, or nil.
func (o *Object) Start() *fd.IntVar    { return o.start }
func (o *Object) Duration() *fd.IntVar { return o.duration }
func (o *Object) End() *fd.IntVar      { return o.end }

func (o *Object) hasTime() bool { return o.start != nil && o.duration != nil && o.end != nil }

// Lower returns the lower corner of the origin domain.
func (o *Object) Lower() Point {
	p := make(Point, len(o.coords))
	for d, v := range o.coords {
		p[d] = v.LB()
	}
	return p
}

// Upper returns the upper corner of the origin domain.
func (o *Object) Upper() Point {
	p := make(Point, len(o.coords))
	for d, v := range o.coords {
		p[d] = v.UB()
	}
	return p
}

// CoordsFixed reports whether every origin coordinate is instantiated.
func (o *Object) CoordsFixed() bool {
	for _, v := range o.coords {
		if !v.IsInstantiated() {
			return false
		}
	}
	return true
}

// IsFixed reports whether shape, origin and time are all instantiated.
func (o *Object) IsFixed() bool {
	if !o.shape.IsInstantiated() || !o.CoordsFixed() {
		return false
	}
	if o.hasTime() {
		return o.start.IsInstantiated() && o.duration.IsInstantiated() && o.end.IsInstantiated()
	}
	return true
}

// Variables lists every variable of the object.
func (o *Object) Variables() []*fd.IntVar {
	vars := make([]*fd.IntVar, 0, len(o.coords)+4)
	vars = append(vars, o.shape)
	vars = append(vars, o.coords...)
	if o.hasTime() {
		vars = append(vars, o.start, o.duration, o.end)
	}
	return vars
}

// RelatedInternalConstraints returns the internal constraints compiled for
// this object during the last episode.
func (o *Object) RelatedInternalConstraints() []InternalConstraint { return o.relatedInternal }

func (o *Object) String() string {
	parts := make([]string, 0, len(o.coords)+1)
	parts = append(parts, o.shape.String())
	for _, v := range o.coords {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("o%d(%s)", o.id, strings.Join(parts, " "))
}
