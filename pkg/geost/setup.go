package geost

// setup.go: registry of shapes, objects and external constraints

import (
	"fmt"
	"slices"
)

// Setup holds the static part of a placement problem. Shapes and objects
// are iterated in registration order.
type Setup struct {
	k int

	shapes     map[int]*Shape
	shapeOrder []int

	objects     map[int]*Object
	objectOrder []int

	ectrs []ExternalConstraint
}

// NewSetup creates an empty registry for k dimensions.
func NewSetup(k int) *Setup {
	return &Setup{k: k, shapes: make(map[int]*Shape), objects: make(map[int]*Object)}
}

// Dimension returns k.
func (s *Setup) Dimension() int { return s.k }

// AddBox appends a box to the shape named by its ShapeID.
func (s *Setup) AddBox(b ShiftedBox) error {
	if err := b.validate(s.k); err != nil {
		return err
	}
	sh, ok := s.shapes[b.ShapeID]
	if !ok {
		sh = &Shape{ID: b.ShapeID}
		s.shapes[b.ShapeID] = sh
		s.shapeOrder = append(s.shapeOrder, b.ShapeID)
	}
	sh.Boxes = append(sh.Boxes, b)
	return nil
}

// AddObject registers an object.
func (s *Setup) AddObject(o *Object) error {
	if len(o.coords) != s.k {
		return fmt.Errorf("geost: object %d has %d coordinates, want %d: %w", o.id, len(o.coords), s.k, ErrConfigurationMismatch)
	}
	if _, dup := s.objects[o.id]; dup {
		return fmt.Errorf("geost: object %d registered twice: %w", o.id, ErrConfigurationMismatch)
	}
	if (o.start != nil || o.duration != nil || o.end != nil) && !o.hasTime() {
		return fmt.Errorf("geost: object %d: start, duration and end go together: %w", o.id, ErrConfigurationMismatch)
	}
	s.objects[o.id] = o
	s.objectOrder = append(s.objectOrder, o.id)
	return nil
}

// AddConstraint registers an external constraint and assigns its id. Nil
// dims are widened to every axis.
func (s *Setup) AddConstraint(c ExternalConstraint) error {
	b := c.base()
	if b.dims == nil {
		b.dims = make([]int, s.k)
		for d := range b.dims {
			b.dims[d] = d
		}
	}
	for _, d := range b.dims {
		if d < 0 || d >= s.k {
			return fmt.Errorf("geost: %s: axis %d out of range: %w", c, d, ErrConfigurationMismatch)
		}
	}
	switch c := c.(type) {
	case *Included:
		if len(c.T) != s.k || len(c.L) != s.k {
			return fmt.Errorf("geost: %s: container needs %d dimensions: %w", c, s.k, ErrConfigurationMismatch)
		}
	case *DistLeq:
		if err := checkNorm(c.distBase); err != nil {
			return err
		}
	case *DistGeq:
		if err := checkNorm(c.distBase); err != nil {
			return err
		}
	case *DistLinear:
		if len(c.A) != s.k {
			return fmt.Errorf("geost: %s: coefficient vector needs %d entries: %w", c, s.k, ErrConfigurationMismatch)
		}
	}
	b.id = len(s.ectrs)
	s.ectrs = append(s.ectrs, c)
	return nil
}

func checkNorm(c distBase) error {
	if c.Q != 2 {
		return fmt.Errorf("geost: distance between o%d and o%d: norm %d: %w", c.O1, c.O2, c.Q, ErrUnsupportedConfiguration)
	}
	return nil
}

// Validate checks cross references: every object id a constraint names
// is registered, every shape id an object may take exists, and objects
// under a distance bound only take single-box shapes.
func (s *Setup) Validate() error {
	for _, id := range s.objectOrder {
		o := s.objects[id]
		for _, sid := range o.shape.Values() {
			if _, ok := s.shapes[sid]; !ok {
				return fmt.Errorf("geost: object %d may take unknown shape %d: %w", id, sid, ErrConfigurationMismatch)
			}
		}
	}
	for _, c := range s.ectrs {
		for _, id := range c.Objects() {
			if _, ok := s.objects[id]; !ok {
				return fmt.Errorf("geost: %s names unknown object %d: %w", c, id, ErrConfigurationMismatch)
			}
		}
		switch c.(type) {
		case *DistLeq, *DistGeq:
			for _, id := range c.Objects() {
				for _, sid := range s.objects[id].shape.Values() {
					if n := len(s.shapes[sid].Boxes); n != 1 {
						return fmt.Errorf("geost: %s: shape %d of object %d has %d boxes, want 1: %w", c, sid, id, n, ErrUnsupportedConfiguration)
					}
				}
			}
		}
	}
	return nil
}

// Shape returns the shape registered under id, or nil.
func (s *Setup) Shape(id int) *Shape { return s.shapes[id] }

// ShapeIDs returns shape ids in registration order.
func (s *Setup) ShapeIDs() []int { return slices.Clone(s.shapeOrder) }

// Object returns the object registered under id, or nil.
func (s *Setup) Object(id int) *Object { return s.objects[id] }

// ObjectIDs returns object ids in registration order.
func (s *Setup) ObjectIDs() []int { return slices.Clone(s.objectOrder) }

// Objects returns objects in registration order.
func (s *Setup) Objects() []*Object {
	out := make([]*Object, len(s.objectOrder))
	for i, id := range s.objectOrder {
		out[i] = s.objects[id]
	}
	return out
}

// Constraints returns the external constraints in registration order.
func (s *Setup) Constraints() []ExternalConstraint { return s.ectrs }

// candidateShapes returns the shapes o may still take.
func (s *Setup) candidateShapes(o *Object) []*Shape {
	ids := o.shape.Values()
	out := make([]*Shape, len(ids))
	for i, id := range ids {
		out[i] = s.shapes[id]
	}
	return out
}
