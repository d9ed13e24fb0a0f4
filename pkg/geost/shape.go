package geost

import "fmt"

// ShiftedBox is one box of a shape, placed Offset away from the object's
// origin and extending Size cells along each axis.
type ShiftedBox struct {
	ShapeID int
	Offset  []int
	Size    []int
}

// NewShiftedBox builds a box; sizes are checked when it is registered.
func NewShiftedBox(shapeID int, offset, size []int) ShiftedBox {
	return ShiftedBox{ShapeID: shapeID, Offset: offset, Size: size}
}

// End returns Offset[d]+Size[d], the first cell past the box.
func (b ShiftedBox) End(d int) int { return b.Offset[d] + b.Size[d] }

// Covers reports whether cell c belongs to the box when the object origin
// is at origin.
func (b ShiftedBox) Covers(origin, c Point) bool {
	for d := range b.Offset {
		lo := origin[d] + b.Offset[d]
		if c[d] < lo || c[d] >= lo+b.Size[d] {
			return false
		}
	}
	return true
}

func (b ShiftedBox) validate(k int) error {
	if len(b.Offset) != k || len(b.Size) != k {
		return fmt.Errorf("geost: shifted box of shape %d: want %d dimensions: %w", b.ShapeID, k, ErrConfigurationMismatch)
	}
	for d, l := range b.Size {
		if l <= 0 {
			return fmt.Errorf("geost: shifted box of shape %d: size[%d]=%d must be positive: %w", b.ShapeID, d, l, ErrUnsupportedConfiguration)
		}
	}
	return nil
}

// Shape is the ordered list of boxes registered under one id.
type Shape struct {
	ID    int
	Boxes []ShiftedBox
}

// Overlaps reports whether shape s at origin p and shape t at origin q
// share at least one cell.
func (s *Shape) Overlaps(p Point, t *Shape, q Point) bool {
	for _, a := range s.Boxes {
		for _, b := range t.Boxes {
			if boxesOverlap(a, p, b, q) {
				return true
			}
		}
	}
	return false
}

func boxesOverlap(a ShiftedBox, p Point, b ShiftedBox, q Point) bool {
	for d := range a.Offset {
		alo, blo := p[d]+a.Offset[d], q[d]+b.Offset[d]
		if alo+a.Size[d] <= blo || blo+b.Size[d] <= alo {
			return false
		}
	}
	return true
}
