package geost

// external_layer.go: compiles external constraints into forbidden regions

import "github.com/gitrdm/geost/pkg/fd"

// Frame is the snapshot an external constraint compiles from. Only
// non-overlap frames carry data: per object, the compulsory parts of its
// candidate shapes.
type Frame struct {
	Regions map[int][]Region
	order   []int
}

type cachedFrame struct {
	gen   uint64
	frame *Frame
}

// ExternalLayer turns external constraints into internal ones, one object
// at a time.
type ExternalLayer struct {
	setup   *Setup
	opts    Options
	pairs   map[ObjectPair]bool
	metrics Metrics
	cache   map[int]cachedFrame
}

// NewExternalLayer creates a compiler over setup.
func NewExternalLayer(setup *Setup, opts Options, metrics Metrics) *ExternalLayer {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ExternalLayer{
		setup:   setup,
		opts:    opts,
		pairs:   opts.pairSet(),
		metrics: metrics,
		cache:   make(map[int]cachedFrame),
	}
}

// Invalidate drops every cached frame.
func (l *ExternalLayer) Invalidate() { clear(l.cache) }

// InitFrame builds a fresh frame for c over the given objects.
func (l *ExternalLayer) InitFrame(c ExternalConstraint, objectIDs []int) *Frame {
	f := &Frame{Regions: make(map[int][]Region)}
	if _, ok := c.(*NonOverlapping); !ok {
		return f
	}
	for _, id := range objectIDs {
		o := l.setup.Object(id)
		f.order = append(f.order, id)
		f.Regions[id] = l.compulsoryParts(o)
	}
	l.metrics.FrameBuilt()
	return f
}

// compulsoryParts returns, for each way of choosing one box per candidate
// shape, the cells that box covers wherever o ends up. Regions may be
// inverted on some axis; generation handles that.
func (l *ExternalLayer) compulsoryParts(o *Object) []Region {
	shapes := l.setup.candidateShapes(o)
	k := l.setup.Dimension()
	pick := make([]int, len(shapes))
	var out []Region
	for {
		r := Region{Min: make(Point, k), Max: make(Point, k), Owner: o.id}
		for j := 0; j < k; j++ {
			hiOff, loEnd := shapes[0].Boxes[pick[0]].Offset[j], shapes[0].Boxes[pick[0]].End(j)
			for s := 1; s < len(shapes); s++ {
				b := shapes[s].Boxes[pick[s]]
				hiOff = max(hiOff, b.Offset[j])
				loEnd = min(loEnd, b.End(j))
			}
			r.Min[j] = o.coords[j].UB() + hiOff
			r.Max[j] = o.coords[j].LB() + loEnd - 1
		}
		out = append(out, r)

		i := len(shapes) - 1
		for ; i >= 0; i-- {
			if pick[i] < len(shapes[i].Boxes)-1 {
				pick[i]++
				break
			}
			pick[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// frame returns the frame of c, reusing the cached one while nothing it
// reads has changed.
func (l *ExternalLayer) frame(c ExternalConstraint) *Frame {
	if !l.opts.Memoisation {
		return l.InitFrame(c, c.Objects())
	}
	gen := l.generation(c)
	if cf, ok := l.cache[c.ID()]; ok && cf.gen == gen {
		l.metrics.FrameReused()
		return cf.frame
	}
	f := l.InitFrame(c, c.Objects())
	l.cache[c.ID()] = cachedFrame{gen: gen, frame: f}
	return f
}

// generation is the latest modification stamp among the variables the
// frame of c reads.
func (l *ExternalLayer) generation(c ExternalConstraint) uint64 {
	if _, ok := c.(*NonOverlapping); !ok {
		return 0
	}
	var gen uint64
	for _, id := range c.Objects() {
		o := l.setup.Object(id)
		gen = max(gen, o.shape.Stamp())
		for _, v := range o.coords {
			gen = max(gen, v.Stamp())
		}
	}
	return gen
}

// GenInternalConstraints expands c for object o taking shape shapeID.
func (l *ExternalLayer) GenInternalConstraints(c ExternalConstraint, o *Object, shapeID int) []InternalConstraint {
	var out []InternalConstraint
	switch c := c.(type) {
	case *NonOverlapping:
		out = l.genNonOverlapping(c, o, shapeID)
	case *Included:
		out = l.genIncluded(c, o, shapeID)
	case *Visible:
	case *DistLeq:
		if dp, ok := l.distPair(c.distBase, o, shapeID); ok {
			out = []InternalConstraint{&DistLeqIC{dp}}
		}
	case *DistGeq:
		if dp, ok := l.distPair(c.distBase, o, shapeID); ok {
			out = []InternalConstraint{&DistGeqIC{dp}}
		}
	case *DistLinear:
		if o.id == c.O1 {
			d := linearBound(c.A, c.B, []*Shape{l.setup.Shape(shapeID)})
			out = []InternalConstraint{&DistLinearIC{A: c.A, B: c.B, O1: c.O1, D: d}}
		}
	}
	l.metrics.InternalGenerated(len(out))
	return out
}

func (l *ExternalLayer) genNonOverlapping(c *NonOverlapping, o *Object, shapeID int) []InternalConstraint {
	f := l.frame(c)
	boxes := l.setup.Shape(shapeID).Boxes
	var out []InternalConstraint
	var last *Outbox
	for _, other := range f.order {
		if other == o.id || l.pairs[ObjectPair{o.id, other}.normalized()] {
			continue
		}
		for _, b := range boxes {
			for _, r := range f.Regions[other] {
				ob, ok := l.outbox(c, o, b, r)
				if !ok {
					continue
				}
				if last != nil {
					if dim, adj := ob.Adjacent(last); adj && ob.SameSize(last, dim) {
						last.Merge(ob, dim)
						continue
					}
				}
				out = append(out, ob)
				last = ob
			}
		}
	}
	return out
}

// outbox returns the origins of o at which box b covers a cell of r on
// every axis of c. ok is false when that set misses o's domain.
func (l *ExternalLayer) outbox(c *NonOverlapping, o *Object, b ShiftedBox, r Region) (*Outbox, bool) {
	k := len(o.coords)
	t := make([]int, k)
	s := make([]int, k)
	for j := 0; j < k; j++ {
		lb, ub := o.coords[j].LB(), o.coords[j].UB()
		if !c.hasDim(j) {
			t[j], s[j] = lb, ub-lb+1
			continue
		}
		t[j] = r.Min[j] - b.Offset[j] - b.Size[j] + 1
		s[j] = r.Max[j] - r.Min[j] + b.Size[j]
		if s[j] <= 0 || t[j] > ub || t[j]+s[j]-1 < lb {
			return nil, false
		}
	}
	return NewOutbox(t, s), true
}

func (l *ExternalLayer) genIncluded(c *Included, o *Object, shapeID int) []InternalConstraint {
	boxes := l.setup.Shape(shapeID).Boxes
	out := make([]InternalConstraint, 0, len(boxes))
	k := len(o.coords)
	for _, b := range boxes {
		t := make([]int, k)
		s := make([]int, k)
		for j := 0; j < k; j++ {
			if c.hasDim(j) {
				t[j] = c.T[j] - b.Offset[j]
				s[j] = c.L[j] - b.Size[j] + 1
			} else {
				t[j] = o.coords[j].LB()
				s[j] = o.coords[j].UB() - o.coords[j].LB() + 1
			}
		}
		out = append(out, NewInbox(t, s))
	}
	return out
}

// distPair orients a distance bound towards o. It needs the other
// object's shape to be fixed.
func (l *ExternalLayer) distPair(c distBase, o *Object, shapeID int) (distPair, bool) {
	var otherID int
	switch o.id {
	case c.O1:
		otherID = c.O2
	case c.O2:
		otherID = c.O1
	default:
		return distPair{}, false
	}
	other := l.setup.Object(otherID)
	if other == o || !other.shape.IsInstantiated() {
		return distPair{}, false
	}
	s2 := other.shape.Value()
	return distPair{
		Q:        c.Q,
		D:        c.D,
		S1:       shapeID,
		S2:       s2,
		O1:       o.id,
		O2:       otherID,
		self:     o,
		other:    other,
		selfBox:  l.setup.Shape(shapeID).Boxes[0],
		otherBox: l.setup.Shape(s2).Boxes[0],
		dvar:     c.DVar,
	}, true
}

// distanceUpdater is implemented by the distance kinds.
type distanceUpdater interface {
	UpdateDistance(s *fd.Store, cause fd.Propagator) (bool, error)
}
