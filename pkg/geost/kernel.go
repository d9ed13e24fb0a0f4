package geost

// kernel.go: sweep-point pruning, the filtering fixpoint and greedy placement

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/gitrdm/geost/pkg/fd"
)

// Kernel runs the placement algorithms over the objects of a Setup. All
// domain changes go through the store with cause as their origin.
type Kernel struct {
	setup   *Setup
	layer   *ExternalLayer
	store   *fd.Store
	cause   fd.Propagator
	opts    Options
	metrics Metrics
	logger  *log.Logger

	// lastNonFixed is the first object greedy placement has not pinned on
	// the current branch.
	lastNonFixed *fd.Cell
}

// NewKernel binds a kernel to a store. cause may be nil when the kernel
// is driven directly.
func NewKernel(store *fd.Store, setup *Setup, opts Options, metrics Metrics, logger *log.Logger, cause fd.Propagator) *Kernel {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Kernel{
		setup:        setup,
		layer:        NewExternalLayer(setup, opts, metrics),
		store:        store,
		cause:        cause,
		opts:         opts,
		metrics:      metrics,
		logger:       logger,
		lastNonFixed: store.NewCell(0),
	}
}

// Layer returns the external-layer compiler.
func (kn *Kernel) Layer() *ExternalLayer { return kn.layer }

// sweepItem pairs an internal constraint with the first point it may
// forbid.
type sweepItem struct {
	key Point
	ic  InternalConstraint
}

// sweep returns the first point of o's domain, in order ord, that no
// constraint of ictrs forbids.
func (kn *Kernel) sweep(o *Object, ord sweepOrder, ictrs []InternalConstraint) (Point, bool) {
	k := len(o.coords)
	cmp := func(a, b sweepItem) int { return ord.cmp(a.key, b.key) }
	var h *Heap[sweepItem]
	if ord.descending {
		h = NewDescendingHeap(cmp)
	} else {
		h = NewAscendingHeap(cmp)
	}
	items := make([]sweepItem, 0, len(ictrs))
	for _, ic := range ictrs {
		if key, ok := lexInfeasible(ic, ord, o); ok {
			items = append(items, sweepItem{key: key, ic: ic})
		}
	}
	h.Heapify(items)

	c := make(Point, k)
	n := make(Point, k)
	for j := range c {
		c[j] = kn.corner(o, ord, j)
		n[j] = kn.jumpReset(o, ord, j)
	}
	active := make([]InternalConstraint, 0, len(items))
	for {
		for top, ok := h.Peek(); ok && ord.precedes(top.key, c); top, ok = h.Peek() {
			h.Pop()
			active = append(active, top.ic)
		}
		var f *Region
		for _, ic := range active {
			if f = isFeasible(ic, ord, o, c, n); f != nil {
				break
			}
		}
		if f == nil {
			return c, true
		}
		kn.metrics.SweepJump()
		for j := range n {
			if ord.asc[j] {
				n[j] = min(n[j], f.Max[j]+1)
			} else {
				n[j] = max(n[j], f.Min[j]-1)
			}
		}
		if !kn.advance(o, ord, c, n) {
			return nil, false
		}
	}
}

// advance moves c to the next candidate, carrying from the least
// significant dimension. It reports false once every dimension overflows.
func (kn *Kernel) advance(o *Object, ord sweepOrder, c, n Point) bool {
	for i := len(ord.dims) - 1; i >= 0; i-- {
		j := ord.dims[i]
		v := o.coords[j]
		var next int
		var ok bool
		if ord.asc[j] {
			next, ok = v.NextValue(n[j] - 1)
		} else {
			next, ok = v.PrevValue(n[j] + 1)
		}
		n[j] = kn.jumpReset(o, ord, j)
		if ok {
			c[j] = next
			return true
		}
		c[j] = kn.corner(o, ord, j)
	}
	return false
}

func (kn *Kernel) corner(o *Object, ord sweepOrder, j int) int {
	if ord.asc[j] {
		return o.coords[j].LB()
	}
	return o.coords[j].UB()
}

func (kn *Kernel) jumpReset(o *Object, ord sweepOrder, j int) int {
	if ord.asc[j] {
		return o.coords[j].UB() + 1
	}
	return o.coords[j].LB() - 1
}

// sweepBound returns the smallest (min) or largest feasible value of
// dimension d for o.
func (kn *Kernel) sweepBound(o *Object, d int, min bool, ictrs []InternalConstraint) (int, bool) {
	p, ok := kn.sweep(o, rotatedOrder(len(o.coords), d, min), ictrs)
	if !ok {
		return 0, false
	}
	return p[d], true
}

// PruneMin raises the lower bound of dimension d of o to its smallest
// feasible value. It reports false when o has no feasible point.
func (kn *Kernel) PruneMin(o *Object, d int, ictrs []InternalConstraint) (bool, error) {
	x, ok := kn.sweepBound(o, d, true, ictrs)
	if !ok {
		return false, nil
	}
	changed, err := kn.store.UpdateLowerBound(o.coords[d], x, kn.cause)
	if changed {
		kn.metrics.Pruned(1)
	}
	return true, err
}

// PruneMax lowers the upper bound of dimension d of o to its largest
// feasible value.
func (kn *Kernel) PruneMax(o *Object, d int, ictrs []InternalConstraint) (bool, error) {
	x, ok := kn.sweepBound(o, d, false, ictrs)
	if !ok {
		return false, nil
	}
	changed, err := kn.store.UpdateUpperBound(o.coords[d], x, kn.cause)
	if changed {
		kn.metrics.Pruned(1)
	}
	return true, err
}

// compile generates the internal constraints of o for shape sid, keeping
// only those that can forbid part of o's domain.
func (kn *Kernel) compile(o *Object, sid int) []InternalConstraint {
	var out []InternalConstraint
	for _, c := range o.relatedExternal {
		for _, ic := range kn.layer.GenInternalConstraints(c, o, sid) {
			if CardInfeasible(ic, len(o.coords), o) != 0 {
				out = append(out, ic)
			}
		}
	}
	return out
}

// relate records, for every object, the constraints of ectrs naming it.
func (kn *Kernel) relate(ectrs []ExternalConstraint) {
	for _, o := range kn.setup.Objects() {
		o.relatedExternal = o.relatedExternal[:0]
	}
	for _, c := range ectrs {
		for _, id := range c.Objects() {
			if o := kn.setup.Object(id); o != nil {
				o.relatedExternal = append(o.relatedExternal, c)
			}
		}
	}
}

// filterObj prunes the shape and origin domains of o. It reports whether
// a domain changed; a failure comes back as an error.
func (kn *Kernel) filterObj(o *Object) (bool, error) {
	if o.shape.IsInstantiated() {
		return kn.filterFixedShape(o)
	}
	k := len(o.coords)
	lo := make([]int, k)
	hi := make([]int, k)
	for d := range lo {
		lo[d], hi[d] = math.MaxInt, math.MinInt
	}
	changed := false
	for _, sid := range o.shape.Values() {
		ictrs := kn.compile(o, sid)
		feasible := true
		for d := 0; d < k && feasible; d++ {
			l, okl := kn.sweepBound(o, d, true, ictrs)
			h, okh := kn.sweepBound(o, d, false, ictrs)
			if !okl || !okh {
				feasible = false
				break
			}
			lo[d] = min(lo[d], l)
			hi[d] = max(hi[d], h)
		}
		if feasible {
			continue
		}
		ch, err := kn.store.Remove(o.shape, sid, kn.cause)
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	if lo[0] > hi[0] {
		return changed, contradiction(fd.ErrDomainEmpty)
	}
	for d := 0; d < k; d++ {
		ch1, err := kn.store.UpdateLowerBound(o.coords[d], lo[d], kn.cause)
		if err != nil {
			return changed, err
		}
		ch2, err := kn.store.UpdateUpperBound(o.coords[d], hi[d], kn.cause)
		if err != nil {
			return changed, err
		}
		if ch1 || ch2 {
			kn.metrics.Pruned(1)
			changed = true
		}
	}
	if o.shape.IsInstantiated() {
		o.relatedInternal = kn.compile(o, o.shape.Value())
	}
	return changed, nil
}

func (kn *Kernel) filterFixedShape(o *Object) (bool, error) {
	ictrs := kn.compile(o, o.shape.Value())
	o.relatedInternal = ictrs
	changed := false
	for d := range o.coords {
		before := o.coords[d].Stamp()
		ok, err := kn.PruneMin(o, d, ictrs)
		if err == nil && ok {
			ok, err = kn.PruneMax(o, d, ictrs)
		}
		if err != nil {
			return changed, err
		}
		if !ok {
			return changed, contradiction(fd.ErrDomainEmpty)
		}
		changed = changed || o.coords[d].Stamp() != before
	}
	return changed, nil
}

// FilterCtrs prunes the objects named by objectIDs against ectrs until
// nothing changes. It reports false on contradiction.
func (kn *Kernel) FilterCtrs(objectIDs []int, ectrs []ExternalConstraint) (bool, error) {
	kn.relate(ectrs)
	for {
		changed, err := kn.updateDistances(ectrs)
		if err == nil {
			var ch bool
			ch, err = kn.syncTimes(objectIDs)
			changed = changed || ch
		}
		for _, id := range objectIDs {
			if err != nil {
				break
			}
			var ch bool
			ch, err = kn.filterObj(kn.setup.Object(id))
			changed = changed || ch
		}
		if err != nil {
			if fd.IsFailure(err) {
				kn.metrics.Failure()
				return false, nil
			}
			return false, err
		}
		if !changed {
			return true, nil
		}
	}
}

// updateDistances tightens the distance variables of every distance
// bound whose objects both have a fixed shape.
func (kn *Kernel) updateDistances(ectrs []ExternalConstraint) (bool, error) {
	changed := false
	for _, c := range ectrs {
		var ic distanceUpdater
		switch c := c.(type) {
		case *DistLeq:
			if dp, ok := kn.fixedPair(c.distBase); ok {
				ic = &DistLeqIC{dp}
			}
		case *DistGeq:
			if dp, ok := kn.fixedPair(c.distBase); ok {
				ic = &DistGeqIC{dp}
			}
		}
		if ic == nil {
			continue
		}
		ch, err := ic.UpdateDistance(kn.store, kn.cause)
		if err != nil {
			return changed, contradiction(err)
		}
		changed = changed || ch
	}
	return changed, nil
}

func (kn *Kernel) fixedPair(c distBase) (distPair, bool) {
	if c.DVar == nil {
		return distPair{}, false
	}
	o1 := kn.setup.Object(c.O1)
	if !o1.shape.IsInstantiated() {
		return distPair{}, false
	}
	return kn.layer.distPair(c, o1, o1.shape.Value())
}

// syncTimes keeps start+duration=end bounds-consistent.
func (kn *Kernel) syncTimes(objectIDs []int) (bool, error) {
	changed := false
	for _, id := range objectIDs {
		o := kn.setup.Object(id)
		if !o.hasTime() {
			continue
		}
		s, d, e := o.start, o.duration, o.end
		for {
			steps := []struct {
				v     *fd.IntVar
				lower bool
				x     int
			}{
				{e, true, s.LB() + d.LB()},
				{e, false, s.UB() + d.UB()},
				{s, true, e.LB() - d.UB()},
				{s, false, e.UB() - d.LB()},
				{d, true, e.LB() - s.UB()},
				{d, false, e.UB() - s.LB()},
			}
			round := false
			for _, st := range steps {
				var ch bool
				var err error
				if st.lower {
					ch, err = kn.store.UpdateLowerBound(st.v, st.x, kn.cause)
				} else {
					ch, err = kn.store.UpdateUpperBound(st.v, st.x, kn.cause)
				}
				if err != nil {
					return changed, err
				}
				round = round || ch
			}
			if !round {
				break
			}
			changed = true
		}
	}
	return changed, nil
}

// FixAllObjs places every object of objectIDs in turn, from index start,
// at the first feasible point of its control vector's order. It reports
// false when an object cannot be placed or the final placement violates
// a constraint. Callers wrap it in a checkpoint.
func (kn *Kernel) FixAllObjs(objectIDs []int, ectrs []ExternalConstraint, start int) (bool, error) {
	kn.relate(ectrs)
	for i := start; i < len(objectIDs); i++ {
		o := kn.setup.Object(objectIDs[i])
		cv := kn.opts.controlVector(i)
		ok, err := kn.fixObj(o, cv)
		if err != nil || !ok {
			return false, failureOrDefect(err)
		}
		if kn.opts.Increment {
			kn.lastNonFixed.Set(i + 1)
		}
	}
	if _, err := kn.updateDistances(ectrs); err != nil {
		return false, failureOrDefect(err)
	}
	return kn.validate(objectIDs), nil
}

// FixAllObjsIncr resumes greedy placement at the first object not pinned
// on the current branch.
func (kn *Kernel) FixAllObjsIncr(objectIDs []int, ectrs []ExternalConstraint) (bool, error) {
	return kn.FixAllObjs(objectIDs, ectrs, kn.lastNonFixed.Get())
}

// advanceFixedPrefix moves lastNonFixed past objects already fixed.
func (kn *Kernel) advanceFixedPrefix(objectIDs []int) {
	i := kn.lastNonFixed.Get()
	for i < len(objectIDs) && kn.setup.Object(objectIDs[i]).IsFixed() {
		i++
	}
	kn.lastNonFixed.Set(i)
}

func (kn *Kernel) fixObj(o *Object, cv ControlVector) (bool, error) {
	sid := o.shape.UB()
	if cv.ShapeAscending() {
		sid = o.shape.LB()
	}
	if _, err := kn.store.Instantiate(o.shape, sid, kn.cause); err != nil {
		return false, err
	}
	p, ok := kn.sweep(o, controlOrder(cv), kn.compile(o, sid))
	if !ok {
		return false, nil
	}
	for d, v := range o.coords {
		if _, err := kn.store.Instantiate(v, p[d], kn.cause); err != nil {
			return false, err
		}
	}
	if !o.hasTime() {
		return true, nil
	}
	if _, err := kn.store.Instantiate(o.start, o.start.LB(), kn.cause); err != nil {
		return false, err
	}
	if _, err := kn.store.Instantiate(o.duration, o.duration.LB(), kn.cause); err != nil {
		return false, err
	}
	if _, err := kn.store.Instantiate(o.end, o.start.Value()+o.duration.Value(), kn.cause); err != nil {
		return false, err
	}
	return true, nil
}

// validate checks every placed object against its internal constraints
// compiled from the final placement.
func (kn *Kernel) validate(objectIDs []int) bool {
	for _, id := range objectIDs {
		o := kn.setup.Object(id)
		p := o.Lower()
		for _, ic := range kn.compile(o, o.shape.Value()) {
			if ic.InsideForbidden(p) {
				kn.logger.Debug("greedy placement rejected", "object", id, "at", p, "by", ic)
				return false
			}
		}
	}
	return true
}

// failureOrDefect maps ordinary failures to nil so that greedy placement
// reports them as false.
func failureOrDefect(err error) error {
	if err == nil || fd.IsFailure(err) {
		return nil
	}
	return err
}
