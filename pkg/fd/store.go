package fd

// store.go: variable store, trail, checkpoints and the propagation queue

import (
	"context"
	"errors"
	"fmt"
)

// Propagator is a constraint the store schedules whenever one of its
// variables changes. Propagate must only narrow domains, and only through
// the store's update operations.
type Propagator interface {
	Propagate(ctx context.Context, s *Store) error
	Variables() []*IntVar
	String() string
}

// change is a single trail entry: either a saved variable domain or a
// saved cell value.
type change struct {
	v      *IntVar
	lo, hi int
	size   int
	bits   []uint64

	cell    *Cell
	cellVal int
}

// Store owns variables, propagators and the undo trail.
//
// A Store is driven by a single goroutine. Independent problems that need
// to run concurrently each get their own Store.
type Store struct {
	vars   []*IntVar
	props  []Propagator
	propIx map[Propagator]int

	queue  []int
	queued []bool

	trail       []change
	checkpoints []int
	clock       uint64

	monitor *Monitor
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		vars:   make([]*IntVar, 0, 64),
		propIx: make(map[Propagator]int),
		queue:  make([]int, 0, 16),
		trail:  make([]change, 0, 1024),
	}
}

// SetMonitor attaches a statistics collector. A nil monitor disables
// collection.
func (s *Store) SetMonitor(m *Monitor) { s.monitor = m }

// Monitor returns the attached collector, if any.
func (s *Store) Monitor() *Monitor { return s.monitor }

// NewIntVar creates a bounded variable over [lo, hi].
func (s *Store) NewIntVar(name string, lo, hi int) (*IntVar, error) {
	if lo > hi {
		return nil, fmt.Errorf("NewIntVar: %s: empty range [%d, %d]: %w", name, lo, hi, ErrInvalidArgument)
	}
	v := &IntVar{id: len(s.vars), name: name, lo: lo, hi: hi, size: hi - lo + 1}
	s.register(v)
	return v, nil
}

// NewEnumVar creates an enumerated variable holding exactly values.
func (s *Store) NewEnumVar(name string, values []int) (*IntVar, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("NewEnumVar: %s: no values: %w", name, ErrInvalidArgument)
	}
	lo, hi := values[0], values[0]
	for _, x := range values[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	v := &IntVar{id: len(s.vars), name: name, lo: lo, hi: hi, base: lo}
	v.bits = make([]uint64, (hi-lo)/64+1)
	for _, x := range values {
		i := x - lo
		if v.bits[i/64]&(1<<(uint(i)%64)) == 0 {
			v.bits[i/64] |= 1 << (uint(i) % 64)
			v.size++
		}
	}
	s.register(v)
	return v, nil
}

// Const creates an instantiated bounded variable.
func (s *Store) Const(x int) *IntVar {
	v, _ := s.NewIntVar(fmt.Sprintf("c%d", x), x, x)
	return v
}

// MustIntVar is NewIntVar for ranges known to be non-empty.
func (s *Store) MustIntVar(name string, lo, hi int) *IntVar {
	v, err := s.NewIntVar(name, lo, hi)
	if err != nil {
		panic(err)
	}
	return v
}

// MustEnumVar is NewEnumVar for non-empty value lists.
func (s *Store) MustEnumVar(name string, values ...int) *IntVar {
	v, err := s.NewEnumVar(name, values)
	if err != nil {
		panic(err)
	}
	return v
}

func (s *Store) register(v *IntVar) {
	s.clock++
	v.stamp = s.clock
	s.vars = append(s.vars, v)
}

// Vars returns every variable in creation order.
func (s *Store) Vars() []*IntVar { return s.vars }

// Post registers a propagator and schedules its first run.
func (s *Store) Post(p Propagator) {
	idx := len(s.props)
	s.props = append(s.props, p)
	s.propIx[p] = idx
	s.queued = append(s.queued, false)
	for _, v := range p.Variables() {
		v.watchers = append(v.watchers, idx)
	}
	s.enqueue(idx)
}

func (s *Store) enqueue(idx int) {
	if s.queued[idx] {
		return
	}
	s.queued[idx] = true
	s.queue = append(s.queue, idx)
}

func (s *Store) clearQueue() {
	for _, idx := range s.queue {
		s.queued[idx] = false
	}
	s.queue = s.queue[:0]
}

// Propagate runs queued propagators until the queue is empty or one of
// them fails. On failure the queue is cleared and the error returned.
func (s *Store) Propagate(ctx context.Context) error {
	for len(s.queue) > 0 {
		if err := ctx.Err(); err != nil {
			s.clearQueue()
			return err
		}
		idx := s.queue[0]
		s.queue = s.queue[1:]
		s.queued[idx] = false

		if s.monitor != nil {
			s.monitor.StartPropagation()
		}
		err := s.props[idx].Propagate(ctx, s)
		if s.monitor != nil {
			s.monitor.EndPropagation()
		}
		if err != nil {
			s.clearQueue()
			return err
		}
	}
	return nil
}

// save pushes the current domain of v on the trail.
func (s *Store) save(v *IntVar) {
	s.trail = append(s.trail, change{v: v, lo: v.lo, hi: v.hi, size: v.size, bits: v.cloneBits()})
	if s.monitor != nil {
		s.monitor.RecordTrailSize(len(s.trail))
	}
}

// touch stamps v and schedules its watchers, except cause.
func (s *Store) touch(v *IntVar, cause Propagator) {
	s.clock++
	v.stamp = s.clock
	skip := -1
	if cause != nil {
		if idx, ok := s.propIx[cause]; ok {
			skip = idx
		}
	}
	for _, w := range v.watchers {
		if w != skip {
			s.enqueue(w)
		}
	}
}

func wipeout(v *IntVar) error {
	return fmt.Errorf("%s: %w", v.name, ErrDomainEmpty)
}

// UpdateLowerBound raises the lower bound of v to at least x. cause names
// the propagator responsible and is not rescheduled by this change.
func (s *Store) UpdateLowerBound(v *IntVar, x int, cause Propagator) (bool, error) {
	if x <= v.lo {
		return false, nil
	}
	if x > v.hi {
		return false, wipeout(v)
	}
	if v.bits != nil {
		nlo, ok := v.scanUp(x)
		if !ok {
			return false, wipeout(v)
		}
		s.save(v)
		for y := v.lo; y < nlo; y++ {
			if v.hasBit(y) {
				v.clearBit(y)
				v.size--
			}
		}
		v.lo = nlo
	} else {
		s.save(v)
		v.lo = x
		v.size = v.hi - v.lo + 1
	}
	s.touch(v, cause)
	return true, nil
}

// UpdateUpperBound lowers the upper bound of v to at most x.
func (s *Store) UpdateUpperBound(v *IntVar, x int, cause Propagator) (bool, error) {
	if x >= v.hi {
		return false, nil
	}
	if x < v.lo {
		return false, wipeout(v)
	}
	if v.bits != nil {
		nhi, ok := v.scanDown(x)
		if !ok {
			return false, wipeout(v)
		}
		s.save(v)
		for y := v.hi; y > nhi; y-- {
			if v.hasBit(y) {
				v.clearBit(y)
				v.size--
			}
		}
		v.hi = nhi
	} else {
		s.save(v)
		v.hi = x
		v.size = v.hi - v.lo + 1
	}
	s.touch(v, cause)
	return true, nil
}

// Instantiate reduces v to the single value x.
func (s *Store) Instantiate(v *IntVar, x int, cause Propagator) (bool, error) {
	if !v.Contains(x) {
		return false, wipeout(v)
	}
	if v.size == 1 {
		return false, nil
	}
	s.save(v)
	if v.bits != nil {
		for i := range v.bits {
			v.bits[i] = 0
		}
		i := x - v.base
		v.bits[i/64] = 1 << (uint(i) % 64)
	}
	v.lo, v.hi, v.size = x, x, 1
	s.touch(v, cause)
	return true, nil
}

// Remove deletes x from the domain of v. Bounded variables can only lose
// their bounds; removing an interior value from them is a no-op.
func (s *Store) Remove(v *IntVar, x int, cause Propagator) (bool, error) {
	if !v.Contains(x) {
		return false, nil
	}
	if v.size == 1 {
		return false, wipeout(v)
	}
	switch {
	case x == v.lo:
		return s.UpdateLowerBound(v, x+1, cause)
	case x == v.hi:
		return s.UpdateUpperBound(v, x-1, cause)
	case v.bits == nil:
		return false, nil
	}
	s.save(v)
	v.clearBit(x)
	v.size--
	s.touch(v, cause)
	return true, nil
}

// Cell is a trailed integer: its value is restored when the checkpoint it
// was set under is popped.
type Cell struct {
	s *Store
	v int
}

// NewCell creates a trailed cell holding v.
func (s *Store) NewCell(v int) *Cell { return &Cell{s: s, v: v} }

// Get returns the current value.
func (c *Cell) Get() int { return c.v }

// Set records the old value on the trail and stores v.
func (c *Cell) Set(v int) {
	if c.v == v {
		return
	}
	c.s.trail = append(c.s.trail, change{cell: c, cellVal: c.v})
	c.v = v
}

// PushCheckpoint opens a new backtrackable level.
func (s *Store) PushCheckpoint() {
	s.checkpoints = append(s.checkpoints, len(s.trail))
}

// PopCheckpoint undoes every change made since the matching
// PushCheckpoint. Popping with no open checkpoint is a no-op.
func (s *Store) PopCheckpoint() {
	n := len(s.checkpoints)
	if n == 0 {
		return
	}
	s.undo(s.checkpoints[n-1])
	s.checkpoints = s.checkpoints[:n-1]
}

// Depth returns the number of open checkpoints.
func (s *Store) Depth() int { return len(s.checkpoints) }

// undo restores the trail down to size to.
func (s *Store) undo(to int) {
	for i := len(s.trail) - 1; i >= to; i-- {
		ch := s.trail[i]
		if ch.cell != nil {
			ch.cell.v = ch.cellVal
			continue
		}
		v := ch.v
		v.lo, v.hi, v.size, v.bits = ch.lo, ch.hi, ch.size, ch.bits
		s.clock++
		v.stamp = s.clock
	}
	s.trail = s.trail[:to]
}

// IsFailure reports whether err signals an ordinary search failure as
// opposed to a defect or a cancellation.
func IsFailure(err error) bool {
	return errors.Is(err, ErrInconsistent)
}

// FD errors
var (
	ErrInconsistent    = errors.New("constraint store is inconsistent")
	ErrDomainEmpty     = fmt.Errorf("domain became empty: %w", ErrInconsistent)
	ErrInvalidArgument = errors.New("invalid argument")
)
