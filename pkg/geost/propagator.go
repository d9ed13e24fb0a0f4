package geost

// propagator.go: the placement constraint as an fd.Propagator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gitrdm/geost/pkg/fd"
)

// Config describes one placement constraint.
type Config struct {
	Dimension   int
	Objects     []*Object
	Boxes       []ShiftedBox
	Constraints []ExternalConstraint
	Options     Options
	// Logger receives debug traces; nil discards them.
	Logger *log.Logger
	// Metrics receives counters; nil discards them.
	Metrics Metrics
}

// Geost is the placement constraint. It is posted on one store and driven
// by that store's goroutine.
type Geost struct {
	id      uuid.UUID
	setup   *Setup
	kernel  *Kernel
	opts    Options
	metrics Metrics
	logger  *log.Logger
	store   *fd.Store

	objectIDs []int
	vars      []*fd.IntVar
}

// New validates cfg, builds the constraint and posts it on store.
func New(store *fd.Store, cfg Config) (*Geost, error) {
	if cfg.Dimension < 1 {
		return nil, fmt.Errorf("geost: dimension %d: %w", cfg.Dimension, ErrConfigurationMismatch)
	}
	setup := NewSetup(cfg.Dimension)
	for _, b := range cfg.Boxes {
		if err := setup.AddBox(b); err != nil {
			return nil, err
		}
	}
	for _, o := range cfg.Objects {
		if err := setup.AddObject(o); err != nil {
			return nil, err
		}
	}
	for _, c := range cfg.Constraints {
		if err := setup.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	opts := cfg.Options.clone()
	if opts.Greedy {
		if len(opts.ControlVectors) == 0 {
			return nil, fmt.Errorf("geost: greedy placement needs a control vector: %w", ErrConfigurationMismatch)
		}
		for _, cv := range opts.ControlVectors {
			if err := cv.validate(cfg.Dimension); err != nil {
				return nil, err
			}
		}
	}

	g := &Geost{
		id:        uuid.New(),
		setup:     setup,
		opts:      opts,
		metrics:   cfg.Metrics,
		store:     store,
		objectIDs: setup.ObjectIDs(),
	}
	if g.metrics == nil {
		g.metrics = NopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	g.logger = logger.With("geost", g.id.String()[:8])
	g.kernel = NewKernel(store, setup, opts, g.metrics, g.logger, g)

	for _, o := range setup.Objects() {
		g.vars = append(g.vars, o.Variables()...)
	}
	for _, c := range setup.Constraints() {
		switch c := c.(type) {
		case *DistLeq:
			if c.DVar != nil {
				g.vars = append(g.vars, c.DVar)
			}
		case *DistGeq:
			if c.DVar != nil {
				g.vars = append(g.vars, c.DVar)
			}
		}
	}
	store.Post(g)
	g.logger.Debug("posted", "objects", len(g.objectIDs), "constraints", len(setup.Constraints()), "greedy", opts.Greedy)
	return g, nil
}

func discardLogger() *log.Logger { return log.New(io.Discard) }

// ID returns the instance id.
func (g *Geost) ID() uuid.UUID { return g.id }

// Setup returns the registry the constraint was built from.
func (g *Geost) Setup() *Setup { return g.setup }

// Kernel returns the algorithms bound to this constraint.
func (g *Geost) Kernel() *Kernel { return g.kernel }

// Variables lists every variable the constraint watches.
func (g *Geost) Variables() []*fd.IntVar { return g.vars }

func (g *Geost) String() string {
	return fmt.Sprintf("geost[%s](k=%d, %d objects, %d constraints)", g.id.String()[:8], g.setup.Dimension(), len(g.objectIDs), len(g.setup.Constraints()))
}

// Propagate runs one episode. With greedy placement enabled it first
// tries to pin every object inside a checkpoint; on success the placement
// is replayed outside the checkpoint, otherwise the episode falls back to
// plain filtering.
func (g *Geost) Propagate(ctx context.Context, s *fd.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.metrics.Episode()
	ectrs := g.setup.Constraints()
	if _, err := g.kernel.updateDistances(ectrs); err != nil {
		g.metrics.Failure()
		return err
	}
	if g.opts.Greedy {
		placed, err := g.greedy(s, ectrs)
		if err != nil {
			return err
		}
		if placed {
			return nil
		}
	}
	ok, err := g.kernel.FilterCtrs(g.objectIDs, ectrs)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Debug("filtering failed")
		return contradiction(fd.ErrInconsistent)
	}
	return nil
}

func (g *Geost) greedy(s *fd.Store, ectrs []ExternalConstraint) (bool, error) {
	if g.opts.Increment {
		g.kernel.advanceFixedPrefix(g.objectIDs)
	}
	s.PushCheckpoint()
	var ok bool
	var err error
	if g.opts.Increment {
		ok, err = g.kernel.FixAllObjsIncr(g.objectIDs, ectrs)
	} else {
		ok, err = g.kernel.FixAllObjs(g.objectIDs, ectrs, 0)
	}
	if err != nil || !ok {
		s.PopCheckpoint()
		g.metrics.GreedyAttempt(false)
		if err == nil {
			g.logger.Debug("greedy placement failed, filtering instead")
		}
		return false, err
	}
	type pin struct {
		v *fd.IntVar
		x int
	}
	pins := make([]pin, 0, len(g.vars))
	for _, v := range g.vars {
		if v.IsInstantiated() {
			pins = append(pins, pin{v, v.Value()})
		}
	}
	s.PopCheckpoint()
	for _, p := range pins {
		if _, err := s.Instantiate(p.v, p.x, g); err != nil {
			g.metrics.Failure()
			return false, contradiction(err)
		}
	}
	if _, err := g.kernel.updateDistances(ectrs); err != nil {
		g.metrics.Failure()
		return false, err
	}
	g.metrics.GreedyAttempt(true)
	g.logger.Debug("greedy placement succeeded")
	return true, nil
}

// Entailment is the outcome of an entailment check.
type Entailment int

const (
	// Undecided means some object is not fixed yet.
	Undecided Entailment = iota
	// Entailed means every object is fixed and no constraint is violated.
	Entailed
	// Violated means every object is fixed and some constraint is violated.
	Violated
)

func (e Entailment) String() string {
	switch e {
	case Entailed:
		return "entailed"
	case Violated:
		return "violated"
	}
	return "undecided"
}

// IsEntailed checks a complete placement without changing the store.
func (g *Geost) IsEntailed() (Entailment, error) {
	for _, id := range g.objectIDs {
		if !g.setup.Object(id).IsFixed() {
			return Undecided, nil
		}
	}
	g.store.PushCheckpoint()
	defer g.store.PopCheckpoint()
	ok, err := g.kernel.FilterCtrs(g.objectIDs, g.setup.Constraints())
	if err != nil {
		return Undecided, err
	}
	if !ok {
		return Violated, nil
	}
	return Entailed, nil
}
