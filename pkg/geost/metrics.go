package geost

// metrics.go: counters describing what the constraint did

import (
	"fmt"
	"sync"
)

// Metrics receives events from the constraint. Implementations must be
// cheap; they are called from inside propagation.
type Metrics interface {
	Episode()
	GreedyAttempt(ok bool)
	SweepJump()
	FrameBuilt()
	FrameReused()
	InternalGenerated(n int)
	Pruned(n int)
	Failure()
}

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) Episode()              {}
func (NopMetrics) GreedyAttempt(bool)    {}
func (NopMetrics) SweepJump()            {}
func (NopMetrics) FrameBuilt()           {}
func (NopMetrics) FrameReused()          {}
func (NopMetrics) InternalGenerated(int) {}
func (NopMetrics) Pruned(int)            {}
func (NopMetrics) Failure()              {}

// CounterStats is a snapshot of Counters.
type CounterStats struct {
	Episodes          int
	GreedyAttempts    int
	GreedySuccesses   int
	SweepJumps        int
	FramesBuilt       int
	FramesReused      int
	InternalGenerated int
	Prunes            int
	Failures          int
}

func (s CounterStats) String() string {
	return fmt.Sprintf(
		"Episodes: %d (%d failed)\n"+
			"Greedy: %d/%d placed\n"+
			"Frames: %d built, %d reused\n"+
			"Sweep: %d jumps, %d internal constraints, %d prunes",
		s.Episodes, s.Failures,
		s.GreedySuccesses, s.GreedyAttempts,
		s.FramesBuilt, s.FramesReused,
		s.SweepJumps, s.InternalGenerated, s.Prunes,
	)
}

// Counters is a Metrics that accumulates CounterStats. It may be shared by
// several constraints and read from other goroutines.
type Counters struct {
	mu    sync.Mutex
	stats CounterStats
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

// Stats returns a copy of the current counts.
func (c *Counters) Stats() CounterStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Counters) update(f func(*CounterStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f(&c.stats)
}

func (c *Counters) Episode() { c.update(func(s *CounterStats) { s.Episodes++ }) }

func (c *Counters) GreedyAttempt(ok bool) {
	c.update(func(s *CounterStats) {
		s.GreedyAttempts++
		if ok {
			s.GreedySuccesses++
		}
	})
}

func (c *Counters) SweepJump()   { c.update(func(s *CounterStats) { s.SweepJumps++ }) }
func (c *Counters) FrameBuilt()  { c.update(func(s *CounterStats) { s.FramesBuilt++ }) }
func (c *Counters) FrameReused() { c.update(func(s *CounterStats) { s.FramesReused++ }) }
func (c *Counters) Failure()     { c.update(func(s *CounterStats) { s.Failures++ }) }

func (c *Counters) InternalGenerated(n int) {
	c.update(func(s *CounterStats) { s.InternalGenerated += n })
}

func (c *Counters) Pruned(n int) { c.update(func(s *CounterStats) { s.Prunes += n }) }
