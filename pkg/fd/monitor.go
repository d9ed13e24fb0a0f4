package fd

// monitor.go: statistics for search and propagation

import (
	"fmt"
	"sync"
	"time"
)

// SearchStats holds statistics about one or more searches.
type SearchStats struct {
	// Search statistics
	Nodes      int           // Number of branching decisions tried
	Backtracks int           // Number of exhausted choice points
	Solutions  int           // Number of solutions found
	SearchTime time.Duration // Time since the monitor was created, at the last FinishSearch
	MaxDepth   int           // Maximum search depth reached

	// Propagation statistics
	Propagations    int           // Number of propagator runs
	PropagationTime time.Duration // Time spent in propagators

	// Memory statistics
	PeakTrailSize int // Peak size of the undo trail
}

// Monitor collects SearchStats. It is safe to read from another goroutine
// while the store that feeds it is searching.
type Monitor struct {
	mu        sync.Mutex
	stats     SearchStats
	startTime time.Time
	propStart time.Time
}

// NewMonitor creates a monitor whose clock starts now.
func NewMonitor() *Monitor {
	return &Monitor{startTime: time.Now()}
}

// Stats returns a copy of the current statistics.
func (m *Monitor) Stats() SearchStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// StartPropagation marks the beginning of a propagator run.
func (m *Monitor) StartPropagation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.propStart = time.Now()
}

// EndPropagation marks the end of a propagator run.
func (m *Monitor) EndPropagation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.propStart.IsZero() {
		m.stats.PropagationTime += time.Since(m.propStart)
		m.stats.Propagations++
		m.propStart = time.Time{}
	}
}

// RecordBacktrack records an exhausted choice point.
func (m *Monitor) RecordBacktrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks++
}

// RecordNode records a branching decision.
func (m *Monitor) RecordNode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Nodes++
}

// RecordSolution records a solution.
func (m *Monitor) RecordSolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Solutions++
}

// RecordDepth records the current search depth.
func (m *Monitor) RecordDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// RecordTrailSize records the current trail size.
func (m *Monitor) RecordTrailSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.stats.PeakTrailSize {
		m.stats.PeakTrailSize = size
	}
}

// FinishSearch stamps the elapsed time.
func (m *Monitor) FinishSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SearchTime = time.Since(m.startTime)
}

// String returns a formatted summary.
func (s SearchStats) String() string {
	return fmt.Sprintf(
		"Search: %d nodes, %d backtracks, %d solutions, %v time, max depth %d\n"+
			"Propagation: %d runs, %v time\n"+
			"Memory: peak trail %d",
		s.Nodes, s.Backtracks, s.Solutions, s.SearchTime, s.MaxDepth,
		s.Propagations, s.PropagationTime,
		s.PeakTrailSize,
	)
}
