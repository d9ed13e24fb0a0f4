package fd

// search.go: iterative depth-first search over the store

import (
	"context"
)

// Strategy selects the next branching variable.
type Strategy int

const (
	// InputOrder branches on the first uninstantiated variable.
	InputOrder Strategy = iota
	// DomOverDeg branches on the variable with the smallest domain size
	// divided by its number of propagators.
	DomOverDeg
)

// SearchConfig parameterises Solve.
type SearchConfig struct {
	// Vars are the decision variables. Empty means every store variable.
	Vars []*IntVar
	// Strategy picks the branching variable.
	Strategy Strategy
	// Limit stops the search after this many solutions; 0 means all.
	Limit int
	// OnSolution is called for each solution with values aligned to Vars.
	// Returning false stops the search.
	OnSolution func(values []int) bool
}

// Solve enumerates solutions with an iterative backtracking search. Values
// are tried in ascending order. The store is restored to its pre-search
// state before Solve returns.
func (s *Store) Solve(ctx context.Context, cfg SearchConfig) ([][]int, error) {
	var solutions [][]int
	visit := func(values []int) bool {
		solutions = append(solutions, values)
		if cfg.OnSolution != nil && !cfg.OnSolution(values) {
			return false
		}
		return cfg.Limit <= 0 || len(solutions) < cfg.Limit
	}
	err := s.search(ctx, cfg, visit)
	return solutions, err
}

// Count returns the number of solutions over vars.
func (s *Store) Count(ctx context.Context, vars []*IntVar) (int, error) {
	n := 0
	err := s.search(ctx, SearchConfig{Vars: vars}, func([]int) bool {
		n++
		return true
	})
	return n, err
}

func (s *Store) search(ctx context.Context, cfg SearchConfig, visit func([]int) bool) error {
	vars := cfg.Vars
	if len(vars) == 0 {
		vars = s.vars
	}
	if s.monitor != nil {
		defer s.monitor.FinishSearch()
	}

	base := s.Depth()
	s.PushCheckpoint()
	defer func() {
		for s.Depth() > base {
			s.PopCheckpoint()
		}
	}()

	if err := s.Propagate(ctx); err != nil {
		if IsFailure(err) {
			return nil
		}
		return err
	}
	if s.allInstantiated(vars) {
		s.record(vars, visit)
		return nil
	}

	type frame struct {
		v       *IntVar
		choices []int
		next    int
		open    bool
	}
	first := s.selectVariable(vars, cfg.Strategy)
	stack := []frame{{v: first, choices: first.Values()}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := &stack[len(stack)-1]
		if f.open {
			s.PopCheckpoint()
			f.open = false
		}
		if f.next >= len(f.choices) {
			stack = stack[:len(stack)-1]
			if s.monitor != nil {
				s.monitor.RecordBacktrack()
			}
			continue
		}
		val := f.choices[f.next]
		f.next++

		s.PushCheckpoint()
		f.open = true
		if s.monitor != nil {
			s.monitor.RecordNode()
			s.monitor.RecordDepth(len(stack))
		}
		_, err := s.Instantiate(f.v, val, nil)
		if err == nil {
			err = s.Propagate(ctx)
		}
		if err != nil {
			if !IsFailure(err) {
				return err
			}
			continue
		}
		if s.allInstantiated(vars) {
			if !s.record(vars, visit) {
				return nil
			}
			continue
		}
		nv := s.selectVariable(vars, cfg.Strategy)
		stack = append(stack, frame{v: nv, choices: nv.Values()})
	}
	return nil
}

func (s *Store) record(vars []*IntVar, visit func([]int) bool) bool {
	values := make([]int, len(vars))
	for i, v := range vars {
		values[i] = v.Value()
	}
	if s.monitor != nil {
		s.monitor.RecordSolution()
	}
	return visit(values)
}

func (s *Store) allInstantiated(vars []*IntVar) bool {
	for _, v := range vars {
		if !v.IsInstantiated() {
			return false
		}
	}
	return true
}

// selectVariable returns the branching variable among the uninstantiated
// ones; the caller guarantees at least one exists.
func (s *Store) selectVariable(vars []*IntVar, strategy Strategy) *IntVar {
	var best *IntVar
	bestScore := 0.0
	for _, v := range vars {
		if v.IsInstantiated() {
			continue
		}
		if strategy == InputOrder {
			return v
		}
		score := float64(v.Size()) / float64(1+len(v.watchers))
		if best == nil || score < bestScore {
			best, bestScore = v, score
		}
	}
	return best
}
