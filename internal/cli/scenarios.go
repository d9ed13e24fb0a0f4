package cli

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/geost/internal/parallel"
	"github.com/gitrdm/geost/pkg/geost"
)

//go:embed scenarios/*.toml
var scenarioFS embed.FS

// variant is one way of running a scenario. exact variants must reproduce
// the expected count; the others only preserve whether a solution exists,
// since a successful greedy placement commits its node.
type variant struct {
	name  string
	exact bool
	apply func(*optionsSpec)
}

var variants = []variant{
	{"filter", true, func(o *optionsSpec) {}},
	{"no-memo", true, func(o *optionsSpec) {
		off := false
		o.Memoisation = &off
	}},
	{"greedy", false, func(o *optionsSpec) { o.Greedy = true }},
	{"greedy-incr", false, func(o *optionsSpec) {
		o.Greedy = true
		o.Increment = true
	}},
}

// scenarioResult is the outcome of one scenario run.
type scenarioResult struct {
	name      string
	variant   string
	solutions int
	expect    *int
	ok        bool
	stats     geost.CounterStats
	elapsed   time.Duration
	err       error
}

func (r scenarioResult) passed() bool { return r.err == nil && r.ok }

func newScenariosCmd() *cobra.Command {
	var (
		workers int
		only    string
	)
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Run the built-in placement scenarios",
		Long:  `Runs every built-in scenario under each propagation variant concurrently and checks the solution counts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			problems, err := builtinScenarios()
			if err != nil {
				return err
			}
			if only != "" {
				problems = slices.DeleteFunc(problems, func(p *problem) bool {
					return !strings.Contains(p.Name, only)
				})
				if len(problems) == 0 {
					return fmt.Errorf("no scenario matches %q", only)
				}
			}

			prog := newProgress(logger)
			results, err := runScenarios(ctx, logger, problems, workers)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Ran %d scenario runs", len(results)))

			fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
			failed := 0
			for _, r := range results {
				if !r.passed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario runs failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent runs (default: number of CPUs)")
	cmd.Flags().StringVar(&only, "only", "", "run scenarios whose name contains this text")
	return cmd
}

// builtinScenarios decodes the embedded scenario files in name order.
func builtinScenarios() ([]*problem, error) {
	entries, err := fs.ReadDir(scenarioFS, "scenarios")
	if err != nil {
		return nil, err
	}
	var out []*problem
	for _, e := range entries {
		data, err := fs.ReadFile(scenarioFS, path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		p, err := parseProblem(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(e.Name(), ".toml")
		}
		out = append(out, p)
	}
	return out, nil
}

// runScenarios runs every problem under every variant on a pool of
// workers. Each run builds its own store. Failed runs are reported in
// their result; the returned error is only set on cancellation.
func runScenarios(ctx context.Context, logger *log.Logger, problems []*problem, workers int) ([]scenarioResult, error) {
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	results := make([]scenarioResult, len(problems)*len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range problems {
		for j, v := range variants {
			slot := &results[i*len(variants)+j]
			*slot = scenarioResult{name: p.Name, variant: v.name, expect: p.Expect}
			g.Go(func() error {
				err := pool.Do(gctx, func() error {
					runScenario(gctx, logger, p, v, slot)
					return nil
				})
				if err != nil && gctx.Err() != nil {
					return err
				}
				if err != nil {
					slot.err = err
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runScenario counts the solutions of one problem variant into r.
func runScenario(ctx context.Context, logger *log.Logger, p *problem, v variant, r *scenarioResult) {
	start := time.Now()
	defer func() { r.elapsed = time.Since(start).Round(time.Microsecond) }()

	variantProblem := *p
	v.apply(&variantProblem.Options)
	in, err := variantProblem.build(logger.With("scenario", p.Name, "variant", v.name))
	if err != nil {
		r.err = err
		return
	}
	n, err := in.store.Count(ctx, in.decision)
	r.stats = in.counters.Stats()
	if err != nil {
		r.err = err
		return
	}
	r.solutions = n
	switch {
	case p.Expect == nil:
		r.ok = true
	case v.exact:
		r.ok = n == *p.Expect
	default:
		r.ok = (n > 0) == (*p.Expect > 0)
	}
	logger.Debug("scenario finished", "scenario", p.Name, "variant", v.name, "solutions", n, "ok", r.ok)
}
