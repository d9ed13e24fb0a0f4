package cli

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/gitrdm/geost/pkg/fd"
)

type solveOpts struct {
	limit    int
	count    bool
	strategy string
	options  string
	greedy   bool
	stats    bool
}

func newSolveCmd() *cobra.Command {
	var opts solveOpts
	cmd := &cobra.Command{
		Use:   "solve <problem.toml>",
		Short: "Solve a placement problem",
		Long: `Solves a placement problem described in TOML and renders its solutions.

Two-dimensional solutions are drawn as a grid with one letter per object;
other dimensions are listed as tables. Use --count to only count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "stop after this many solutions (0 for all)")
	cmd.Flags().BoolVarP(&opts.count, "count", "c", false, "count solutions without rendering them")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "input", "branching strategy: input or domdeg")
	cmd.Flags().StringVar(&opts.options, "options", "", "TOML file overriding the problem's [options] table")
	cmd.Flags().BoolVar(&opts.greedy, "greedy", false, "enable greedy placement")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print search and propagation statistics")
	return cmd
}

func runSolve(cmd *cobra.Command, file string, opts solveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	strategy, err := parseStrategy(opts.strategy)
	if err != nil {
		return err
	}
	p, err := loadProblem(file)
	if err != nil {
		return err
	}
	if opts.options != "" {
		var o optionsSpec
		if _, err := toml.DecodeFile(opts.options, &o); err != nil {
			return fmt.Errorf("options: %w", err)
		}
		p.Options = o
	}
	if opts.greedy {
		p.Options.Greedy = true
	}

	in, err := p.build(logger)
	if err != nil {
		return err
	}
	monitor := fd.NewMonitor()
	in.store.SetMonitor(monitor)
	logger.Debug("problem loaded", "name", p.Name, "objects", len(in.objects), "constraint", in.geost)

	prog := newProgress(logger)
	if opts.count {
		n, err := in.store.Count(ctx, in.decision)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Counted %d solutions", n))
		fmt.Fprintln(out, n)
	} else {
		var solutions [][]placement
		_, err := in.store.Solve(ctx, fd.SearchConfig{
			Vars:     in.decision,
			Strategy: strategy,
			Limit:    opts.limit,
			OnSolution: func([]int) bool {
				solutions = append(solutions, snapshot(in.objects))
				return true
			},
		})
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Found %d solutions", len(solutions)))
		printSolutions(out, in, p.Dimension, solutions)
	}

	if opts.stats {
		fmt.Fprintln(out, monitor.Stats())
		fmt.Fprintln(out, in.counters.Stats())
	}
	return nil
}

func printSolutions(w io.Writer, in *instance, k int, solutions [][]placement) {
	if len(solutions) == 0 {
		fmt.Fprintln(w, styleDim.Render("no solution"))
		return
	}
	for i, pls := range solutions {
		fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Solution %d", i+1)))
		if k == 2 {
			fmt.Fprint(w, renderGrid(in.geost.Setup(), pls))
		}
		fmt.Fprintln(w, renderPlacements(pls))
	}
}

func parseStrategy(s string) (fd.Strategy, error) {
	switch s {
	case "input", "":
		return fd.InputOrder, nil
	case "domdeg":
		return fd.DomOverDeg, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want input or domdeg)", s)
	}
}
