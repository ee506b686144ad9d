package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/aspic/pkg/aspic/config"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

var batchFlags struct {
	goals    []string
	needed   float64
	parallel int
}

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Evaluate goals against several rule files concurrently",
	Long: `Loads every rule file into its own knowledge base and evaluates each goal
against each base. Results are printed in file order.

Example:
  aspic batch --goal "flies(tweety)" --goal "~flies(opus)" birds/*.pl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringArrayVarP(&batchFlags.goals, "goal", "g", nil, "Goal to evaluate (repeatable, required)")
	f.Float64Var(&batchFlags.needed, "needed", 0, "Minimum support of reported arguments")
	f.IntVarP(&batchFlags.parallel, "parallel", "p", runtime.NumCPU(), "Number of files evaluated at once")
	_ = batchCmd.MarkFlagRequired("goal")
}

// batchResult holds the outcome of one goal against one file.
type batchResult struct {
	file     string
	goal     string
	accepted int
	built    int
	best     float64
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	comp, err := loadComponents()
	if err != nil {
		return err
	}

	goals := make([]term.ElementList, len(batchFlags.goals))
	for i, src := range batchFlags.goals {
		if goals[i], err = term.ParseList(src); err != nil {
			return fmt.Errorf("goal %q: %w", src, err)
		}
	}

	results, err := evaluateFiles(ctx, comp.Reasoner, args, goals, batchFlags.needed, batchFlags.parallel)
	if err != nil {
		return err
	}
	for _, r := range results {
		fprintf(cmd, "%s\t%s\t%d/%d accepted\tbest %g\n", r.file, r.goal, r.accepted, r.built, r.best)
	}
	return nil
}

// evaluateFiles evaluates every goal against every file, one knowledge base
// per goroutine. The first failure cancels the remaining files.
func evaluateFiles(ctx context.Context, engine *reasoner.Engine, files []string, goals []term.ElementList, needed float64, parallel int) ([]batchResult, error) {
	results := make([][]batchResult, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			f, err := config.LoadKnowledgeBaseFile(path)
			if err != nil {
				return err
			}
			base, err := f.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, goal := range goals {
				ev, err := engine.Evaluate(gCtx, base, goal, needed, reasoner.WithParty(f.Name))
				if err != nil {
					return fmt.Errorf("%s: %s: %w", path, goal.Inspect(), err)
				}
				r := batchResult{file: path, goal: goal.Inspect(), built: len(ev.Query)}
				for _, arg := range ev.Accepted() {
					r.accepted++
					if arg.Support > r.best {
						r.best = arg.Support
					}
				}
				results[i] = append(results[i], r)
			}
			logger.Debug("batch file done", zap.String("file", path), zap.Int("goals", len(goals)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []batchResult
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out, nil
}
