package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic"
	"github.com/cognicore/aspic/pkg/aspic/config"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
)

// sourceFlags select a rule base: a stored one or a rule file.
type sourceFlags struct {
	base string
	file string
}

func (s *sourceFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&s.base, "base", "b", "", "Name of an imported rule base")
	f.StringVarP(&s.file, "file", "f", "", "Rule file (.yaml, .yml, or one rule per line)")
	cmd.MarkFlagsMutuallyExclusive("base", "file")
	cmd.MarkFlagsOneRequired("base", "file")
}

// goalFlags configure a single query.
type goalFlags struct {
	sourceFlags
	needed    float64
	semantics string
	assume    []string
}

func (g *goalFlags) bind(cmd *cobra.Command) {
	g.sourceFlags.bind(cmd)
	f := cmd.Flags()
	f.Float64Var(&g.needed, "needed", 0, "Minimum support of reported arguments")
	f.StringVar(&g.semantics, "semantics", "", "Override semantics: "+strings.Join(reasoner.SemanticsNames(), ", "))
	f.StringArrayVar(&g.assume, "assume", nil, "Rule assumed for this query only (repeatable)")
}

func (g *goalFlags) request(goal string) aspic.QueryRequest {
	return aspic.QueryRequest{
		Base:        g.base,
		Goal:        goal,
		Needed:      g.needed,
		Semantics:   g.semantics,
		Assumptions: g.assume,
	}
}

// evaluate runs the query against the selected base.
func evaluate(ctx context.Context, a *aspic.Aspic, src sourceFlags, req aspic.QueryRequest) (*reasoner.Evaluation, error) {
	base, err := loadBase(ctx, a, src)
	if err != nil {
		return nil, err
	}
	logger.Debug("evaluating", zap.String("goal", req.Goal), zap.String("base", src.base), zap.String("file", src.file))
	return a.Evaluate(ctx, base, req)
}

func loadBase(ctx context.Context, a *aspic.Aspic, src sourceFlags) (*kb.KnowledgeBase, error) {
	if src.file != "" {
		f, err := config.LoadKnowledgeBaseFile(src.file)
		if err != nil {
			return nil, err
		}
		return f.Build()
	}
	return a.KnowledgeBase(ctx, src.base)
}

func verdict(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func fprintf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
