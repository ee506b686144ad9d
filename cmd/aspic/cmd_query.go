package main

import (
	"github.com/spf13/cobra"
)

var queryFlags goalFlags

var queryCmd = &cobra.Command{
	Use:   "query [goal]",
	Short: "List the justified arguments for a goal",
	Long: `Builds every argument for the goal, searches their attackers and prints
the arguments accepted under the configured semantics.

Example:
  aspic query --file birds.pl "flies(X)"
  aspic query --base birds --assume "penguin(tweety)" "flies(tweety)"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryFlags.bind(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, queryFlags.base != "")
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := evaluate(ctx, a, queryFlags.sourceFlags, queryFlags.request(args[0]))
	if err != nil {
		return err
	}

	accepted := ev.Accepted()
	if len(accepted) == 0 {
		fprintf(cmd, "no justified argument for %s (%d built, semantics %s)\n", ev.Goal.Inspect(), len(ev.Query), ev.Semantics)
		return nil
	}
	vars := ev.Goal.Variables()
	for _, arg := range accepted {
		if len(vars) > 0 {
			fprintf(cmd, "%s\t%g\t%s\n", arg.Substitution.Restrict(vars).Inspect(), arg.Support, arg.Inspect())
			continue
		}
		fprintf(cmd, "%g\t%s\n", arg.Support, arg.Inspect())
	}
	return nil
}
