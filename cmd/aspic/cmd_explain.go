package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/aspic/pkg/aspic/cards"
)

var explainFlags struct {
	goalFlags
	hooks bool
}

var explainCmd = &cobra.Command{
	Use:   "explain [goal]",
	Short: "Explain the verdict on every argument for a goal",
	Long: `Prints one card per argument built for the goal: the rules it applies,
the attacks on it and whether they defeat it.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainFlags.bind(explainCmd)
	explainCmd.Flags().BoolVar(&explainFlags.hooks, "hooks", false, "Show rule hooks in argument trees")
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, explainFlags.base != "")
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := evaluate(ctx, a, explainFlags.sourceFlags, explainFlags.request(args[0]))
	if err != nil {
		return err
	}

	fprintf(cmd, "query %s: %s (%s, %d arguments in framework)\n", ev.QueryID, ev.Goal.Inspect(), ev.Semantics, ev.Framework.Len())
	builder := cards.New()
	for i, arg := range ev.Query {
		card := builder.Build(ev, arg)
		fprintf(cmd, "\n[%d] %s\n", i+1, card.Title)
		if explainFlags.hooks {
			fprintf(cmd, "    tree: %s\n", arg.InspectWith(showHooks))
		} else {
			fprintf(cmd, "    tree: %s\n", arg.Inspect())
		}
		if card.Explain.Bindings != "" {
			fprintf(cmd, "    bindings: %s\n", card.Explain.Bindings)
		}
		fprintf(cmd, "    label: %s, %s\n", card.Explain.Label, verdict(card.Explain.Accepted))
		for _, b := range card.Bullets {
			fprintf(cmd, "    - %s\n", b)
		}
		for _, at := range card.Explain.Attacks {
			outcome := "fails"
			if at.Defeats {
				outcome = "defeats"
			}
			fprintf(cmd, "    ! %s on %s by %s (%s, attacker %s)\n", at.Kind, at.At, at.Attacker, outcome, at.Status)
		}
	}
	return nil
}
