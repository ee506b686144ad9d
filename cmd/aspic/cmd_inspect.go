package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/aspic/pkg/aspic/config"
	"github.com/cognicore/aspic/pkg/aspic/kb"
)

var showHooks = kb.InspectOptions{ShowHooks: true}

var inspectFlags struct {
	sourceFlags
	all      bool
	comments bool
	yaml     bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a rule base",
	Long:  "Prints the rules of a base one per line, or as a YAML rule base with --yaml.",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectFlags.bind(inspectCmd)
	f := inspectCmd.Flags()
	f.BoolVar(&inspectFlags.all, "all", false, "Show automatic rule names and rule hooks")
	f.BoolVar(&inspectFlags.comments, "comments", false, "Append rule captions as comments")
	f.BoolVar(&inspectFlags.yaml, "yaml", false, "Print the user rules as YAML")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, inspectFlags.base != "")
	if err != nil {
		return err
	}
	defer a.Close()

	base, err := loadBase(ctx, a, inspectFlags.sourceFlags)
	if err != nil {
		return err
	}

	if inspectFlags.yaml {
		name := inspectFlags.base
		if name == "" {
			name = inspectFlags.file
		}
		data, err := config.Marshal(name, base)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	exporter := kb.Exporter{
		Writer:   &kb.StreamWriter{W: cmd.OutOrStdout()},
		Comments: inspectFlags.comments,
	}
	if inspectFlags.all {
		exporter.Options = kb.ShowAll
	}
	return exporter.Export(ctx, base)
}
