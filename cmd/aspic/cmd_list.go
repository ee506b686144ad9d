package main

import (
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported rule bases",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [base]",
	Short: "Remove an imported rule base",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	infos, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fprintf(cmd, "No rule bases in %s\n", dbPath)
		return nil
	}
	for _, info := range infos {
		fprintf(cmd, "%s\t%d rules\t%s\n", info.Name, info.Rules, info.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Delete(ctx, args[0]); err != nil {
		return err
	}
	fprintf(cmd, "deleted %s\n", args[0])
	return nil
}
