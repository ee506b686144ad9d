package main

import (
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Store rule files in the database",
	Long: `Imports each rule file under its base name (the YAML name field or the file
name without extension), replacing an earlier import of the same name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openAspic(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range args {
		name, err := a.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		fprintf(cmd, "imported %s from %s\n", name, path)
	}
	return nil
}
