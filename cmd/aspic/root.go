package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/aspic/pkg/aspic"
	"github.com/cognicore/aspic/pkg/aspic/config"
	"github.com/cognicore/aspic/pkg/aspic/store"
	"github.com/cognicore/aspic/pkg/aspic/store/memstore"
	"github.com/cognicore/aspic/pkg/aspic/store/sqlite"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	// Global flags
	verbose    bool
	dbPath     string
	configPath string

	// Logger
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "aspic",
	Short: "Structured argumentation over weighted rule bases",
	Long: `aspic builds arguments from a rule base, resolves rebuttals, undermining
and undercuts between them, and reports which conclusions are justified.

Rule bases are stored in a SQLite database (see import) or read directly from
rule files with --file.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log argument construction at debug level")
	pf.StringVar(&dbPath, "db", "aspic.db", "SQLite database holding imported rule bases")
	pf.StringVar(&configPath, "config", "", "Engine configuration YAML")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadComponents reads the engine configuration and the given rule files.
func loadComponents(files ...string) (*config.Components, error) {
	loader := config.Loader{EnginePath: configPath, KnowledgeBasePaths: files, Logger: logger}
	return loader.Load()
}

// openAspic builds the facade. Without persistence the store is in memory.
func openAspic(ctx context.Context, persistent bool) (*aspic.Aspic, error) {
	comp, err := loadComponents()
	if err != nil {
		return nil, err
	}
	var st store.Store = memstore.New()
	if persistent {
		if st, err = sqlite.OpenSQLite(ctx, dbPath); err != nil {
			return nil, fmt.Errorf("open %s: %w", dbPath, err)
		}
	}
	return aspic.New(aspic.Options{
		Store:  st,
		Engine: comp.Reasoner.Options(),
		Logger: logger,
	}), nil
}
