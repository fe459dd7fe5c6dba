package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// Execute builds the command tree and runs it with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand builds the root command, its persistent flags and
// every subcommand.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "foodmap",
		Short:   "Food product catalog reconciliation",
		Version: a.version,
		Long: `Foodmap reconciles the food products of two independently curated
catalogs into one canonical catalog keyed by a shared product identifier.

It normalizes category labels into one taxonomy, matches products present in
both catalogs, merges matched pairs field by field and reports what the merge
completed or overwrote.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.foodmap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, text")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("store", "", "document store: sqlite or mongo")
	flags.String("sqlite-path", "", "sqlite database file")
	flags.String("mongo-uri", "", "MongoDB connection URI")
	flags.String("database", "", "MongoDB database name")
	flags.String("taxonomy", "", "category taxonomy file")
	flags.String("mapping", "", "cross-catalog category mapping file (JSON or YAML)")

	rootCmd.SetVersionTemplate("foodmap {{.Version}}\n")
	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand applies --config and the persistent flags on top of the
// loaded configuration, then rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)
	overrides := map[string]*string{
		"store":       &a.config.Store,
		"sqlite-path": &a.config.SQLitePath,
		"mongo-uri":   &a.config.MongoURI,
		"database":    &a.config.Database,
		"taxonomy":    &a.config.TaxonomyFile,
		"mapping":     &a.config.MappingFile,
	}
	for name, field := range overrides {
		if cmd.Flags().Changed(name) {
			*field = mustGetString(cmd, name)
		}
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// ExitOnError writes err to stderr and exits with status 1. A nil err is
// ignored.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool reads a persistent flag defined by createRootCommand.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString reads a persistent flag defined by createRootCommand.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("flag " + name + ": " + err.Error())
	}
	return val
}
