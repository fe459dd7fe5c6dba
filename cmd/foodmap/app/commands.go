package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/cmd/foodmap/cmd/inspect"
	"github.com/mieux-choisir/foodmap/cmd/foodmap/cmd/pipeline"
)

// registerCommands adds every subcommand to the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(pipeline.NewCommands(a)...)
	rootCmd.AddCommand(
		inspect.NewCategoriesCommand(a),
		inspect.NewTaxonomyCommand(a),
		inspect.NewProvenanceCommand(a),
		a.CreateVersionCommand(),
	)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for foodmap CLI.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "foodmap version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "built by: %s\n", a.builtBy)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
