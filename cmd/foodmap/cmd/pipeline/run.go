package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/pkg/product"
)

// NewRunCommand creates the run command.
func NewRunCommand(app appcontext.Interface) *cobra.Command {
	var primaryFile, secondaryFile string

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Run match, merge and report in one go",
		Long: `Run optionally imports both catalogs, then matches, merges and reports.
The merge summary is printed once the pipeline completes.`,
		Example: `  foodmap run
  foodmap run --primary off.jsonl --secondary fdc.jsonl -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd, app)
			c, err := getClient(app)
			if err != nil {
				return err
			}

			imports := []struct {
				catalog product.Catalog
				path    string
			}{
				{product.CatalogPrimary, primaryFile},
				{product.CatalogSecondary, secondaryFile},
			}
			for _, in := range imports {
				if in.path == "" {
					continue
				}
				if _, err := c.ImportFile(ctx, in.catalog, in.path); err != nil {
					return err
				}
			}

			result, err := c.Run(ctx)
			if err != nil {
				return err
			}
			app.Logger().Info().Msg(mergeCounts(result.Merge))
			return render(cmd, app, result, result.Merge.Summary)
		},
	}

	cmd.Flags().StringVar(&primaryFile, "primary", "", "import this primary catalog file first")
	cmd.Flags().StringVar(&secondaryFile, "secondary", "", "import this secondary catalog file first")
	return cmd
}
