package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/pkg/product"
)

// NewImportCommand creates the import command.
func NewImportCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "import <catalog> <file>",
		GroupID: "core",
		Short:   "Import raw catalog records",
		Long: `Import reads one extended-JSON product document per line, attaches
canonical categories to every record and upserts the records into the
catalog's collection, keyed by id_match.

The catalog is either "primary" or "secondary".`,
		Example: `  foodmap import primary off_products.jsonl
  foodmap import secondary fdc_products.jsonl -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := product.ParseCatalog(args[0])
			if err != nil {
				return err
			}
			c, err := getClient(app)
			if err != nil {
				return err
			}

			result, err := c.ImportFile(commandContext(cmd, app), catalog, args[1])
			if err != nil {
				return err
			}
			return render(cmd, app, result, result.Write)
		},
	}
}
