package inspect

import (
	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/cmd/output"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
)

// NewProvenanceCommand creates the provenance command, which shows a file
// written by merge --provenance.
func NewProvenanceCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "provenance <file> [id_match]",
		GroupID: "management",
		Short:   "Show where merged field values came from",
		Example: `  foodmap provenance provenance.yaml
  foodmap provenance provenance.yaml 0001234567890`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := provenance.Load(args[0])
			if err != nil {
				return err
			}
			if f == nil {
				return errors.NewNotFoundError("provenance file", args[0])
			}
			m := f.Provenance
			if len(args) == 2 {
				if m = m.Filter(args[1]); len(m) == 0 {
					return errors.NewNotFoundError("record", args[1])
				}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), m)
		},
	}
}
