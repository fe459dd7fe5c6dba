package pipeline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap"
	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand(app appcontext.Interface) *cobra.Command {
	var provenanceFile string

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Merge matched product pairs",
		Long: `Merge joins the matched sets on id_match and merges every pair field by
field. Merged records replace the final collection and conflicting pairs
replace the unmergeable collection.

With --provenance the origin of every merged field is written to a YAML
file.`,
		Example: `  foodmap merge
  foodmap merge --provenance provenance.yaml
  foodmap merge -o text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []foodmap.Option
			if provenanceFile != "" {
				opts = append(opts, foodmap.WithProvenance(true))
			}
			c, err := getClient(app, opts...)
			if err != nil {
				return err
			}

			result, err := c.Merge(commandContext(cmd, app))
			if err != nil {
				return err
			}
			if provenanceFile != "" {
				if err := provenance.Save(provenanceFile, result.Provenance); err != nil {
					return err
				}
				counts := result.Provenance.Counts()
				app.Logger().Info().
					Str("file", provenanceFile).
					Int("records", len(result.Provenance.Records())).
					Int("completed", counts[provenance.OutcomeCompleted]).
					Int("overwritten", counts[provenance.OutcomeOverwritten]).
					Int("conflicts", counts[provenance.OutcomeConflict]).
					Msg("Provenance saved")
			}
			return render(cmd, app, result, result.Summary)
		},
	}

	cmd.Flags().StringVar(&provenanceFile, "provenance", "", "write field provenance to this YAML file")
	return cmd
}

// mergeCounts renders engine counters as one line.
func mergeCounts(r *foodmap.MergeResult) string {
	return fmt.Sprintf("pairs %d, merged %d, unmergeable %d, unchanged %d",
		r.Engine.Pairs, r.Engine.Merged, r.Engine.Unmergeable, r.Engine.Unchanged)
}
