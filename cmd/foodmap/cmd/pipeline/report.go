package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
)

// NewReportCommand creates the report command.
func NewReportCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "report",
		GroupID: "core",
		Short:   "Measure numeric changes made by the merge",
		Long: `Report compares the numeric fields of the matched primary records with
the final records and buckets every change as completed, modified above
the threshold, modified below the threshold or unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := getClient(app)
			if err != nil {
				return err
			}
			report, err := c.Report(commandContext(cmd, app))
			if err != nil {
				return err
			}
			return render(cmd, app, report, report.Differences)
		},
	}
}
