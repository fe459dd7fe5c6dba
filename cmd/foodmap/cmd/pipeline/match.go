package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
)

// NewMatchCommand creates the match command.
func NewMatchCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "match",
		GroupID: "core",
		Short:   "Split both catalogs into matched and unmatched sets",
		Long: `Match compares the id_match values of the two imported catalogs and
replaces the matched and unmatched collections of both sides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := getClient(app)
			if err != nil {
				return err
			}
			summary, err := c.Match(commandContext(cmd, app))
			if err != nil {
				return err
			}
			return render(cmd, app, summary, summary)
		},
	}
}
