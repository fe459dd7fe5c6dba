// Package inspect provides commands for examining the category taxonomy
// and how raw labels resolve against it.
package inspect

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/cmd/output"
	"github.com/mieux-choisir/foodmap/pkg/categories"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// Resolution is the outcome of resolving one input.
type Resolution struct {
	Input string   `json:"input" yaml:"input"`
	Terms []string `json:"terms" yaml:"terms"`
}

// Rows implements output.Tabular.
func (r *Resolution) Rows() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Terms))
	for _, t := range r.Terms {
		rows = append(rows, []string{r.Input, t})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{r.Input, "-"})
	}
	return []string{"Input", "Term"}, rows
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		GroupID: "management",
		Short:   "Resolve raw category labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newResolveCommand(app), newForeignCommand(app))
	return cmd
}

func newResolveCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <label>...",
		Short: "Resolve primary-catalog category labels",
		Long: `Resolve maps raw category labels of the primary catalog to the most
specific canonical terms. Labels may be comma-joined and are read from the
most specific to the most general.`,
		Example: `  foodmap categories resolve "en:snacks, en:cookies"
  foodmap categories resolve fr:biscuits`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := resolverOf(cmd, app)
			if err != nil {
				return err
			}
			res := &Resolution{Input: strings.Join(args, ", "), Terms: resolver.ResolveFromSameCatalog(args...)}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), res)
		},
	}
}

func newForeignCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "foreign <label>",
		Short: "Resolve a secondary-catalog category label",
		Long: `Foreign maps a secondary-catalog category label through the cross-catalog
mapping, falling back to the normalized label when it names a taxonomy term.`,
		Example: `  foodmap categories foreign "Cookies & Biscuits"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := resolverOf(cmd, app)
			if err != nil {
				return err
			}
			res := &Resolution{Input: args[0], Terms: resolver.ResolveFromForeignCatalog(args[0])}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), res)
		},
	}
}

func resolverOf(cmd *cobra.Command, app appcontext.Interface) (*categories.Resolver, error) {
	c, err := app.Client()
	if err != nil {
		return nil, errors.WrapResource("get", "client", "", err)
	}
	if c == nil {
		return nil, errors.NewConfigError("client", "no client available", nil)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.Resolver(logging.WithLogger(ctx, app.Logger()))
}
