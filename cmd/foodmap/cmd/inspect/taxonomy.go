package inspect

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/cmd/output"
	"github.com/mieux-choisir/foodmap/pkg/categories"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// TaxonomyStats describes a loaded taxonomy.
type TaxonomyStats struct {
	Source         string   `json:"source" yaml:"source"`
	Terms          int      `json:"terms" yaml:"terms"`
	SkippedBlocks  []string `json:"skipped_blocks,omitempty" yaml:"skipped_blocks,omitempty"`
	MappedLabels   int      `json:"mapped_labels" yaml:"mapped_labels"`
	DroppedMapping []string `json:"dropped_mapping,omitempty" yaml:"dropped_mapping,omitempty"`
}

// Rows implements output.Tabular.
func (s *TaxonomyStats) Rows() ([]string, [][]string) {
	return []string{"Property", "Value"}, [][]string{
		{"Source", s.Source},
		{"Terms", strconv.Itoa(s.Terms)},
		{"Skipped blocks", strconv.Itoa(len(s.SkippedBlocks))},
		{"Mapped labels", strconv.Itoa(s.MappedLabels)},
		{"Dropped mapping labels", strconv.Itoa(len(s.DroppedMapping))},
	}
}

// TermInfo describes one taxonomy term.
type TermInfo struct {
	Term      string   `json:"term" yaml:"term"`
	Synonyms  []string `json:"synonyms" yaml:"synonyms"`
	Parents   []string `json:"parents" yaml:"parents"`
	Ancestors []string `json:"ancestors" yaml:"ancestors"`
}

// NewTaxonomyCommand creates the taxonomy command.
func NewTaxonomyCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "taxonomy [term]",
		GroupID: "management",
		Short:   "Show the category taxonomy or one of its terms",
		Example: `  foodmap taxonomy
  foodmap taxonomy en:biscuits -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := resolverOf(cmd, app)
			if err != nil {
				return err
			}
			var data any
			if len(args) == 0 {
				data = taxonomyStats(resolver)
			} else if data, err = termInfo(resolver, args[0]); err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), data)
		},
	}
}

func taxonomyStats(r *categories.Resolver) *TaxonomyStats {
	g := r.Graph()
	s := &TaxonomyStats{Source: g.Source(), Terms: g.Len()}
	for _, err := range g.Skipped() {
		s.SkippedBlocks = append(s.SkippedBlocks, err.Error())
	}
	if m := r.Mapping(); m != nil {
		s.MappedLabels = m.Len()
		s.DroppedMapping = m.Dropped()
	}
	return s
}

func termInfo(r *categories.Resolver, term string) (*TermInfo, error) {
	g := r.Graph()
	n, ok := g.Node(term)
	if !ok {
		return nil, errors.NewNotFoundError("term", term)
	}
	return &TermInfo{
		Term:      n.Term,
		Synonyms:  n.Synonyms(),
		Parents:   n.Parents(),
		Ancestors: g.Ancestors(n.Term),
	}, nil
}
