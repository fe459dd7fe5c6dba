package reconcile

import (
	"github.com/mieux-choisir/foodmap/internal/matcher"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
)

// DefaultSkipFields are copied from the primary record and never compared.
var DefaultSkipFields = []string{
	"nutriscore_data",
	"ecoscore_data",
	"nova_data",
	constants.FieldModifiedDate,
	constants.FieldPublicationDate,
	"quantity",
	constants.FieldDataSource,
	"id_original",
	constants.FieldIDMatch,
	"fdc_id",
}

// DefaultPerServingFields hold amounts per serving. Their numbers are
// scaled to 100 g with each side's serving_size before comparison.
var DefaultPerServingFields = []string{
	"nutrition_facts.nutrition_facts_per_serving",
}

type options struct {
	skipFields       []string
	perServingFields []string
	tolerance        float64
	deriveLists      bool
}

func defaultOptions() *options {
	return &options{
		skipFields:       DefaultSkipFields,
		perServingFields: DefaultPerServingFields,
		tolerance:        constants.DefaultTolerance,
		deriveLists:      true,
	}
}

// Option configures a Merger.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSkipFields replaces the skip-list. Entries are field paths, glob
// patterns or regular expressions; a match also covers sub-paths.
func WithSkipFields(fields ...string) Option {
	return func(o *options) error {
		if _, err := matcher.NewSet(fields...); err != nil {
			return errors.WrapValidation("skip_fields", err)
		}
		o.skipFields = fields
		return nil
	}
}

// WithPerServingFields replaces the paths whose numbers are per serving.
func WithPerServingFields(fields ...string) Option {
	return func(o *options) error {
		if _, err := matcher.NewSet(fields...); err != nil {
			return errors.WrapValidation("per_serving_fields", err)
		}
		o.perServingFields = fields
		return nil
	}
}

// WithTolerance sets the relative tolerance for numeric equality.
func WithTolerance(tolerance float64) Option {
	return func(o *options) error {
		if tolerance < 0 || tolerance > 1 {
			return errors.NewValidationError("tolerance", tolerance, "must be between 0 and 1")
		}
		o.tolerance = tolerance
		return nil
	}
}

// WithIngredientDerivation toggles deriving ingredients_list from a
// completed ingredients_text.
func WithIngredientDerivation(enabled bool) Option {
	return func(o *options) error {
		o.deriveLists = enabled
		return nil
	}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithTracker records the provenance of every merged field.
func WithTracker(tracker provenance.Tracker) EngineOption {
	return func(e *Engine) error {
		if tracker == nil {
			return &errors.ValidationError{Field: "tracker", Message: "cannot be nil"}
		}
		e.tracker = tracker
		return nil
	}
}
