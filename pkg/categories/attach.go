package categories

import (
	"context"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/product"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Attach resolves an imported record's raw category field into
// categories_en and fills is_raw when the import left it unset. The raw
// field is removed. Records of the primary catalog read categories_raw;
// records of the secondary catalog read fdc_category.
func (r *Resolver) Attach(ctx context.Context, rec *record.Record, catalog product.Catalog) {
	var terms []string
	switch catalog {
	case product.CatalogPrimary:
		terms = r.ResolveFromSameCatalog(labelsOf(rec.Get(constants.FieldRawCategories))...)
		if !rec.Has(constants.FieldIsRaw) {
			rec.Set(constants.FieldIsRaw, record.BoolValue(product.IsRawFood(signalsOf(rec, terms))))
		}
		rec.Delete(constants.FieldRawCategories)
	case product.CatalogSecondary:
		label := rec.Text(constants.FieldForeignCategory)
		terms = r.ResolveFromForeignCatalog(label)
		if !rec.Has(constants.FieldIsRaw) {
			rec.Set(constants.FieldIsRaw, record.BoolValue(product.IsRawForeignCategory(label)))
		}
		rec.Delete(constants.FieldForeignCategory)
	default:
		return
	}

	items := make([]record.Value, len(terms))
	for i, t := range terms {
		items[i] = record.StringValue(t)
	}
	rec.Set(constants.FieldCategories, record.ListValue(items...))

	logging.FromContext(ctx).Trace().
		Str("catalog", catalog.String()).
		Str("id_match", rec.IDMatch()).
		Strs("categories", terms).
		Msg("Attached categories")
}

// labelsOf accepts either a comma-joined string or a list of strings.
func labelsOf(v record.Value) []string {
	if s, ok := v.Str(); ok {
		return []string{s}
	}
	var out []string
	for _, item := range v.Items() {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}

func signalsOf(rec *record.Record, terms []string) product.RawFoodSignals {
	s := product.RawFoodSignals{
		FoodGroup:  rec.Text(constants.FieldFoodGroup),
		Categories: terms,
	}
	if nova, ok := rec.Float(constants.FieldNovaScore); ok {
		s.NovaGroup = int(nova)
	}
	if n, ok := rec.Float(constants.FieldAdditivesCount); ok {
		additives := int(n)
		s.Additives = &additives
	}
	return s
}
