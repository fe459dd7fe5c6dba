package product

import (
	"strings"

	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// Catalog identifies one of the two reconciled sources.
type Catalog string

const (
	// CatalogPrimary is Open Food Facts. Its values win merge ties.
	CatalogPrimary Catalog = "off"
	// CatalogSecondary is FoodData Central.
	CatalogSecondary Catalog = "fdc"
)

// String returns the catalog name.
func (c Catalog) String() string { return string(c) }

// ParseCatalog accepts a catalog name or its role.
func ParseCatalog(s string) (Catalog, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "openfoodfacts", "primary", "a":
		return CatalogPrimary, nil
	case "fdc", "fooddatacentral", "secondary", "b":
		return CatalogSecondary, nil
	}
	return "", errors.NewValidationError("catalog", s, "must be one of off, fdc")
}
