// Package product defines the typed food product document stored in each
// catalog, together with the small utilities the import path relies on:
// ingredient segmentation, nutrient unit conversion and raw-food
// classification.
package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Product is one catalog entry. Optional numeric fields are pointers so
// that "absent" and "zero" stay distinct.
type Product struct {
	IDMatch    string `bson:"id_match" json:"id_match" yaml:"id_match"`
	IDOriginal string `bson:"id_original,omitempty" json:"id_original,omitempty" yaml:"id_original,omitempty"`
	DataSource string `bson:"data_source,omitempty" json:"data_source,omitempty" yaml:"data_source,omitempty"`

	ProductName   string   `bson:"product_name,omitempty" json:"product_name,omitempty" yaml:"product_name,omitempty"`
	GenericNameEn string   `bson:"generic_name_en,omitempty" json:"generic_name_en,omitempty" yaml:"generic_name_en,omitempty"`
	Brands        []string `bson:"brands,omitempty" json:"brands,omitempty" yaml:"brands,omitempty"`
	BrandOwner    string   `bson:"brand_owner,omitempty" json:"brand_owner,omitempty" yaml:"brand_owner,omitempty"`
	CategoriesEn  []string `bson:"categories_en,omitempty" json:"categories_en,omitempty" yaml:"categories_en,omitempty"`
	FoodGroupsEn  []string `bson:"food_groups_en,omitempty" json:"food_groups_en,omitempty" yaml:"food_groups_en,omitempty"`
	Allergens     []string `bson:"allergens,omitempty" json:"allergens,omitempty" yaml:"allergens,omitempty"`
	IsRaw         *bool    `bson:"is_raw,omitempty" json:"is_raw,omitempty" yaml:"is_raw,omitempty"`

	Quantity        string   `bson:"quantity,omitempty" json:"quantity,omitempty" yaml:"quantity,omitempty"`
	ServingSize     *float64 `bson:"serving_size,omitempty" json:"serving_size,omitempty" yaml:"serving_size,omitempty"`
	ServingSizeUnit string   `bson:"serving_size_unit,omitempty" json:"serving_size_unit,omitempty" yaml:"serving_size_unit,omitempty"`

	Ingredients    *Ingredients    `bson:"ingredients,omitempty" json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	NutritionFacts *NutritionFacts `bson:"nutrition_facts,omitempty" json:"nutrition_facts,omitempty" yaml:"nutrition_facts,omitempty"`
	NutriscoreData *NutriscoreData `bson:"nutriscore_data,omitempty" json:"nutriscore_data,omitempty" yaml:"nutriscore_data,omitempty"`
	EcoscoreData   *EcoscoreData   `bson:"ecoscore_data,omitempty" json:"ecoscore_data,omitempty" yaml:"ecoscore_data,omitempty"`
	NovaData       *NovaData       `bson:"nova_data,omitempty" json:"nova_data,omitempty" yaml:"nova_data,omitempty"`

	ModifiedDate    time.Time `bson:"modified_date,omitempty" json:"modified_date,omitempty" yaml:"modified_date,omitempty"`
	PublicationDate time.Time `bson:"publication_date,omitempty" json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// Ingredients holds the raw ingredient text and its segmented list.
type Ingredients struct {
	Text string   `bson:"ingredients_text,omitempty" json:"ingredients_text,omitempty" yaml:"ingredients_text,omitempty"`
	List []string `bson:"ingredients_list,omitempty" json:"ingredients_list,omitempty" yaml:"ingredients_list,omitempty"`
}

// NutritionFacts groups per-100g and per-serving nutrient amounts.
type NutritionFacts struct {
	PerHundredGrams *PerHundredGrams `bson:"nutrition_facts_per_hundred_grams,omitempty" json:"nutrition_facts_per_hundred_grams,omitempty" yaml:"nutrition_facts_per_hundred_grams,omitempty"`
	PerServing      *PerServing      `bson:"nutrition_facts_per_serving,omitempty" json:"nutrition_facts_per_serving,omitempty" yaml:"nutrition_facts_per_serving,omitempty"`
}

// PerHundredGrams lists nutrient amounts in grams (energy in kJ/kcal) per 100g.
type PerHundredGrams struct {
	Fat                 *float64 `bson:"fat_100g,omitempty" json:"fat_100g,omitempty" yaml:"fat_100g,omitempty"`
	Salt                *float64 `bson:"salt_100g,omitempty" json:"salt_100g,omitempty" yaml:"salt_100g,omitempty"`
	SaturatedFats       *float64 `bson:"saturated_fats_100g,omitempty" json:"saturated_fats_100g,omitempty" yaml:"saturated_fats_100g,omitempty"`
	Sugar               *float64 `bson:"sugar_100g,omitempty" json:"sugar_100g,omitempty" yaml:"sugar_100g,omitempty"`
	Carbohydrates       *float64 `bson:"carbohydrates_100g,omitempty" json:"carbohydrates_100g,omitempty" yaml:"carbohydrates_100g,omitempty"`
	Energy              *float64 `bson:"energy_100g,omitempty" json:"energy_100g,omitempty" yaml:"energy_100g,omitempty"`
	EnergyKcal          *float64 `bson:"energy_kcal_100g,omitempty" json:"energy_kcal_100g,omitempty" yaml:"energy_kcal_100g,omitempty"`
	Proteins            *float64 `bson:"proteins_100g,omitempty" json:"proteins_100g,omitempty" yaml:"proteins_100g,omitempty"`
	Fibers              *float64 `bson:"fibers_100g,omitempty" json:"fibers_100g,omitempty" yaml:"fibers_100g,omitempty"`
	Sodium              *float64 `bson:"sodium_100g,omitempty" json:"sodium_100g,omitempty" yaml:"sodium_100g,omitempty"`
	MonounsaturatedFats *float64 `bson:"monounsaturated_fats_100g,omitempty" json:"monounsaturated_fats_100g,omitempty" yaml:"monounsaturated_fats_100g,omitempty"`
	PolyunsaturatedFats *float64 `bson:"polyunsaturated_fats_100g,omitempty" json:"polyunsaturated_fats_100g,omitempty" yaml:"polyunsaturated_fats_100g,omitempty"`
	TransFats           *float64 `bson:"trans_fats_100g,omitempty" json:"trans_fats_100g,omitempty" yaml:"trans_fats_100g,omitempty"`
	Cholesterol         *float64 `bson:"cholesterol_100g,omitempty" json:"cholesterol_100g,omitempty" yaml:"cholesterol_100g,omitempty"`
	Calcium             *float64 `bson:"calcium_100g,omitempty" json:"calcium_100g,omitempty" yaml:"calcium_100g,omitempty"`
	Iron                *float64 `bson:"iron_100g,omitempty" json:"iron_100g,omitempty" yaml:"iron_100g,omitempty"`
	Potassium           *float64 `bson:"potassium_100g,omitempty" json:"potassium_100g,omitempty" yaml:"potassium_100g,omitempty"`
	VitaminA            *float64 `bson:"vitamin_a_100g,omitempty" json:"vitamin_a_100g,omitempty" yaml:"vitamin_a_100g,omitempty"`
	VitaminC            *float64 `bson:"vitamin_c_100g,omitempty" json:"vitamin_c_100g,omitempty" yaml:"vitamin_c_100g,omitempty"`
}

// PerServing lists nutrient amounts for one serving of ServingSize.
type PerServing struct {
	IsForPreparedFood *bool    `bson:"is_for_prepared_food,omitempty" json:"is_for_prepared_food,omitempty" yaml:"is_for_prepared_food,omitempty"`
	Fat               *float64 `bson:"fat_serving,omitempty" json:"fat_serving,omitempty" yaml:"fat_serving,omitempty"`
	SaturatedFats     *float64 `bson:"saturated_fats_serving,omitempty" json:"saturated_fats_serving,omitempty" yaml:"saturated_fats_serving,omitempty"`
	TransFats         *float64 `bson:"trans_fats_serving,omitempty" json:"trans_fats_serving,omitempty" yaml:"trans_fats_serving,omitempty"`
	Cholesterol       *float64 `bson:"cholesterol_serving,omitempty" json:"cholesterol_serving,omitempty" yaml:"cholesterol_serving,omitempty"`
	Sodium            *float64 `bson:"sodium_serving,omitempty" json:"sodium_serving,omitempty" yaml:"sodium_serving,omitempty"`
	Carbohydrates     *float64 `bson:"carbohydrates_serving,omitempty" json:"carbohydrates_serving,omitempty" yaml:"carbohydrates_serving,omitempty"`
	Fibers            *float64 `bson:"fibers_serving,omitempty" json:"fibers_serving,omitempty" yaml:"fibers_serving,omitempty"`
	Sugar             *float64 `bson:"sugar_serving,omitempty" json:"sugar_serving,omitempty" yaml:"sugar_serving,omitempty"`
	AddedSugar        *float64 `bson:"added_sugar_serving,omitempty" json:"added_sugar_serving,omitempty" yaml:"added_sugar_serving,omitempty"`
	Proteins          *float64 `bson:"proteins_serving,omitempty" json:"proteins_serving,omitempty" yaml:"proteins_serving,omitempty"`
	Calcium           *float64 `bson:"calcium_serving,omitempty" json:"calcium_serving,omitempty" yaml:"calcium_serving,omitempty"`
	Iron              *float64 `bson:"iron_serving,omitempty" json:"iron_serving,omitempty" yaml:"iron_serving,omitempty"`
	Potassium         *float64 `bson:"potassium_serving,omitempty" json:"potassium_serving,omitempty" yaml:"potassium_serving,omitempty"`
	EnergyKcal        *float64 `bson:"energy_kcal_serving,omitempty" json:"energy_kcal_serving,omitempty" yaml:"energy_kcal_serving,omitempty"`
}

// NutriscoreData holds the inputs and result of the Nutri-Score.
type NutriscoreData struct {
	Score           *float64 `bson:"score,omitempty" json:"score,omitempty" yaml:"score,omitempty"`
	Energy          *float64 `bson:"energy_100g,omitempty" json:"energy_100g,omitempty" yaml:"energy_100g,omitempty"`
	Fibers          *float64 `bson:"fibers_100g,omitempty" json:"fibers_100g,omitempty" yaml:"fibers_100g,omitempty"`
	Proteins        *float64 `bson:"proteins_100g,omitempty" json:"proteins_100g,omitempty" yaml:"proteins_100g,omitempty"`
	SaturatedFats   *float64 `bson:"saturated_fats_100g,omitempty" json:"saturated_fats_100g,omitempty" yaml:"saturated_fats_100g,omitempty"`
	Sodium          *float64 `bson:"sodium_100g,omitempty" json:"sodium_100g,omitempty" yaml:"sodium_100g,omitempty"`
	Sugar           *float64 `bson:"sugar_100g,omitempty" json:"sugar_100g,omitempty" yaml:"sugar_100g,omitempty"`
	FruitPercentage *float64 `bson:"fruit_percentage,omitempty" json:"fruit_percentage,omitempty" yaml:"fruit_percentage,omitempty"`
	IsBeverage      *bool    `bson:"is_beverage,omitempty" json:"is_beverage,omitempty" yaml:"is_beverage,omitempty"`
}

// EcoscoreData holds the environmental score and its components.
type EcoscoreData struct {
	Score              *float64            `bson:"score,omitempty" json:"score,omitempty" yaml:"score,omitempty"`
	IngredientsOrigins *IngredientsOrigins `bson:"ingredients_origins,omitempty" json:"ingredients_origins,omitempty" yaml:"ingredients_origins,omitempty"`
	Packaging          *Packaging          `bson:"packaging,omitempty" json:"packaging,omitempty" yaml:"packaging,omitempty"`
	ProductionSystem   *ProductionSystem   `bson:"production_system,omitempty" json:"production_system,omitempty" yaml:"production_system,omitempty"`
	ThreatenedSpecies  map[string]string   `bson:"threatened_species,omitempty" json:"threatened_species,omitempty" yaml:"threatened_species,omitempty"`
}

// IngredientsOrigins lists where ingredients come from.
type IngredientsOrigins struct {
	Origins             []string `bson:"origins,omitempty" json:"origins,omitempty" yaml:"origins,omitempty"`
	Percent             *float64 `bson:"percent,omitempty" json:"percent,omitempty" yaml:"percent,omitempty"`
	TransportationScore *float64 `bson:"transportation_score,omitempty" json:"transportation_score,omitempty" yaml:"transportation_score,omitempty"`
}

// Packaging describes packaging materials.
type Packaging struct {
	NonRecyclableAndNonBiodegradableMaterials *float64 `bson:"non_recyclable_and_non_biodegradable_materials,omitempty" json:"non_recyclable_and_non_biodegradable_materials,omitempty" yaml:"non_recyclable_and_non_biodegradable_materials,omitempty"`
	Packaging                                 []string `bson:"packaging,omitempty" json:"packaging,omitempty" yaml:"packaging,omitempty"`
}

// ProductionSystem describes production labels.
type ProductionSystem struct {
	Labels  []string `bson:"labels,omitempty" json:"labels,omitempty" yaml:"labels,omitempty"`
	Value   *float64 `bson:"value,omitempty" json:"value,omitempty" yaml:"value,omitempty"`
	Warning string   `bson:"warning,omitempty" json:"warning,omitempty" yaml:"warning,omitempty"`
}

// NovaData holds the NOVA processing group and its markers.
type NovaData struct {
	Score        *int                `bson:"score,omitempty" json:"score,omitempty" yaml:"score,omitempty"`
	GroupMarkers map[string][]string `bson:"group_markers,omitempty" json:"group_markers,omitempty" yaml:"group_markers,omitempty"`
}

// HasScore reports whether the product is named and carries at least one
// of the Nutri-Score, Eco-Score or NOVA scores.
func (p *Product) HasScore() bool {
	if p.ProductName == "" {
		return false
	}
	return (p.NutriscoreData != nil && p.NutriscoreData.Score != nil) ||
		(p.EcoscoreData != nil && p.EcoscoreData.Score != nil) ||
		(p.NovaData != nil && p.NovaData.Score != nil)
}

// Record converts the product to a schema-less record.
func (p *Product) Record() (*record.Record, error) {
	data, err := bson.Marshal(p)
	if err != nil {
		return nil, errors.WrapParse("bson", "", err)
	}
	return record.FromBSON(data)
}

// FromRecord decodes a record into a typed product. Unknown fields are
// ignored.
func FromRecord(r *record.Record) (*Product, error) {
	data, err := bson.Marshal(r)
	if err != nil {
		return nil, errors.WrapParse("bson", "", err)
	}
	var p Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapParse("bson", "", err)
	}
	return &p, nil
}
