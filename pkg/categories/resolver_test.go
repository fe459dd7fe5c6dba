package categories_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/pkg/categories"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/taxonomy"
)

const taxonomySource = `# test taxonomy
synonyms:en: biscuit, cookie

en: Category1, Other category1

< en:Category1
en: Category2, Category2 synonym
fr: Catégorie deux

< en:Category2
en: Category3, Category3 synonym

en: Teas
`

const mappingSource = `{
  "fdc-category-1": ["en:other-category1"],
  "fdc-category-2": ["en:category2", "en:category3-synonym", "en:category4"],
  "Cookies & Biscuits": ["en:teas", "en:teas"]
}`

func newResolver(t *testing.T) *categories.Resolver {
	t.Helper()
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	g, err := taxonomy.Parse(ctx, strings.NewReader(taxonomySource))
	require.NoError(t, err)
	m, err := taxonomy.ParseCrossCatalogMap(ctx, strings.NewReader(mappingSource), g)
	require.NoError(t, err)
	return categories.New(g, m)
}

func TestResolveFromSameCatalog(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"most specific wins", []string{"en:category2-synonym, en:category3-synonym"}, []string{"en:category3"}},
		{"separate arguments", []string{"en:category2", "en:category3"}, []string{"en:category3"}},
		{"grandparent is not a direct conflict", []string{"en:category1, en:category3"}, []string{"en:category3", "en:category1"}},
		{"unrelated terms kept", []string{"en:teas, en:category3"}, []string{"en:category3", "en:teas"}},
		{"generic labels after a conflict are ignored", []string{"en:teas, en:category2, en:category3"}, []string{"en:category3"}},
		{"synonym resolves to its node", []string{"en:other-category1"}, []string{"en:category1"}},
		{"unprefixed label is normalized", []string{"Category3 synonym"}, []string{"en:category3"}},
		{"english label is normalized", []string{"en:Category3 Synonym"}, []string{"en:category3"}},
		{"other languages never match", []string{"fr:categorie-deux"}, []string{"en:other"}},
		{"duplicates collapse", []string{"en:teas, en:teas"}, []string{"en:teas"}},
		{"unknown", []string{"en:totally-unknown"}, []string{"en:other"}},
		{"blank", []string{" , ,"}, []string{"en:other"}},
		{"nothing", nil, []string{"en:other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveFromSameCatalog(tt.raw...))
		})
	}
}

func TestResolveFromSameCatalogIsDeterministic(t *testing.T) {
	r := newResolver(t)
	input := "en:teas, en:unknown, en:category1, en:category3-synonym"

	first := r.ResolveFromSameCatalog(input)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.ResolveFromSameCatalog(input))
	}
}

func TestResolveFromForeignCatalog(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		label string
		want  []string
	}{
		{"fdc-category-1", []string{"en:category1"}},
		{"fdc-category-2", []string{"en:category2", "en:category3"}},
		{"Cookies & Biscuits", []string{"en:teas", "en:teas"}},
		{"  cookies &  BISCUITS", []string{"en:teas", "en:teas"}},
		{"absent-category", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveFromForeignCatalog(tt.label))
		})
	}
}

func TestResolverWithoutMapping(t *testing.T) {
	logging.DisableLoggingForTest(t)
	g, err := taxonomy.Parse(context.Background(), strings.NewReader(taxonomySource))
	require.NoError(t, err)

	r := categories.New(g, nil)
	assert.Empty(t, r.ResolveFromForeignCatalog("fdc-category-1"))
	assert.Equal(t, []string{"en:teas"}, r.ResolveFromSameCatalog("en:teas"))
	assert.Nil(t, r.Mapping())
	assert.Same(t, g, r.Graph())
}

func TestResolverWithoutGraph(t *testing.T) {
	logging.DisableLoggingForTest(t)
	m, err := taxonomy.ParseCrossCatalogMap(context.Background(), strings.NewReader(`{"fdc-category-1": ["en:category1"]}`), nil)
	require.NoError(t, err)

	r := categories.New(nil, m)
	assert.NotPanics(t, func() {
		assert.Equal(t, []string{}, r.ResolveFromForeignCatalog("fdc-category-1"))
	})
	assert.Equal(t, []string{"en:other"}, r.ResolveFromSameCatalog("en:teas"))
}

func TestForeignLabelToTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cookies & Biscuits", "en:cookies-biscuits"},
		{"Cakes, Cupcakes, Snack Cakes", "en:cakes-cupcakes-snack-cakes"},
		{"Vegetables  Unprepared/Unprocessed (Frozen)", "en:vegetables-unprepared-unprocessed-frozen"},
		{"Baby Food/Formula - Ready-to-eat", "en:baby-food-formula-ready-to-eat"},
		{"Chef's Specials", "en:chef-s-specials"},
		{"  Wine  ", "en:wine"},
		{"", "en:"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, categories.ForeignLabelToTerm(tt.in))
		})
	}
}

func BenchmarkResolveFromSameCatalog(b *testing.B) {
	g, err := taxonomy.Parse(context.Background(), strings.NewReader(taxonomySource))
	require.NoError(b, err)
	r := categories.New(g, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.ResolveFromSameCatalog("en:teas, en:category1, en:category2, en:category3")
	}
}
