package catalog_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitorimeshi/hitori-server/internal/catalog"
	"github.com/hitorimeshi/hitori-server/internal/domain"
)

func restaurant(id string, price int64, cuisine domain.Cuisine, style domain.Style, alcohol domain.AlcoholType, cities ...string) *domain.Restaurant {
	return &domain.Restaurant{
		ID:          id,
		Name:        "Restaurant " + id,
		Price:       price,
		Cuisine:     cuisine,
		Style:       style,
		AlcoholType: alcohol,
		Cities:      cities,
		SoloRating:  3,
	}
}

func ids(rs []*domain.Restaurant) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func sampleCatalog() []*domain.Restaurant {
	return []*domain.Restaurant{
		restaurant("a", 1500, domain.CuisineRamen, domain.StyleAlaCarte, domain.AlcoholPayPerGlass, "Osaka"),
		restaurant("b", 4000, domain.CuisineYakiniku, domain.StyleBuffet, domain.AlcoholNomihodai, "Tokyo", "Osaka"),
		restaurant("c", 1500, domain.CuisineSushi, domain.StyleAlaCarte, domain.AlcoholPayPerGlass, "Kyoto"),
		restaurant("d", 800, domain.CuisineRice, domain.StyleAlaCarte, domain.AlcoholPayPerGlass, "Osaka", "Kobe"),
		restaurant("e", 1500, domain.Cuisine("Curry"), domain.StyleBuffet, domain.AlcoholNomihodai, "อารีย์"),
		restaurant("f", 3000, domain.CuisineSushi, domain.StyleBuffet, domain.AlcoholPayPerGlass, "Tokyo"),
	}
}

func TestVisibleCities(t *testing.T) {
	got := catalog.VisibleCities(sampleCatalog())
	want := []string{"Kobe", "Kyoto", "Osaka", "Tokyo", "อารีย์"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("VisibleCities mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleCities_Empty(t *testing.T) {
	got := catalog.VisibleCities(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVisibleCities_SortedAndUnique(t *testing.T) {
	cat := []*domain.Restaurant{
		{Cities: []string{"Nara", "Nara", "Kobe"}},
		{Cities: []string{"Kobe", "Fukuoka"}},
		{Cities: []string{"Osaka"}},
		{Cities: nil},
	}
	got := catalog.VisibleCities(cat)
	assert.True(t, slices.IsSorted(got))
	assert.Equal(t, len(got), len(slices.Compact(slices.Clone(got))))
	assert.Equal(t, []string{"Fukuoka", "Kobe", "Nara", "Osaka"}, got)
}

func TestApplyFilters_NoRestrictionReturnsEverything(t *testing.T) {
	cat := sampleCatalog()

	high := catalog.ApplyFilters(cat, domain.DefaultSelection())
	assert.Equal(t, []string{"b", "f", "a", "c", "e", "d"}, ids(high))

	sel := domain.DefaultSelection()
	sel.Sort = domain.SortPriceLow
	low := catalog.ApplyFilters(cat, sel)
	assert.Equal(t, []string{"d", "a", "c", "e", "f", "b"}, ids(low))
}

func TestApplyFilters_StableForEqualPrices(t *testing.T) {
	cat := sampleCatalog()
	for _, order := range []domain.SortOrder{domain.SortPriceLow, domain.SortPriceHigh} {
		t.Run(string(order), func(t *testing.T) {
			sel := domain.DefaultSelection()
			sel.Sort = order
			got := ids(catalog.ApplyFilters(cat, sel))

			// a, c and e share a price; catalog order must survive in both directions.
			ia := slices.Index(got, "a")
			ic := slices.Index(got, "c")
			ie := slices.Index(got, "e")
			assert.Less(t, ia, ic)
			assert.Less(t, ic, ie)
		})
	}
}

func TestApplyFilters_CityIsOrWithinSet(t *testing.T) {
	sel := domain.DefaultSelection()
	sel.Cities = []string{"Kyoto", "Kobe"}
	sel.Sort = domain.SortPriceLow

	got := catalog.ApplyFilters(sampleCatalog(), sel)
	assert.Equal(t, []string{"d", "c"}, ids(got))
}

func TestApplyFilters_DimensionsAreAnded(t *testing.T) {
	sel := domain.FilterSelection{
		Cities:  []string{"Tokyo"},
		Style:   string(domain.StyleBuffet),
		Cuisine: string(domain.CuisineSushi),
		Alcohol: string(domain.AlcoholPayPerGlass),
		Sort:    domain.SortPriceHigh,
	}
	got := catalog.ApplyFilters(sampleCatalog(), sel)
	assert.Equal(t, []string{"f"}, ids(got))

	sel.Alcohol = string(domain.AlcoholNomihodai)
	assert.Empty(t, catalog.ApplyFilters(sampleCatalog(), sel))
}

func TestApplyFilters_OtherCuisine(t *testing.T) {
	sel := domain.DefaultSelection()
	sel.Cuisine = "Curry"
	got := catalog.ApplyFilters(sampleCatalog(), sel)
	assert.Equal(t, []string{"e"}, ids(got))
}

func TestApplyFilters_PartitionProperty(t *testing.T) {
	cat := sampleCatalog()
	selections := []domain.FilterSelection{
		{Cities: []string{"Osaka"}, Style: domain.Any, Cuisine: domain.Any, Alcohol: domain.Any},
		{Style: string(domain.StyleAlaCarte), Cuisine: domain.Any, Alcohol: domain.Any},
		{Cuisine: string(domain.CuisineSushi), Style: domain.Any, Alcohol: string(domain.AlcoholPayPerGlass)},
		{Cities: []string{"Tokyo", "อารีย์"}, Style: string(domain.StyleBuffet)},
		{Cities: []string{"Nowhere"}},
	}

	for i, sel := range selections {
		t.Run(fmt.Sprintf("selection-%d", i), func(t *testing.T) {
			got := catalog.ApplyFilters(cat, sel)
			in := make(map[string]bool, len(got))
			for _, r := range got {
				in[r.ID] = true
				assert.True(t, catalog.Matches(r, sel.Normalize(), nil), "output %s fails a predicate", r.ID)
			}
			for _, r := range cat {
				if !in[r.ID] {
					assert.False(t, catalog.Matches(r, sel.Normalize(), nil), "catalog %s matches but was dropped", r.ID)
				}
			}
		})
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	cat := sampleCatalog()
	before := ids(cat)
	_ = catalog.ApplyFilters(cat, domain.FilterSelection{Sort: domain.SortPriceLow})
	assert.Equal(t, before, ids(cat))
}

func TestApplyFilters_EndToEndScenario(t *testing.T) {
	ramen := &domain.Restaurant{ID: "ramen", Price: 1000, Cuisine: "ramen", Cities: []string{"Osaka"}, Style: domain.StyleBuffet, AlcoholType: domain.AlcoholNomihodai}
	sushi := &domain.Restaurant{ID: "sushi", Price: 3000, Cuisine: "sushi", Cities: []string{"Tokyo"}, Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass}

	sel := domain.FilterSelection{
		Cities:  []string{"Osaka"},
		Style:   "all",
		Cuisine: "all",
		Alcohol: "all",
		Sort:    "low",
	}
	got := catalog.ApplyFilters([]*domain.Restaurant{ramen, sushi}, sel)
	require.Len(t, got, 1)
	assert.Same(t, ramen, got[0])
}
