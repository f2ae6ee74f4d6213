package catalog

import (
	"slices"
	"strings"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// VisibleCities returns every distinct city across the catalog in lexicographic order.
func VisibleCities(restaurants []*domain.Restaurant) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, r := range restaurants {
		if r == nil {
			continue
		}
		for _, c := range r.Cities {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cities = append(cities, c)
		}
	}
	slices.Sort(cities)
	return cities
}

// ApplyFilters returns the restaurants matching every dimension of sel, ordered by price.
// Restaurants with equal prices keep their catalog order in both directions.
func ApplyFilters(restaurants []*domain.Restaurant, sel domain.FilterSelection) []*domain.Restaurant {
	sel = sel.Normalize()

	wanted := make(map[string]struct{}, len(sel.Cities))
	for _, c := range sel.Cities {
		wanted[c] = struct{}{}
	}

	out := make([]*domain.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if r == nil {
			continue
		}
		if Matches(r, sel, wanted) {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b *domain.Restaurant) int {
		if sel.Sort == domain.SortPriceLow {
			return cmpInt64(a.Price, b.Price)
		}
		return cmpInt64(b.Price, a.Price)
	})
	return out
}

// Matches reports whether r satisfies all four filter predicates.
// wanted is the selected city set; pass nil to derive it from sel.
func Matches(r *domain.Restaurant, sel domain.FilterSelection, wanted map[string]struct{}) bool {
	if wanted == nil {
		wanted = make(map[string]struct{}, len(sel.Cities))
		for _, c := range sel.Cities {
			wanted[c] = struct{}{}
		}
	}
	return matchCity(r, wanted) &&
		matchValue(sel.Style, string(r.Style)) &&
		matchValue(sel.Cuisine, string(r.Cuisine)) &&
		matchValue(sel.Alcohol, string(r.AlcoholType))
}

func matchCity(r *domain.Restaurant, wanted map[string]struct{}) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, c := range r.Cities {
		if _, ok := wanted[c]; ok {
			return true
		}
	}
	return false
}

func matchValue(selected, actual string) bool {
	selected = strings.TrimSpace(selected)
	return selected == "" || selected == domain.Any || selected == actual
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
