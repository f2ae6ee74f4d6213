package domain

import "strings"

// Any is the selection value meaning "no restriction" for a single-valued filter.
const Any = "all"

// SortOrder orders the filtered catalog by price.
type SortOrder string

// Sort orders.
const (
	SortPriceLow  SortOrder = "low"  // ascending
	SortPriceHigh SortOrder = "high" // descending
)

// FilterSelection is the transient set of browse choices.
// Empty Cities and Any for the single-valued fields mean no restriction.
type FilterSelection struct {
	Style   string
	Cuisine string
	Alcohol string
	Sort    SortOrder
	Cities  []string
}

// DefaultSelection returns a selection with no restrictions, sorted most expensive first.
func DefaultSelection() FilterSelection {
	return FilterSelection{
		Style:   Any,
		Cuisine: Any,
		Alcohol: Any,
		Sort:    SortPriceHigh,
	}
}

// Normalize fills blank single-valued fields with Any and unknown sort orders with SortPriceHigh.
// Blank city entries are dropped.
func (f FilterSelection) Normalize() FilterSelection {
	out := f
	if strings.TrimSpace(out.Style) == "" {
		out.Style = Any
	}
	if strings.TrimSpace(out.Cuisine) == "" {
		out.Cuisine = Any
	}
	if strings.TrimSpace(out.Alcohol) == "" {
		out.Alcohol = Any
	}
	if out.Sort != SortPriceLow {
		out.Sort = SortPriceHigh
	}
	cities := make([]string, 0, len(f.Cities))
	for _, c := range f.Cities {
		if c = strings.TrimSpace(c); c != "" && c != Any {
			cities = append(cities, c)
		}
	}
	out.Cities = cities
	return out
}
