package domain

import "strings"

// Cuisine is a restaurant's food category.
// The known categories form a closed set; any other non-empty label is carried
// verbatim as an "other" cuisine so grouping stays exhaustive.
type Cuisine string

// Known cuisine categories.
const (
	CuisineYakiniku Cuisine = "Yakiniku"
	CuisineSushi    Cuisine = "Sushi"
	CuisineFried    Cuisine = "Fried"
	CuisineRamen    Cuisine = "Ramen"
	CuisineRice     Cuisine = "Rice"
	CuisineIzakaya  Cuisine = "Izakaya"
)

// DefaultCuisines is the canonical category list, in chart order.
var DefaultCuisines = []Cuisine{
	CuisineYakiniku,
	CuisineSushi,
	CuisineFried,
	CuisineRamen,
	CuisineRice,
	CuisineIzakaya,
}

// ParseCuisine trims the label and matches it against the known set case-insensitively.
// Unknown labels are returned as-is (trimmed) and report known=false.
func ParseCuisine(label string) (c Cuisine, known bool) {
	label = strings.TrimSpace(label)
	for _, k := range DefaultCuisines {
		if strings.EqualFold(string(k), label) {
			return k, true
		}
	}
	return Cuisine(label), false
}

// IsKnown reports whether c is one of the canonical categories.
func (c Cuisine) IsKnown() bool {
	for _, k := range DefaultCuisines {
		if c == k {
			return true
		}
	}
	return false
}

// IsOther reports whether c is a non-empty label outside the canonical set.
func (c Cuisine) IsOther() bool {
	return c != "" && !c.IsKnown()
}

func (c Cuisine) String() string {
	return string(c)
}
