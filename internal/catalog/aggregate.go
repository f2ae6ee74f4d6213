package catalog

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/hitorimeshi/hitori-server/internal/color"
	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// AggregateByCuisine groups restaurants by cuisine and returns the mean THB price per group.
// Categories are sorted lexicographically. An empty subset yields the default cuisine list with
// zero values so the chart still renders its axis.
func AggregateByCuisine(restaurants []*domain.Restaurant, rate float64) domain.ChartSeries {
	type bucket struct {
		sum   decimal.Decimal
		count int64
	}

	r := decimal.NewFromFloat(rate)
	buckets := make(map[string]*bucket)
	for _, rest := range restaurants {
		if rest == nil {
			continue
		}
		key := string(rest.Cuisine)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum = b.sum.Add(decimal.NewFromInt(rest.Price).Mul(r))
		b.count++
	}

	var categories []string
	if len(buckets) == 0 {
		categories = make([]string, len(domain.DefaultCuisines))
		for i, c := range domain.DefaultCuisines {
			categories[i] = string(c)
		}
	} else {
		categories = make([]string, 0, len(buckets))
		for k := range buckets {
			categories = append(categories, k)
		}
		slices.Sort(categories)
	}

	series := domain.ChartSeries{
		Categories: categories,
		Values:     make([]int64, len(categories)),
		Colors:     make([]string, len(categories)),
		HexColors:  make([]string, len(categories)),
	}
	for i, c := range categories {
		if b, ok := buckets[c]; ok && b.count > 0 {
			series.Values[i] = b.sum.Div(decimal.NewFromInt(b.count)).Round(0).IntPart()
		}
		series.Colors[i] = color.ForPosition(i)
		series.HexColors[i] = color.HexForPosition(i)
	}
	return series
}
