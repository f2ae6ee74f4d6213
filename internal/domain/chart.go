package domain

// ChartSeries is the per-cuisine average price chart, in THB.
// The three slices are parallel: Values[i] and Colors[i] belong to Categories[i].
type ChartSeries struct {
	Categories []string `json:"categories"`
	Values     []int64  `json:"values"`
	Colors     []string `json:"colors"`
	HexColors  []string `json:"hex_colors"`
}

// Len returns the number of categories in the series.
func (c ChartSeries) Len() int {
	return len(c.Categories)
}
