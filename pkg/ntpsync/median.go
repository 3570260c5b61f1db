package ntpsync

import "sort"

// Median sorts a copy of values and returns the element at len/2, so an
// even count takes the upper of the two central values. It returns 0 for
// an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
