package grading

import "math"

// DisplayAverage rounds to one decimal place for presentation. Comparisons
// inside the package always use the unrounded value.
func DisplayAverage(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10) / 10
}
