package stats

import "math"

// exactIntegerBound is 2^52: from here on every float64 is an integer, so there is nothing to round.
const exactIntegerBound = 1 << 52

// RoundToDecimalPlaces rounds v to k decimal places, halves away from zero.
// NaN and infinities pass through. Rounding twice with the same k equals rounding once.
func RoundToDecimalPlaces(v float64, k int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || k < 0 {
		return v
	}

	scale := math.Pow(10, float64(k))

	scaled := v * scale
	if math.IsInf(scaled, 0) || math.Abs(scaled) >= exactIntegerBound {
		return v
	}

	return math.Round(scaled) / scale
}
