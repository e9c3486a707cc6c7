// Package stats computes descriptive statistics over a finite set of float64 samples:
// compensated summation, mean and median, order statistics (percentiles, quartiles, range, mode),
// population and sample dispersion, skewness, and presentation rounding.
//
// Every function is pure. Inputs are never mutated; estimators that need ordering work on a
// private sorted copy.
package stats

import "math"

// KahanSum is a compensated accumulator. The zero value is an empty sum.
//
// The error of the final result stays within a small constant multiple of machine epsilon
// regardless of how many values are added.
type KahanSum struct {
	sum  float64
	comp float64 // low-order bits lost by the previous addition
}

// Add adds v to the running sum. Once the sum overflows it saturates at ±Inf.
func (k *KahanSum) Add(v float64) {
	y := v - k.comp

	t := k.sum + y
	if math.IsInf(t, 0) {
		k.comp = 0
		k.sum = t

		return
	}

	k.comp = (t - k.sum) - y
	k.sum = t
}

// Sum returns the accumulated total.
func (k *KahanSum) Sum() float64 {
	return k.sum
}

// Sum returns the compensated sum of values. An empty slice sums to zero.
func Sum(values []float64) float64 {
	var acc KahanSum
	for _, v := range values {
		acc.Add(v)
	}

	return acc.Sum()
}
