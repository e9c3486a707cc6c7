package stats

import (
	"math"
	"strconv"

	"github.com/hyp3rd/ewrap"
)

// validate rejects empty input and non-finite samples.
func validate(values []float64) error {
	if len(values) == 0 {
		return ErrEmptyInput
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ewrap.Wrap(ErrNonFiniteInput, "sample "+strconv.Itoa(i))
		}
	}

	return nil
}

// Mean returns the arithmetic mean of values using compensated summation.
func Mean(values []float64) (float64, error) {
	if err := validate(values); err != nil {
		return math.NaN(), err
	}

	return mean(values), nil
}

// mean expects validated input. The quotient is clamped into [min, max]:
// rounding in the final division may otherwise step one ulp outside the sample span.
// When the running sum overflows, the mean is summed from values pre-divided by n;
// every partial sum of those stays within [-max|v|, max|v|].
func mean(values []float64) float64 {
	var acc KahanSum

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		acc.Add(v)

		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	n := float64(len(values))

	m := acc.Sum() / n
	if math.IsInf(m, 0) || math.IsNaN(m) {
		var scaled KahanSum
		for _, v := range values {
			scaled.Add(v / n)
		}

		m = scaled.Sum()
	}

	return math.Max(lo, math.Min(hi, m))
}

// Median returns the middle value of values, or the mean of the two middle values when the
// count is even. The caller's slice is left untouched.
func Median(values []float64) (float64, error) {
	ord, err := NewOrdered(values)
	if err != nil {
		return math.NaN(), err
	}

	return ord.Median(), nil
}
