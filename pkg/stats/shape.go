package stats

import "math"

// Skewness returns the skewness of values for the given variant. stdDev must be the standard
// deviation of the same variant.
//
//   - Population: (1/n)·Σ(x-mean)³ / σ³
//   - Sample (adjusted Fisher-Pearson): n/((n-1)(n-2))·Σ(x-mean)³ / s³
//
// Skewness is undefined below three samples (ErrInsufficientSamples) and when stdDev is
// exactly zero (ErrDegenerateVariance).
func Skewness(values []float64, mean, stdDev float64, variant Variant) (float64, error) {
	if err := validate(values); err != nil {
		return math.NaN(), err
	}

	return skewness(values, mean, stdDev, variant)
}

func skewness(values []float64, mean, stdDev float64, variant Variant) (float64, error) {
	n := float64(len(values))
	if len(values) < 3 {
		return math.NaN(), ErrInsufficientSamples
	}

	if stdDev == 0 {
		return math.NaN(), ErrDegenerateVariance
	}

	var acc KahanSum
	for _, v := range values {
		d := v - mean
		acc.Add(d * d * d)
	}

	cubed := stdDev * stdDev * stdDev

	if variant == Population {
		return acc.Sum() / n / cubed, nil
	}

	return n / ((n - 1) * (n - 2)) * acc.Sum() / cubed, nil
}
