package stats

import (
	"math"
	"strings"

	"github.com/hyp3rd/ewrap"
)

// Variant selects between population and sample (bias-corrected) formulas.
type Variant int

const (
	// Population divides by n and treats the samples as the entire population.
	Population Variant = iota
	// Sample applies Bessel's correction (n-1) and the adjusted Fisher-Pearson skewness.
	Sample
)

// VariantFor maps a population flag to a Variant.
func VariantFor(isPopulation bool) Variant {
	if isPopulation {
		return Population
	}

	return Sample
}

// ParseVariant parses "population" or "sample" (case-insensitive).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "population", "pop":
		return Population, nil
	case "sample":
		return Sample, nil
	default:
		return Sample, ewrap.New("unknown variant: " + s)
	}
}

// String returns the variant name.
func (v Variant) String() string {
	if v == Population {
		return "population"
	}

	return "sample"
}

// sumSquaredDeviations returns Σ(x-mean)² using compensated summation.
func sumSquaredDeviations(values []float64, mean float64) float64 {
	var acc KahanSum
	for _, v := range values {
		d := v - mean
		acc.Add(d * d)
	}

	return acc.Sum()
}

// PopulationVariance returns Σ(x-mean)²/n.
func PopulationVariance(values []float64, mean float64) (float64, error) {
	return Variance(values, mean, Population)
}

// SampleVariance returns Σ(x-mean)²/(n-1) (Bessel's correction). It needs at least two samples.
func SampleVariance(values []float64, mean float64) (float64, error) {
	return Variance(values, mean, Sample)
}

// Variance dispatches to PopulationVariance or SampleVariance.
func Variance(values []float64, mean float64, variant Variant) (float64, error) {
	if err := validate(values); err != nil {
		return math.NaN(), err
	}

	return variance(values, mean, variant)
}

func variance(values []float64, mean float64, variant Variant) (float64, error) {
	n := len(values)
	if variant == Population {
		return sumSquaredDeviations(values, mean) / float64(n), nil
	}

	if n < 2 {
		return math.NaN(), ErrInsufficientSamples
	}

	return sumSquaredDeviations(values, mean) / float64(n-1), nil
}

// StdDev returns the square root of the variance selected by variant.
func StdDev(values []float64, mean float64, variant Variant) (float64, error) {
	v, err := Variance(values, mean, variant)
	if err != nil {
		return math.NaN(), err
	}

	return math.Sqrt(v), nil
}

// PopulationStdDev returns the population standard deviation.
func PopulationStdDev(values []float64, mean float64) (float64, error) {
	return StdDev(values, mean, Population)
}

// SampleStdDev returns the sample standard deviation. It needs at least two samples.
func SampleStdDev(values []float64, mean float64) (float64, error) {
	return StdDev(values, mean, Sample)
}

// CoefficientOfVariation returns stdDev/mean as a percentage.
// A zero mean yields ±Inf, or NaN when stdDev is zero as well.
func CoefficientOfVariation(stdDev, mean float64) float64 {
	return stdDev / mean * 100
}
