package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/longbridgeapp/assert"
	"gonum.org/v1/gonum/stat"
)

func TestPopulationStdDev_Reference(t *testing.T) {
	values := []float64{1.0, 2.0, 3.0, 4.0, 5.1}

	m, err := Mean(values)
	assert.Nil(t, err)

	sd, err := PopulationStdDev(values, m)
	assert.Nil(t, err)
	assertClose(t, 1.4428, sd, 1e-4)

	v, err := PopulationVariance(values, m)
	assert.Nil(t, err)
	assertClose(t, 2.0816, v, 1e-12)
}

func TestVariance_AgreesWithGonum(t *testing.T) {
	values := []float64{3.1, 4.1, 5.9, 2.6, 5.3, 5.8, 9.7, 9.3, -2.2, 0.04}

	m, err := Mean(values)
	assert.Nil(t, err)

	pop, err := Variance(values, m, Population)
	assert.Nil(t, err)
	assertClose(t, stat.PopVariance(values, nil), pop, 1e-12)

	smp, err := Variance(values, m, Sample)
	assert.Nil(t, err)
	assertClose(t, stat.Variance(values, nil), smp, 1e-12)

	sd, err := SampleStdDev(values, m)
	assert.Nil(t, err)
	assertClose(t, stat.StdDev(values, nil), sd, 1e-12)
}

func TestSampleStdDev_SingleSample(t *testing.T) {
	_, err := SampleStdDev([]float64{3.5}, 3.5)
	assert.True(t, errors.Is(err, ErrInsufficientSamples))

	_, err = SampleVariance([]float64{3.5}, 3.5)
	assert.True(t, errors.Is(err, ErrInsufficientSamples))

	sd, err := PopulationStdDev([]float64{3.5}, 3.5)
	assert.Nil(t, err)
	assert.Equal(t, 0.0, sd)
}

func TestVariance_Empty(t *testing.T) {
	_, err := Variance(nil, 0, Population)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestCoefficientOfVariation(t *testing.T) {
	assertClose(t, 50, CoefficientOfVariation(1, 2), 1e-12)
	assert.Equal(t, 0.0, CoefficientOfVariation(0, 2.5))
	assert.True(t, math.IsInf(CoefficientOfVariation(1, 0), 1))
	assert.True(t, math.IsNaN(CoefficientOfVariation(0, 0)))
}

func TestVariant(t *testing.T) {
	assert.Equal(t, Population, VariantFor(true))
	assert.Equal(t, Sample, VariantFor(false))
	assert.Equal(t, "population", Population.String())
	assert.Equal(t, "sample", Sample.String())

	v, err := ParseVariant(" Population ")
	assert.Nil(t, err)
	assert.Equal(t, Population, v)

	v, err = ParseVariant("sample")
	assert.Nil(t, err)
	assert.Equal(t, Sample, v)

	_, err = ParseVariant("median")
	assert.True(t, err != nil)
}

func TestSkewness_AgreesWithGonum(t *testing.T) {
	values := []float64{2, 8, 0, 4, 1, 9, 9, 0, 13.5, 1.25}

	m, err := Mean(values)
	assert.Nil(t, err)

	s, err := SampleStdDev(values, m)
	assert.Nil(t, err)

	got, err := Skewness(values, m, s, Sample)
	assert.Nil(t, err)
	assertClose(t, stat.Skew(values, nil), got, 1e-12)

	sigma, err := PopulationStdDev(values, m)
	assert.Nil(t, err)

	got, err = Skewness(values, m, sigma, Population)
	assert.Nil(t, err)
	assertClose(t, stat.Moment(3, values, nil)/math.Pow(sigma, 3), got, 1e-12)
}

func TestSkewness_VariantsDiffer(t *testing.T) {
	values := []float64{1, 2, 3, 10}

	m, _ := Mean(values)
	sigma, _ := PopulationStdDev(values, m)
	s, _ := SampleStdDev(values, m)

	pop, err := Skewness(values, m, sigma, Population)
	assert.Nil(t, err)

	smp, err := Skewness(values, m, s, Sample)
	assert.Nil(t, err)

	// adjusted = population * sqrt(n(n-1))/(n-2)
	assertClose(t, pop*math.Sqrt(4*3)/2, smp, 1e-12)
	assert.True(t, pop > 0)
}

func TestSkewness_SymmetricIsZero(t *testing.T) {
	values := []float64{-2, -1, 0, 1, 2}

	sigma, _ := PopulationStdDev(values, 0)

	got, err := Skewness(values, 0, sigma, Population)
	assert.Nil(t, err)
	assertClose(t, 0, got, 1e-15)
}

func TestSkewness_Undefined(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		stdDev float64
		want   error
	}{
		{name: "two samples", values: []float64{1, 2}, stdDev: 0.5, want: ErrInsufficientSamples},
		{name: "no variability", values: []float64{2.5, 2.5, 2.5, 2.5, 2.5}, stdDev: 0, want: ErrDegenerateVariance},
		{name: "empty", values: nil, stdDev: 1, want: ErrEmptyInput},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Skewness(test.values, 2.5, test.stdDev, Population)
			assert.True(t, errors.Is(err, test.want))
			assert.True(t, math.IsNaN(got))
		})
	}
}
