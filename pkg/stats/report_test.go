package stats

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/longbridgeapp/assert"
)

func TestComputeReport_Reference(t *testing.T) {
	values := []float64{1.0, 2.0, 3.0, 4.0, 5.1}

	report, err := ComputeReport(values, true)
	assert.Nil(t, err)

	assert.Equal(t, values, report.ReceivedNumbers)
	assert.Equal(t, 5, report.Count)
	assert.Equal(t, "population", report.Variant)
	assert.Equal(t, 3.02, report.Mean)
	assert.Equal(t, 3.0, report.Median)
	assert.Equal(t, 2.0, report.Q1Percentile)
	assert.Equal(t, 4.0, report.Q3Percentile)
	assert.Equal(t, 2.0, report.InterquartileRange)
	assert.Equal(t, 4.1, report.Range)
	assert.Equal(t, 2.0816, report.Variance)
	assertClose(t, 1.4428, report.StandardDeviation, 1e-4)
	assertClose(t, report.StandardDeviation/report.Mean*100, report.CoefficientOfVariation, 1e-6)
	assert.True(t, report.SkewnessDefined())
	assert.Equal(t, 5, len(report.Mode))
	assert.Equal(t, 0, len(report.Warnings))
}

func TestComputeReport_Constant(t *testing.T) {
	report, err := ComputeReport([]float64{2.5, 2.5, 2.5, 2.5, 2.5}, true)
	assert.Nil(t, err)

	assert.Equal(t, 2.5, report.Median)
	assert.Equal(t, 0.0, report.StandardDeviation)
	assert.Equal(t, 0.0, report.CoefficientOfVariation)
	assert.False(t, report.SkewnessDefined())
	assert.Equal(t, []ModeEntry{{Value: 2.5, Frequency: 5}}, report.Mode)
	assert.Equal(t, 1, len(report.Warnings))
	assert.True(t, strings.HasPrefix(report.Warnings[0], "skewness: "))
}

func TestCompute_HugeSamplesKeepMeanFinite(t *testing.T) {
	values := []float64{1e308, 1e308, -1e308}

	report, err := Compute(values, Population)
	assert.Nil(t, err)

	if report.Mean < report.Min || report.Mean > report.Max {
		t.Fatalf("mean %v outside [%v, %v]", report.Mean, report.Min, report.Max)
	}

	assert.Equal(t, 1e308, report.Median)
	assert.Equal(t, 0.0, report.Q1Percentile)
	assert.True(t, math.IsInf(report.Range, 1))
	assert.True(t, math.IsInf(report.Variance, 1))
	assert.True(t, math.IsInf(report.StandardDeviation, 1))
	assert.False(t, report.SkewnessDefined())

	for _, field := range []string{"range", "variance", "standardDeviation", "coefficientOfVariation", "skewness"} {
		found := false

		for _, w := range report.Warnings {
			if strings.HasPrefix(w, field+": ") && strings.Contains(w, ErrOverflow.Error()) {
				found = true
			}
		}

		if !found {
			t.Fatalf("expected an overflow warning for %s, got %v", field, report.Warnings)
		}
	}
}

func TestComputeReport_ModesEqualAfterRoundingAreListedOnce(t *testing.T) {
	report, err := ComputeReport([]float64{1.0000000001, 1.0000000002, 5}, false)
	assert.Nil(t, err)

	assert.Equal(t, []ModeEntry{{Value: 1, Frequency: 1}, {Value: 5, Frequency: 1}}, report.Mode)

	unrounded, err := Compute([]float64{1.0000000001, 1.0000000002, 5}, Sample)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(unrounded.Mode))
}

func TestComputeReport_EmptyInput(t *testing.T) {
	report, err := ComputeReport(nil, false)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Nil(t, report)
}

func TestCompute_SampleVariantSingleSampleDegrades(t *testing.T) {
	report, err := Compute([]float64{4}, Sample)
	assert.Nil(t, err)

	assert.Equal(t, 4.0, report.Mean)
	assert.Equal(t, 4.0, report.Median)
	assert.True(t, math.IsNaN(report.Variance))
	assert.True(t, math.IsNaN(report.StandardDeviation))
	assert.True(t, math.IsNaN(report.CoefficientOfVariation))
	assert.False(t, report.SkewnessDefined())
	assert.Equal(t, 4, len(report.Warnings))
}

func TestCompute_ZeroMeanCoefficientOfVariation(t *testing.T) {
	report, err := Compute([]float64{-1, 1, -2, 2}, Population)
	assert.Nil(t, err)

	assert.Equal(t, 0.0, report.Mean)
	assert.True(t, math.IsInf(report.CoefficientOfVariation, 1))
	assert.Equal(t, "coefficientOfVariation: "+errZeroMeanInfinite.Error(), report.Warnings[0])

	report, err = Compute([]float64{0, 0, 0}, Population)
	assert.Nil(t, err)

	assert.True(t, math.IsNaN(report.CoefficientOfVariation))
	assert.Equal(t, "coefficientOfVariation: "+errZeroMeanUndefined.Error(), report.Warnings[0])
}

func TestCompute_SkewnessUsesVariantFormula(t *testing.T) {
	values := []float64{1, 2, 3, 10}

	pop, err := Compute(values, Population)
	assert.Nil(t, err)

	smp, err := Compute(values, Sample)
	assert.Nil(t, err)

	assert.True(t, smp.Variance > pop.Variance)
	assertClose(t, pop.Skewness*math.Sqrt(12)/2, smp.Skewness, 1e-12)
}

func TestCompute_DoesNotAliasInput(t *testing.T) {
	values := []float64{3, 1, 2}

	report, err := Compute(values, Sample)
	assert.Nil(t, err)

	report.ReceivedNumbers[0] = 99
	assert.Equal(t, 3.0, values[0])
}

func TestReport_RoundKeepsReceivedNumbers(t *testing.T) {
	report, err := Compute([]float64{0.1234567891234, 1.0 / 3, 2}, Sample)
	assert.Nil(t, err)

	rounded := report.Round(3)
	assert.Equal(t, report.ReceivedNumbers, rounded.ReceivedNumbers)
	assert.Equal(t, RoundToDecimalPlaces(report.Mean, 3), rounded.Mean)
	assert.Equal(t, 0.333, rounded.Median)
	assert.True(t, report.Mean != rounded.Mean)
}

func TestReport_JSON(t *testing.T) {
	report, err := ComputeReport([]float64{2.5, 2.5, 2.5}, false)
	assert.Nil(t, err)

	data, err := json.Marshal(report)
	assert.Nil(t, err)

	var body map[string]any

	err = json.Unmarshal(data, &body)
	assert.Nil(t, err)

	for _, key := range []string{
		"receivedNumbers", "mean", "standardDeviation", "median", "q1Percentile", "q3Percentile",
		"interquartileRange", "range", "variance", "coefficientOfVariation", "skewness", "mode",
	} {
		_, ok := body[key]
		assert.True(t, ok)
	}

	assert.Nil(t, body["skewness"])
	assert.Equal(t, 2.5, body["mean"])

	var decoded Report

	err = json.Unmarshal(data, &decoded)
	assert.Nil(t, err)
	assert.True(t, math.IsNaN(decoded.Skewness))
	assert.Equal(t, report.Mode, decoded.Mode)
}
