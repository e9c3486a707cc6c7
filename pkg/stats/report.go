package stats

import (
	"math"
	"slices"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
)

// DefaultPrecision is the number of decimal places applied by ComputeReport.
const DefaultPrecision = 9

// Coefficient of variation warnings for a zero mean.
var (
	errZeroMeanUndefined = ewrap.New("undefined for a zero mean without variability")
	errZeroMeanInfinite  = ewrap.New("infinite for a zero mean")
)

// Report is the flat record of every statistic computed for one sample set.
//
// Fields that cannot be computed for the given input (sample dispersion below two samples,
// skewness below three samples or without variability, a coefficient of variation over a zero
// mean) hold NaN or ±Inf, and a matching entry is appended to Warnings.
type Report struct {
	ReceivedNumbers        []float64   `msgpack:"receivedNumbers"        codec:"receivedNumbers"`
	Count                  int         `msgpack:"count"                  codec:"count"`
	Variant                string      `msgpack:"variant"                codec:"variant"`
	Mean                   float64     `msgpack:"mean"                   codec:"mean"`
	StandardDeviation      float64     `msgpack:"standardDeviation"      codec:"standardDeviation"`
	Median                 float64     `msgpack:"median"                 codec:"median"`
	Q1Percentile           float64     `msgpack:"q1Percentile"           codec:"q1Percentile"`
	Q3Percentile           float64     `msgpack:"q3Percentile"           codec:"q3Percentile"`
	InterquartileRange     float64     `msgpack:"interquartileRange"     codec:"interquartileRange"`
	Range                  float64     `msgpack:"range"                  codec:"range"`
	Min                    float64     `msgpack:"min"                    codec:"min"`
	Max                    float64     `msgpack:"max"                    codec:"max"`
	Variance               float64     `msgpack:"variance"               codec:"variance"`
	CoefficientOfVariation float64     `msgpack:"coefficientOfVariation" codec:"coefficientOfVariation"`
	Skewness               float64     `msgpack:"skewness"               codec:"skewness"`
	Mode                   []ModeEntry `msgpack:"mode"                   codec:"mode"`
	Warnings               []string    `msgpack:"warnings"               codec:"warnings"`
}

// SkewnessDefined reports whether Skewness holds a value.
func (r *Report) SkewnessDefined() bool {
	return !math.IsNaN(r.Skewness)
}

// Compute builds an unrounded report for values.
// ErrEmptyInput and ErrNonFiniteInput fail the whole report; every other condition only
// degrades the affected fields.
func Compute(values []float64, variant Variant) (*Report, error) {
	err := validate(values)
	if err != nil {
		return nil, err
	}

	ord := newOrdered(values)
	q1, q3 := ord.Quartiles()

	report := &Report{
		ReceivedNumbers:    slices.Clone(values),
		Count:              len(values),
		Variant:            variant.String(),
		Mean:               mean(values),
		Median:             ord.Median(),
		Q1Percentile:       q1,
		Q3Percentile:       q3,
		InterquartileRange: q3 - q1,
		Range:              spread(values),
		Min:                ord.Min(),
		Max:                ord.Max(),
		Mode:               ord.Mode(),
	}

	if math.IsInf(report.InterquartileRange, 0) {
		report.warn("interquartileRange", ErrOverflow)
	}

	if math.IsInf(report.Range, 0) {
		report.warn("range", ErrOverflow)
	}

	report.Variance, err = variance(values, report.Mean, variant)
	report.StandardDeviation = math.Sqrt(report.Variance)
	report.CoefficientOfVariation = CoefficientOfVariation(report.StandardDeviation, report.Mean)

	switch {
	case err != nil:
		report.warn("variance", err)
		report.warn("standardDeviation", err)
		report.warn("coefficientOfVariation", err)
	case math.IsInf(report.Variance, 0):
		report.warn("variance", ErrOverflow)
		report.warn("standardDeviation", ErrOverflow)
		report.warn("coefficientOfVariation", ErrOverflow)
	case report.Mean == 0 && report.StandardDeviation == 0:
		report.warn("coefficientOfVariation", errZeroMeanUndefined)
	case report.Mean == 0:
		report.warn("coefficientOfVariation", errZeroMeanInfinite)
	}

	report.Skewness, err = skewness(values, report.Mean, report.StandardDeviation, variant)

	switch {
	case err != nil:
		report.warn("skewness", err)
	case math.IsNaN(report.Skewness) || math.IsInf(report.Skewness, 0):
		report.warn("skewness", ErrOverflow)
	}

	return report, nil
}

// ComputeReport computes the report for values with the population or sample formulas and
// rounds it to DefaultPrecision decimal places.
func ComputeReport(values []float64, isPopulation bool) (*Report, error) {
	report, err := Compute(values, VariantFor(isPopulation))
	if err != nil {
		return nil, err
	}

	return report.Round(DefaultPrecision), nil
}

// Round returns a copy of r with every statistic rounded to k decimal places.
// ReceivedNumbers is echoed unchanged. Modes that become equal once rounded are listed once,
// keeping their per-value frequency.
func (r *Report) Round(k int) *Report {
	out := *r
	out.ReceivedNumbers = slices.Clone(r.ReceivedNumbers)
	out.Warnings = slices.Clone(r.Warnings)

	for _, f := range []*float64{
		&out.Mean, &out.StandardDeviation, &out.Median, &out.Q1Percentile, &out.Q3Percentile,
		&out.InterquartileRange, &out.Range, &out.Min, &out.Max, &out.Variance,
		&out.CoefficientOfVariation, &out.Skewness,
	} {
		*f = RoundToDecimalPlaces(*f, k)
	}

	out.Mode = make([]ModeEntry, 0, len(r.Mode))
	for _, m := range r.Mode {
		v := RoundToDecimalPlaces(m.Value, k)
		// modes ascend and rounding is monotone, so equal values are adjacent
		if n := len(out.Mode); n > 0 && out.Mode[n-1].Value == v {
			continue
		}

		out.Mode = append(out.Mode, ModeEntry{Value: v, Frequency: m.Frequency})
	}

	return &out
}

func (r *Report) warn(field string, err error) {
	r.Warnings = append(r.Warnings, field+": "+err.Error())
}


// reportJSON is the wire form of Report: non-finite numbers travel as null.
type reportJSON struct {
	ReceivedNumbers        []float64   `json:"receivedNumbers"`
	Count                  int         `json:"count"`
	Variant                string      `json:"variant"`
	Mean                   *float64    `json:"mean"`
	StandardDeviation      *float64    `json:"standardDeviation"`
	Median                 *float64    `json:"median"`
	Q1Percentile           *float64    `json:"q1Percentile"`
	Q3Percentile           *float64    `json:"q3Percentile"`
	InterquartileRange     *float64    `json:"interquartileRange"`
	Range                  *float64    `json:"range"`
	Min                    *float64    `json:"min"`
	Max                    *float64    `json:"max"`
	Variance               *float64    `json:"variance"`
	CoefficientOfVariation *float64    `json:"coefficientOfVariation"`
	Skewness               *float64    `json:"skewness"`
	Mode                   []ModeEntry `json:"mode"`
	Warnings               []string    `json:"warnings,omitempty"`
}

// MarshalJSON encodes the report with camelCase keys; NaN and ±Inf become null.
func (r Report) MarshalJSON() ([]byte, error) {
	mode := r.Mode
	if mode == nil {
		mode = []ModeEntry{}
	}

	return json.Marshal(reportJSON{
		ReceivedNumbers:        r.ReceivedNumbers,
		Count:                  r.Count,
		Variant:                r.Variant,
		Mean:                   finite(r.Mean),
		StandardDeviation:      finite(r.StandardDeviation),
		Median:                 finite(r.Median),
		Q1Percentile:           finite(r.Q1Percentile),
		Q3Percentile:           finite(r.Q3Percentile),
		InterquartileRange:     finite(r.InterquartileRange),
		Range:                  finite(r.Range),
		Min:                    finite(r.Min),
		Max:                    finite(r.Max),
		Variance:               finite(r.Variance),
		CoefficientOfVariation: finite(r.CoefficientOfVariation),
		Skewness:               finite(r.Skewness),
		Mode:                   mode,
		Warnings:               r.Warnings,
	})
}

// UnmarshalJSON decodes the wire form; null numbers become NaN.
func (r *Report) UnmarshalJSON(data []byte) error {
	var wire reportJSON

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return err
	}

	*r = Report{
		ReceivedNumbers:        wire.ReceivedNumbers,
		Count:                  wire.Count,
		Variant:                wire.Variant,
		Mean:                   orNaN(wire.Mean),
		StandardDeviation:      orNaN(wire.StandardDeviation),
		Median:                 orNaN(wire.Median),
		Q1Percentile:           orNaN(wire.Q1Percentile),
		Q3Percentile:           orNaN(wire.Q3Percentile),
		InterquartileRange:     orNaN(wire.InterquartileRange),
		Range:                  orNaN(wire.Range),
		Min:                    orNaN(wire.Min),
		Max:                    orNaN(wire.Max),
		Variance:               orNaN(wire.Variance),
		CoefficientOfVariation: orNaN(wire.CoefficientOfVariation),
		Skewness:               orNaN(wire.Skewness),
		Mode:                   wire.Mode,
		Warnings:               wire.Warnings,
	}

	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}

	return *v
}
