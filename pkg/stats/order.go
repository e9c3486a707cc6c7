package stats

import (
	"math"
	"slices"
)

// ModeEntry is one most-frequent value together with its frequency.
type ModeEntry struct {
	Value     float64 `json:"value"     msgpack:"value"     codec:"value"`
	Frequency int     `json:"frequency" msgpack:"frequency" codec:"frequency"`
}

// Ordered is a sorted, private copy of a sample set.
// It backs every order statistic so the input is sorted once per computation.
type Ordered struct {
	sorted []float64
}

// NewOrdered copies and sorts values ascending. Empty or non-finite input is rejected.
func NewOrdered(values []float64) (*Ordered, error) {
	if err := validate(values); err != nil {
		return nil, err
	}

	return newOrdered(values), nil
}

func newOrdered(values []float64) *Ordered {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return &Ordered{sorted: sorted}
}

// Len returns the number of samples.
func (o *Ordered) Len() int { return len(o.sorted) }

// Min returns the smallest sample.
func (o *Ordered) Min() float64 { return o.sorted[0] }

// Max returns the largest sample.
func (o *Ordered) Max() float64 { return o.sorted[len(o.sorted)-1] }

// Median returns the middle sample, or the mean of the two middle samples for an even count.
func (o *Ordered) Median() float64 {
	n := len(o.sorted)
	mid := n / 2

	if n%2 == 0 {
		return (o.sorted[mid-1] + o.sorted[mid]) / 2
	}

	return o.sorted[mid]
}

// Percentile returns the p-th percentile (0 <= p <= 100) by linear interpolation between the
// two closest ranks, with rank r = p/100 * (n-1).
func (o *Ordered) Percentile(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return math.NaN(), ErrPercentileOutOfRange
	}

	return o.percentile(p), nil
}

func (o *Ordered) percentile(p float64) float64 {
	n := len(o.sorted)
	rank := p / 100 * float64(n-1)
	i := int(math.Floor(rank))

	if i >= n-1 {
		return o.sorted[n-1]
	}

	lower, upper := o.sorted[i], o.sorted[i+1]

	frac := rank - float64(i)
	if frac == 0 {
		return lower
	}

	v := lower + frac*(upper-lower)
	if math.IsInf(v, 0) {
		// upper-lower overflowed
		v = lower*(1-frac) + upper*frac
	}

	// clamp so that rounding cannot break monotonicity across neighbouring ranks
	return math.Max(lower, math.Min(upper, v))
}

// Quartiles returns the 25th and 75th percentiles.
func (o *Ordered) Quartiles() (q1, q3 float64) {
	return o.percentile(25), o.percentile(75)
}

// InterquartileRange returns Q3 - Q1.
func (o *Ordered) InterquartileRange() float64 {
	q1, q3 := o.Quartiles()

	return q3 - q1
}

// Mode returns every value that attains the highest frequency, ascending by value.
// Values are grouped by exact equality; when all samples are distinct every sample is returned
// with frequency 1.
func (o *Ordered) Mode() []ModeEntry {
	var (
		modes []ModeEntry
		best  int
	)

	for start := 0; start < len(o.sorted); {
		end := start + 1
		for end < len(o.sorted) && o.sorted[end] == o.sorted[start] {
			end++
		}

		count := end - start

		switch {
		case count > best:
			best = count
			modes = append(modes[:0], ModeEntry{Value: o.sorted[start], Frequency: count})
		case count == best:
			modes = append(modes, ModeEntry{Value: o.sorted[start], Frequency: count})
		}

		start = end
	}

	return modes
}

// Percentile returns the p-th percentile of values. See Ordered.Percentile.
func Percentile(values []float64, p float64) (float64, error) {
	ord, err := NewOrdered(values)
	if err != nil {
		return math.NaN(), err
	}

	return ord.Percentile(p)
}

// InterquartileRange returns the spread between the first and third quartiles of values.
func InterquartileRange(values []float64) (float64, error) {
	ord, err := NewOrdered(values)
	if err != nil {
		return math.NaN(), err
	}

	return ord.InterquartileRange(), nil
}

// Mode returns the most frequent values. See Ordered.Mode.
func Mode(values []float64) ([]ModeEntry, error) {
	ord, err := NewOrdered(values)
	if err != nil {
		return nil, err
	}

	return ord.Mode(), nil
}

// Range returns max - min without sorting.
func Range(values []float64) (float64, error) {
	if err := validate(values); err != nil {
		return math.NaN(), err
	}

	return spread(values), nil
}

func spread(values []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return hi - lo
}
