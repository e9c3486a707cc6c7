package stats

import "github.com/hyp3rd/ewrap"

var (
	// ErrEmptyInput is returned when a computation receives no samples.
	// It is fatal for a whole report and is raised before any statistic is computed.
	ErrEmptyInput = ewrap.New("empty input")

	// ErrInsufficientSamples is returned when an estimator needs more samples than it was given:
	// sample variance and standard deviation need at least two, skewness needs at least three.
	ErrInsufficientSamples = ewrap.New("insufficient samples")

	// ErrDegenerateVariance is returned when the standard deviation is exactly zero,
	// which leaves skewness undefined.
	ErrDegenerateVariance = ewrap.New("degenerate variance")

	// ErrNonFiniteInput is returned when a sample is NaN or infinite.
	ErrNonFiniteInput = ewrap.New("non-finite sample")

	// ErrOverflow is reported when a statistic of finite samples exceeds the float64 range,
	// e.g. the variance of samples near ±1e308.
	ErrOverflow = ewrap.New("exceeds the float64 range")

	// ErrPercentileOutOfRange is returned when a percentile outside [0, 100] is requested.
	ErrPercentileOutOfRange = ewrap.New("percentile out of range")
)
