// Package attrs provides reusable OpenTelemetry attribute key constants
// to avoid duplication across middlewares.
package attrs

const (
	// AttrSampleCount is the number of samples in a computation request.
	AttrSampleCount = "samples.count"
	// AttrVariant is the formula variant of a request: "population", "sample" or "default".
	AttrVariant = "stats.variant"
	// AttrBatchSize is the number of requests in a batch computation.
	AttrBatchSize = "batch.size"
	// AttrFailedCount is the number of requests in a batch that failed.
	AttrFailedCount = "failed.count"
	// AttrOutcome is "ok" or "error" for a single computation.
	AttrOutcome = "outcome"
)
