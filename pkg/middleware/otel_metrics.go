package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/ewrap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/hyperstats"
	"github.com/hyp3rd/hyperstats/internal/telemetry/attrs"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// OTelMetricsMiddleware emits OpenTelemetry metrics for service methods.
type OTelMetricsMiddleware struct {
	next  hyperstats.Service
	meter metric.Meter

	// instruments
	calls     metric.Int64Counter
	durations metric.Float64Histogram
	samples   metric.Int64Histogram
}

// NewOTelMetricsMiddleware constructs a metrics middleware using the provided meter.
func NewOTelMetricsMiddleware(next hyperstats.Service, meter metric.Meter) (hyperstats.Service, error) {
	calls, err := meter.Int64Counter("hyperstats.calls")
	if err != nil {
		return nil, ewrap.Wrap(err, "create counter")
	}

	durations, err := meter.Float64Histogram("hyperstats.duration.ms")
	if err != nil {
		return nil, ewrap.Wrap(err, "create histogram")
	}

	samples, err := meter.Int64Histogram("hyperstats.samples")
	if err != nil {
		return nil, ewrap.Wrap(err, "create samples histogram")
	}

	return &OTelMetricsMiddleware{next: next, meter: meter, calls: calls, durations: durations, samples: samples}, nil
}

// Compute implements Service.Compute with metrics.
func (mw *OTelMetricsMiddleware) Compute(ctx context.Context, req hyperstats.Request) (*stats.Report, error) {
	start := time.Now()
	report, err := mw.next.Compute(ctx, req)

	variant := attribute.String(attrs.AttrVariant, variantName(req))
	mw.samples.Record(ctx, int64(len(req.Numbers)), metric.WithAttributes(variant))
	mw.rec(ctx, "Compute", start, variant, attribute.String(attrs.AttrOutcome, outcome(err)))

	return report, err
}

// ComputeBatch implements Service.ComputeBatch with metrics.
func (mw *OTelMetricsMiddleware) ComputeBatch(ctx context.Context, reqs []hyperstats.Request) []hyperstats.BatchResult {
	start := time.Now()
	results := mw.next.ComputeBatch(ctx, reqs)
	mw.rec(ctx, "ComputeBatch", start,
		attribute.Int(attrs.AttrBatchSize, len(reqs)),
		attribute.Int(attrs.AttrFailedCount, countFailed(results)),
	)

	return results
}

// Precision forwards to the next middleware.
func (mw *OTelMetricsMiddleware) Precision() int { return mw.next.Precision() }

// GetStats forwards to the next middleware.
func (mw *OTelMetricsMiddleware) GetStats() hyperstats.Stats { return mw.next.GetStats() }

func (mw *OTelMetricsMiddleware) rec(ctx context.Context, method string, start time.Time, attributes ...attribute.KeyValue) {
	base := []attribute.KeyValue{attribute.String("method", method)}
	if len(attributes) > 0 {
		base = append(base, attributes...)
	}

	mw.calls.Add(ctx, 1, metric.WithAttributes(base...))
	mw.durations.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(base...))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
