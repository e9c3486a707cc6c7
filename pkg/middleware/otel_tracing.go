package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/hyperstats"
	"github.com/hyp3rd/hyperstats/internal/telemetry/attrs"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// OTelTracingMiddleware wraps hyperstats.Service methods with OpenTelemetry spans.
type OTelTracingMiddleware struct {
	next   hyperstats.Service
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing middleware.
type OTelTracingOption func(*OTelTracingMiddleware)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(m *OTelTracingMiddleware) { m.commonAttrs = append(m.commonAttrs, attributes...) }
}

// NewOTelTracingMiddleware creates a tracing middleware.
func NewOTelTracingMiddleware(next hyperstats.Service, tracer trace.Tracer, opts ...OTelTracingOption) hyperstats.Service {
	mw := &OTelTracingMiddleware{next: next, tracer: tracer}
	for _, o := range opts {
		o(mw)
	}

	return mw
}

// Compute implements Service.Compute with tracing. Report warnings become span events.
func (mw OTelTracingMiddleware) Compute(ctx context.Context, req hyperstats.Request) (*stats.Report, error) {
	ctx, span := mw.startSpan(ctx, "hyperstats.Compute",
		attribute.Int(attrs.AttrSampleCount, len(req.Numbers)),
		attribute.String(attrs.AttrVariant, variantName(req)),
	)
	defer span.End()

	report, err := mw.next.Compute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	for _, warning := range report.Warnings {
		span.AddEvent("warning", trace.WithAttributes(attribute.String("message", warning)))
	}

	return report, nil
}

// ComputeBatch implements Service.ComputeBatch with tracing.
func (mw OTelTracingMiddleware) ComputeBatch(ctx context.Context, reqs []hyperstats.Request) []hyperstats.BatchResult {
	ctx, span := mw.startSpan(ctx, "hyperstats.ComputeBatch", attribute.Int(attrs.AttrBatchSize, len(reqs)))
	defer span.End()

	results := mw.next.ComputeBatch(ctx, reqs)
	span.SetAttributes(attribute.Int(attrs.AttrFailedCount, countFailed(results)))

	return results
}

// Precision returns the precision.
func (mw OTelTracingMiddleware) Precision() int { return mw.next.Precision() }

// GetStats returns stats.
func (mw OTelTracingMiddleware) GetStats() hyperstats.Stats { return mw.next.GetStats() }

// startSpan starts a span with common and provided attributes.
func (mw OTelTracingMiddleware) startSpan(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := mw.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(mw.commonAttrs) > 0 {
		span.SetAttributes(mw.commonAttrs...)
	}

	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}

	return ctx, span
}
