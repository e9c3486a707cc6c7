package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/longbridgeapp/assert"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/hyp3rd/hyperstats"
	"github.com/hyp3rd/hyperstats/pkg/middleware"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}

	return false
}

func newCalculator(t *testing.T) *hyperstats.Calculator {
	t.Helper()

	calc, err := hyperstats.New(hyperstats.WithWorkers(2))
	assert.NoError(t, err)

	return calc
}

func TestMiddlewareChain_PreservesResults(t *testing.T) {
	ctx := context.Background()
	calc := newCalculator(t)

	metricsMW := func(next hyperstats.Service) hyperstats.Service {
		svc, err := middleware.NewOTelMetricsMiddleware(next, metricnoop.NewMeterProvider().Meter("test"))
		if err != nil {
			t.Fatalf("metrics middleware: %v", err)
		}

		return svc
	}

	tracingMW := func(next hyperstats.Service) hyperstats.Service {
		return middleware.NewOTelTracingMiddleware(next, tracenoop.NewTracerProvider().Tracer("test"))
	}

	logger := &recordingLogger{}
	svc := hyperstats.ApplyMiddleware(calc, middleware.Logging(logger), metricsMW, tracingMW)

	req := hyperstats.Request{Numbers: []float64{2, 4, 4, 4, 5, 5, 7, 9}}

	want, err := calc.Compute(ctx, req)
	assert.NoError(t, err)

	got, err := svc.Compute(ctx, req)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, calc.Precision(), svc.Precision())
	assert.Equal(t, int64(2), svc.GetStats().Computations)

	results := svc.ComputeBatch(ctx, []hyperstats.Request{req, {}})
	assert.Equal(t, 2, len(results))
	assert.NoError(t, results[0].Err)

	if !errors.Is(results[1].Err, stats.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", results[1].Err)
	}

	assert.True(t, logger.contains("Compute method called with 8 numbers (default)"))
	assert.True(t, logger.contains("ComputeBatch: 1 of 2 requests failed"))
}

func TestLoggingMiddleware_LogsFailuresAndWarnings(t *testing.T) {
	ctx := context.Background()
	logger := &recordingLogger{}
	svc := middleware.NewLoggingMiddleware(newCalculator(t), logger)

	_, err := svc.Compute(ctx, hyperstats.Request{})
	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	assert.True(t, logger.contains("Compute failed"))

	population := true

	report, err := svc.Compute(ctx, hyperstats.Request{Numbers: []float64{3, 3}, Population: &population})
	assert.NoError(t, err)
	assert.False(t, report.SkewnessDefined())
	assert.True(t, logger.contains("(population)"))
	assert.True(t, logger.contains("Compute warning: skewness"))
}

func TestTracingMiddleware_PropagatesErrors(t *testing.T) {
	svc := middleware.NewOTelTracingMiddleware(newCalculator(t), tracenoop.NewTracerProvider().Tracer("test"))

	_, err := svc.Compute(context.Background(), hyperstats.Request{})
	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
