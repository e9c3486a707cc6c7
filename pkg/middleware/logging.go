// Package middleware provides service middlewares for the hyperstats calculator.
// Each middleware wraps a hyperstats.Service and adds one concern (logging, metrics, tracing)
// without changing the results.
package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/hyperstats"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// Logger describes a logging interface allowing to implement different external, or custom logger.
// *zerolog.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// LoggingMiddleware is a middleware that logs every call and the time it takes.
// Must implement the hyperstats.Service interface.
type LoggingMiddleware struct {
	next   hyperstats.Service
	logger Logger
}

// NewLoggingMiddleware returns a new LoggingMiddleware.
func NewLoggingMiddleware(next hyperstats.Service, logger Logger) hyperstats.Service {
	return &LoggingMiddleware{next: next, logger: logger}
}

// Logging returns NewLoggingMiddleware as a hyperstats.Middleware.
func Logging(logger Logger) hyperstats.Middleware {
	return func(next hyperstats.Service) hyperstats.Service {
		return NewLoggingMiddleware(next, logger)
	}
}

// Compute logs the received numbers, the outcome and the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Compute(ctx context.Context, req hyperstats.Request) (*stats.Report, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Compute took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Compute method called with %d numbers (%s): %v", len(req.Numbers), variantName(req), req.Numbers)

	report, err := mw.next.Compute(ctx, req)
	if err != nil {
		mw.logger.Printf("Compute failed: %v", err)

		return nil, err
	}

	for _, warning := range report.Warnings {
		mw.logger.Printf("Compute warning: %s", warning)
	}

	return report, nil
}

// ComputeBatch logs the batch size, the number of failures and the time it takes.
func (mw LoggingMiddleware) ComputeBatch(ctx context.Context, reqs []hyperstats.Request) []hyperstats.BatchResult {
	defer func(begin time.Time) {
		mw.logger.Printf("method ComputeBatch took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("ComputeBatch method called with %d requests", len(reqs))

	results := mw.next.ComputeBatch(ctx, reqs)
	if failed := countFailed(results); failed > 0 {
		mw.logger.Printf("ComputeBatch: %d of %d requests failed", failed, len(results))
	}

	return results
}

// Precision forwards to the next middleware.
func (mw LoggingMiddleware) Precision() int { return mw.next.Precision() }

// GetStats forwards to the next middleware.
func (mw LoggingMiddleware) GetStats() hyperstats.Stats { return mw.next.GetStats() }

func variantName(req hyperstats.Request) string {
	if req.Population == nil {
		return "default"
	}

	return stats.VariantFor(*req.Population).String()
}

func countFailed(results []hyperstats.BatchResult) int {
	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	return failed
}
