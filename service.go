package hyperstats

import (
	"context"

	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// Service is the service interface for the statistics calculator.
// It enables middleware to be added to the service.
type Service interface {
	// Compute returns the rounded report for one sample set.
	Compute(ctx context.Context, req Request) (*stats.Report, error)
	// ComputeBatch computes every request concurrently; results keep the request order.
	ComputeBatch(ctx context.Context, reqs []Request) []BatchResult
	// Precision returns the number of decimal places applied to reports.
	Precision() int
	// GetStats returns the service counters.
	GetStats() Stats
}

// Middleware describes a service middleware.
type Middleware func(Service) Service

// ApplyMiddleware applies middlewares to a service.
func ApplyMiddleware(svc Service, mw ...Middleware) Service {
	// Apply each middleware in the chain
	for _, m := range mw {
		svc = m(svc)
	}
	// Return the decorated service
	return svc
}
