// Package hyperstats exposes the descriptive statistics core as a service: a Calculator that
// rounds, caches, and batches reports, plus the HTTP server that serves them.
package hyperstats

import (
	"context"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/hyperstats/internal/constants"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/backend"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// Request is one sample set to summarize. A nil Population selects the calculator's default variant.
type Request struct {
	Numbers    []float64 `json:"numbers"`
	Population *bool     `json:"population,omitempty"`
}

// BatchResult pairs a report with the error that prevented it.
type BatchResult struct {
	Report *stats.Report
	Err    error
}

// Calculator implements Service on top of pkg/stats.
type Calculator struct {
	precision      int
	workers        int
	defaultVariant stats.Variant
	backend        backend.IBackend
	ttl            time.Duration
	collector      StatsCollector
}

// New builds a Calculator. Defaults: precision constants.DefaultPrecision, one worker per CPU,
// sample variant, no cache.
func New(opts ...Option) (*Calculator, error) {
	calc := &Calculator{
		precision:      constants.DefaultPrecision,
		workers:        runtime.NumCPU(),
		defaultVariant: stats.Sample,
		collector:      NewCollector(),
	}

	for _, opt := range opts {
		opt(calc)
	}

	if calc.precision < 0 || calc.precision > constants.MaxPrecision {
		return nil, ewrap.Wrap(sentinel.ErrInvalidConfig, "precision must be between 0 and "+strconv.Itoa(constants.MaxPrecision))
	}

	if calc.workers < 1 {
		return nil, ewrap.Wrap(sentinel.ErrInvalidConfig, "workers must be positive")
	}

	if calc.ttl < 0 {
		return nil, ewrap.Wrap(sentinel.ErrInvalidConfig, "cache ttl cannot be negative")
	}

	if calc.collector == nil {
		calc.collector = NewCollector()
	}

	return calc, nil
}

// Precision returns the number of decimal places applied to reports.
func (c *Calculator) Precision() int { return c.precision }

// GetStats returns the service counters.
func (c *Calculator) GetStats() Stats { return c.collector.GetStats() }

// VariantFor resolves the variant a request asks for.
func (c *Calculator) VariantFor(req Request) stats.Variant {
	if req.Population == nil {
		return c.defaultVariant
	}

	return stats.VariantFor(*req.Population)
}

// Compute returns the rounded report for req. Cache failures never fail the request.
func (c *Calculator) Compute(ctx context.Context, req Request) (*stats.Report, error) {
	if ctx.Err() != nil {
		return nil, ewrap.Wrap(sentinel.ErrTimeoutOrCanceled, "compute")
	}

	variant := c.VariantFor(req)

	var key string

	if c.backend != nil {
		key = backend.Fingerprint(req.Numbers, variant)

		cached, ok := c.backend.Get(ctx, key)
		if ok && slices.Equal(cached.ReceivedNumbers, req.Numbers) {
			c.collector.Incr(StatCacheHits, 1)
			c.collector.Incr(StatComputations, 1)

			return cached.Round(c.precision), nil
		}

		c.collector.Incr(StatCacheMisses, 1)
	}

	report, err := stats.Compute(req.Numbers, variant)
	if err != nil {
		c.collector.Incr(StatFailures, 1)

		return nil, err
	}

	c.collector.Incr(StatComputations, 1)

	if c.backend != nil {
		err = c.backend.Set(ctx, key, report, c.ttl)
		if err != nil {
			c.collector.Incr(StatCacheErrors, 1)
		}
	}

	return report.Round(c.precision), nil
}

// ComputeBatch computes every request on a worker pool sized to the batch.
// Once ctx is done the remaining requests fail with sentinel.ErrTimeoutOrCanceled.
func (c *Calculator) ComputeBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	c.collector.Incr(StatBatches, 1)

	pool := NewWorkerPool(min(c.workers, len(reqs)))

	drained := make(chan struct{})

	go func() {
		defer close(drained)

		for range pool.Errors() { //nolint:revive
		}
	}()

	for i := range reqs {
		pool.Enqueue(func() error {
			results[i].Report, results[i].Err = c.Compute(ctx, reqs[i])

			return results[i].Err
		})
	}

	pool.Shutdown()
	<-drained

	return results
}
