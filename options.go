package hyperstats

import (
	"time"

	"github.com/hyp3rd/hyperstats/pkg/backend"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// Option is a function type that can be used to configure the `Calculator` struct.
type Option func(*Calculator)

// WithPrecision sets the number of decimal places applied to every report.
func WithPrecision(precision int) Option {
	return func(c *Calculator) {
		c.precision = precision
	}
}

// WithWorkers sets the maximum number of concurrent computations per batch.
func WithWorkers(workers int) Option {
	return func(c *Calculator) {
		c.workers = workers
	}
}

// WithDefaultVariant sets the variant used by requests that do not choose one.
func WithDefaultVariant(variant stats.Variant) Option {
	return func(c *Calculator) {
		c.defaultVariant = variant
	}
}

// WithBackend enables report caching in the given backend; ttl zero keeps reports until evicted.
func WithBackend(b backend.IBackend, ttl time.Duration) Option {
	return func(c *Calculator) {
		c.backend = b
		c.ttl = ttl
	}
}

// WithStatsCollector is an option that sets the stats collector field of the `Calculator` struct.
func WithStatsCollector(statsCollector StatsCollector) Option {
	return func(c *Calculator) {
		c.collector = statsCollector
	}
}
