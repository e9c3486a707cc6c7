package hyperstats

import (
	"sync/atomic"
)

// Stat names a service counter.
type Stat string

const (
	// StatComputations counts reports served, cached or not.
	StatComputations Stat = "computations"
	// StatFailures counts requests rejected by the statistics core.
	StatFailures Stat = "failures"
	// StatCacheHits counts reports served from the cache backend.
	StatCacheHits Stat = "cache_hits"
	// StatCacheMisses counts cache lookups that fell through to a computation.
	StatCacheMisses Stat = "cache_misses"
	// StatCacheErrors counts reports that could not be stored in the cache backend.
	StatCacheErrors Stat = "cache_errors"
	// StatBatches counts batch requests.
	StatBatches Stat = "batches"
)

// Stats is a snapshot of the service counters.
type Stats struct {
	Computations int64 `json:"computations"`
	Failures     int64 `json:"failures"`
	CacheHits    int64 `json:"cacheHits"`
	CacheMisses  int64 `json:"cacheMisses"`
	CacheErrors  int64 `json:"cacheErrors"`
	Batches      int64 `json:"batches"`
}

// StatsCollector is an interface that defines the methods that a stats collector should implement.
type StatsCollector interface {
	// Incr increments the count of a statistic by the given value.
	Incr(stat Stat, value int64)
	// GetStats returns the collected statistics.
	GetStats() Stats
}

// Collector is the default lock-free StatsCollector.
type Collector struct {
	computations atomic.Int64
	failures     atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	cacheErrors  atomic.Int64
	batches      atomic.Int64
}

// NewCollector returns a zeroed collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Incr increments the count of a statistic by the given value. Unknown stats are ignored.
func (c *Collector) Incr(stat Stat, value int64) {
	if counter := c.counter(stat); counter != nil {
		counter.Add(value)
	}
}

// GetStats returns the collected statistics.
func (c *Collector) GetStats() Stats {
	return Stats{
		Computations: c.computations.Load(),
		Failures:     c.failures.Load(),
		CacheHits:    c.cacheHits.Load(),
		CacheMisses:  c.cacheMisses.Load(),
		CacheErrors:  c.cacheErrors.Load(),
		Batches:      c.batches.Load(),
	}
}

func (c *Collector) counter(stat Stat) *atomic.Int64 {
	switch stat {
	case StatComputations:
		return &c.computations
	case StatFailures:
		return &c.failures
	case StatCacheHits:
		return &c.cacheHits
	case StatCacheMisses:
		return &c.cacheMisses
	case StatCacheErrors:
		return &c.cacheErrors
	case StatBatches:
		return &c.batches
	default:
		return nil
	}
}
