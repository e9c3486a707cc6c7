// Package backend provides the report cache backends used to memoize statistical reports.
// It defines the contract every backend follows: storing, retrieving, and evicting reports
// keyed by the fingerprint of the sample set they were computed from.
//
// The main interface IBackend provides methods for:
//   - Getting and setting cached reports
//   - Reporting capacity and item count
//   - Removing reports and clearing the cache
//
// Backends hold unrounded reports, so the same entry serves callers asking for different
// precisions.
package backend

import (
	"context"
	"time"

	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// IBackendConstrain defines the type constraint for cache backend implementations.
// It restricts the generic option helpers to the supported backend types.
type IBackendConstrain interface {
	InMemory | Redis
}

// IBackend defines the contract that all report cache backends must implement.
//
// All methods accept a context.Context parameter for cancellation and timeout
// control, enabling graceful handling of slow remote stores.
type IBackend interface {
	// Get retrieves the report stored under key. Expired or missing entries report ok == false.
	Get(ctx context.Context, key string) (report *stats.Report, ok bool)
	// Set stores report under key. A zero ttl keeps the report until it is evicted.
	Set(ctx context.Context, key string, report *stats.Report, ttl time.Duration) error
	// Capacity returns the maximum number of reports that can be stored, zero meaning unbounded.
	Capacity() int
	// Count returns the number of reports currently stored.
	Count(ctx context.Context) int
	// Remove deletes the reports with the given keys.
	Remove(ctx context.Context, keys ...string) error
	// Clear removes all reports from the cache.
	Clear(ctx context.Context) error
}
