// Package sentinel provides standardized error definitions for the hyperstats service.
// This package centralizes the errors raised around the statistics core: request validation,
// report cache backends, serializers and the HTTP server lifecycle.
//
// Statistical errors (empty input, insufficient samples, degenerate variance) live next to the
// estimators in pkg/stats so that library users can match them with errors.Is.
//
// All errors are created using the ewrap package to provide enhanced error
// wrapping and context capabilities.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrInvalidBackendType is returned when an unknown report cache backend is configured.
	ErrInvalidBackendType = ewrap.New("invalid backend type")

	// ErrInvalidKey is returned when an empty cache key is used.
	ErrInvalidKey = ewrap.New("invalid key")

	// ErrNilValue is returned when a nil report is handed to a cache backend.
	ErrNilValue = ewrap.New("nil value")

	// ErrNilClient is returned when a nil client is passed to a backend.
	ErrNilClient = ewrap.New("nil client")

	// ErrInvalidExpiration is returned when a negative TTL is set on a cached report.
	ErrInvalidExpiration = ewrap.New("expiration cannot be negative")

	// ErrInvalidSize is returned when the size of a cached report cannot be computed.
	ErrInvalidSize = ewrap.New("invalid size")

	// ErrInvalidCapacity is returned when an invalid capacity is passed to a backend.
	ErrInvalidCapacity = ewrap.New("capacity cannot be negative")

	// ErrInvalidMaxCacheSize is returned when a negative byte budget is passed to the cache.
	ErrInvalidMaxCacheSize = ewrap.New("invalid max cache size")

	// ErrCacheFull is returned when the in-memory backend cannot make room for a report.
	ErrCacheFull = ewrap.New("cache is full")

	// ErrParamCannotBeEmpty is returned when a parameter cannot be empty.
	ErrParamCannotBeEmpty = ewrap.New("param cannot be empty")

	// ErrSerializerNotFound is returned when a serializer is not found.
	ErrSerializerNotFound = ewrap.New("serializer not found")

	// ErrInvalidRequest is returned when a request body cannot be decoded.
	ErrInvalidRequest = ewrap.New("invalid request")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = ewrap.New("invalid configuration")

	// ErrTimeoutOrCanceled is returned when a timeout or cancellation occurs.
	ErrTimeoutOrCanceled = ewrap.New("the operation timed out or was canceled")

	// ErrHTTPShutdownTimeout is returned when the HTTP server fails to shutdown before context deadline.
	ErrHTTPShutdownTimeout = ewrap.New("http shutdown timeout")
)
