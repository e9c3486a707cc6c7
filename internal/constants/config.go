// Package constants defines default configuration values and backend types
// for the hyperstats service. It provides standard settings for the HTTP server,
// report rounding, the report cache and the supported cache backends.
package constants

import "time"

const (
	// DefaultHTTPAddr is the address the HTTP server binds to when none is configured.
	DefaultHTTPAddr = "127.0.0.1:8080"
	// DefaultReadTimeout bounds reading a request.
	DefaultReadTimeout = 5 * time.Second
	// DefaultWriteTimeout bounds writing a response.
	DefaultWriteTimeout = 5 * time.Second
	// DefaultShutdownTimeout bounds a graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultBodyLimit is the largest accepted request body, in bytes.
	DefaultBodyLimit = 4 * 1024 * 1024
	// DefaultPrecision is the number of decimal places applied to reported statistics.
	DefaultPrecision = 9
	// MaxPrecision is the largest precision that still rounds meaningfully in float64.
	MaxPrecision = 15
	// DefaultVariant selects the formulas used when a request does not say.
	DefaultVariant = "sample"
	// DefaultCacheCapacity is the default number of reports kept by the in-memory backend.
	DefaultCacheCapacity = 1024
	// DefaultCacheMaxBytes is the default byte budget of the in-memory backend.
	DefaultCacheMaxBytes = 64 << 20
	// DefaultCacheTTL is how long a cached report stays valid.
	DefaultCacheTTL = 10 * time.Minute
	// DefaultSerializer is the serializer used by the redis backend.
	DefaultSerializer = "msgpack"
	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "info"
	// InMemoryBackend is the in-memory report cache backend type.
	InMemoryBackend = "in-memory"
	// RedisBackend is the name of the Redis report cache backend.
	RedisBackend = "redis"
	// DefaultSamplesQuery reads samples for the Postgres source.
	DefaultSamplesQuery = "SELECT value FROM samples ORDER BY id ASC"
)
