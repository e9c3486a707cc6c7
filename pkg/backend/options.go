package backend

import (
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
)

// iConfigurableBackend is an interface that defines the methods that a backend should implement to be configurable.
type iConfigurableBackend interface {
	// setCapacity sets the capacity of the cache.
	setCapacity(capacity int)
}

// setCapacity sets the `Capacity` field of the `InMemory` backend.
func (inm *InMemory) setCapacity(capacity int) {
	inm.capacity = capacity
}

// setCapacity sets the `Capacity` field of the `Redis` backend.
func (rb *Redis) setCapacity(capacity int) {
	rb.capacity = capacity
}

// Option is a function type that can be used to configure a backend.
type Option[T IBackendConstrain] func(*T)

// ApplyOptions applies the given options to the given backend.
func ApplyOptions[T IBackendConstrain](backend *T, options ...Option[T]) {
	for _, option := range options {
		option(backend)
	}
}

// WithCapacity is an option that sets the capacity of the cache.
func WithCapacity[T IBackendConstrain](capacity int) Option[T] {
	return func(a *T) {
		if configurable, ok := any(a).(iConfigurableBackend); ok {
			configurable.setCapacity(capacity)
		}
	}
}

// WithMaxCacheSize is an option that sets the byte budget of the in-memory cache.
// Reports are measured by their CBOR-encoded size; zero means no budget.
func WithMaxCacheSize(maxCacheSize int64) Option[InMemory] {
	return func(backend *InMemory) {
		backend.maxCacheSize = maxCacheSize
	}
}

// WithRedisClient is an option that sets the redis client to use.
// Both *redis.Client and *redis.ClusterClient satisfy redis.UniversalClient.
func WithRedisClient(client redis.UniversalClient) Option[Redis] {
	return func(backend *Redis) {
		backend.rdb = client
	}
}

// WithKeysSetName is an option that sets the name of the set that holds the keys of the cached reports.
func WithKeysSetName(keysSetName string) Option[Redis] {
	return func(backend *Redis) {
		backend.keysSetName = keysSetName
	}
}

// WithSerializer is an option that sets the serializer used to encode reports before storing them.
//   - The default serializer is `serializer.MsgpackSerializer`.
//   - `serializer.DefaultJSONSerializer` and `serializer.CBORSerializer` are also registered.
//   - The interface `serializer.ISerializer` can be implemented to use a custom serializer.
func WithSerializer(ser serializer.ISerializer) Option[Redis] {
	return func(backend *Redis) {
		backend.Serializer = ser
	}
}
