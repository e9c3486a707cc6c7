package backend

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/hyperstats/internal/constants"
	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

const (
	maxRetries   = 3
	retriesDelay = 100 * time.Millisecond
)

// Redis is a report cache that stores encoded reports in redis, one hash per key, with every key
// tracked in a set so the cache can be counted and cleared without touching unrelated data.
type Redis struct {
	rdb         redis.UniversalClient  // redis client to interact with the redis server or cluster
	capacity    int                    // capacity of the cache, zero means unbounded
	keysSetName string                 // keysSetName is the name of the set that holds the keys of the cached reports
	Serializer  serializer.ISerializer // Serializer encodes the reports before storing them
}

// NewRedis creates a new redis cache with the given options.
func NewRedis(redisOptions ...Option[Redis]) (*Redis, error) {
	rb := &Redis{}
	// Apply the backend options
	ApplyOptions(rb, redisOptions...)

	// Check if the client is nil
	if rb.rdb == nil {
		return nil, sentinel.ErrNilClient
	}
	// Check if the `capacity` is valid
	if rb.capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}
	// Check if the `keysSetName` is empty
	if rb.keysSetName == "" {
		rb.keysSetName = constants.RedisKeySetName
	}

	// Check if the serializer is nil
	if rb.Serializer == nil {
		var err error
		// Set a the serializer to default to `msgpack`
		rb.Serializer, err = serializer.New(constants.DefaultSerializer)
		if err != nil {
			return nil, err
		}
	}

	// return the new backend
	return rb, nil
}

// Capacity returns the maximum number of reports that can be stored in the cache.
func (cacheBackend *Redis) Capacity() int {
	return cacheBackend.capacity
}

// Count returns the number of live reports in the cache, pruning keys that expired.
func (cacheBackend *Redis) Count(ctx context.Context) int {
	keys, err := redisLiveKeys(ctx, cacheBackend.rdb, cacheBackend.keysSetName)
	if err != nil {
		return 0
	}

	return len(keys)
}

// Get retrieves the report stored under key.
func (cacheBackend *Redis) Get(ctx context.Context, key string) (*stats.Report, bool) {
	return redisGet(ctx, cacheBackend.rdb, key, cacheBackend.Serializer)
}

// Set stores the report under key. When the capacity is reached new keys are rejected with
// sentinel.ErrCacheFull; redis itself reclaims them through their TTL.
func (cacheBackend *Redis) Set(ctx context.Context, key string, report *stats.Report, ttl time.Duration) error {
	switch {
	case key == "":
		return sentinel.ErrInvalidKey
	case report == nil:
		return sentinel.ErrNilValue
	case ttl < 0:
		return sentinel.ErrInvalidExpiration
	}

	if cacheBackend.capacity > 0 {
		isMember, err := cacheBackend.rdb.SIsMember(ctx, cacheBackend.keysSetName, key).Result()
		if err != nil {
			return ewrap.Wrap(err, "checking key membership")
		}

		if !isMember && cacheBackend.Count(ctx) >= cacheBackend.capacity {
			return sentinel.ErrCacheFull
		}
	}

	return redisSet(ctx, cacheBackend.rdb, cacheBackend.keysSetName, key, report, ttl, cacheBackend.Serializer)
}

// Remove removes reports from the cache with the given keys.
func (cacheBackend *Redis) Remove(ctx context.Context, keys ...string) error {
	return redisRemove(ctx, cacheBackend.rdb, cacheBackend.keysSetName, keys...)
}

// Clear removes every report tracked in the key set.
func (cacheBackend *Redis) Clear(ctx context.Context) error {
	err := redisClear(ctx, cacheBackend.rdb, cacheBackend.keysSetName)

	return ewrap.Wrap(err, "clearing reports", ewrap.WithRetry(maxRetries, retriesDelay))
}
