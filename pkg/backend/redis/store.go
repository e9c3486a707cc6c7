package redis

import (
	"context"
	"net"

	"github.com/hyp3rd/ewrap"
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/hyperstats/internal/constants"
)

// Store wraps the client used by the redis report cache.
type Store struct {
	Client redis.UniversalClient
}

// New creates a store with the given options. At least one address is required.
func New(opts ...Option) (*Store, error) {
	// Setup redis client
	opt := &redis.UniversalOptions{
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{
				Timeout: constants.RedisDialTimeout,
			}

			return dialer.DialContext(ctx, network, addr)
		},
		MaxRetries:   constants.RedisClientMaxRetries,
		DialTimeout:  constants.RedisDialTimeout,
		ReadTimeout:  constants.RedisClientReadTimeout,
		WriteTimeout: constants.RedisClientWriteTimeout,
		PoolSize:     constants.RedisClientPoolSize,
		MinIdleConns: constants.RedisClientMinIdleConns,
		PoolTimeout:  constants.RedisClientPoolTimeout,
	}

	ApplyOptions(opt, opts...)

	if len(opt.Addrs) == 0 {
		return nil, ewrap.New("redis address is empty")
	}

	return &Store{Client: redis.NewUniversalClient(opt)}, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return ewrap.Wrap(s.Client.Ping(ctx).Err(), "pinging redis")
}

// Close releases the client connections.
func (s *Store) Close() error {
	return s.Client.Close()
}
