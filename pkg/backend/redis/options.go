// Package redis builds the go-redis client behind the redis report cache. A single address
// yields a single-node client; several addresses yield a cluster client.
package redis

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option is a function type that can be used to configure the redis client options.
type Option func(*redis.UniversalOptions)

// ApplyOptions applies the given options to the given client options.
func ApplyOptions(opt *redis.UniversalOptions, options ...Option) {
	for _, option := range options {
		option(opt)
	}
}

// WithAddrs sets the node addresses. Empty entries are ignored.
func WithAddrs(addrs ...string) Option {
	return func(opt *redis.UniversalOptions) {
		for _, addr := range addrs {
			if addr != "" {
				opt.Addrs = append(opt.Addrs, addr)
			}
		}
	}
}

// WithUsername sets the ACL username.
func WithUsername(username string) Option {
	return func(opt *redis.UniversalOptions) {
		opt.Username = username
	}
}

// WithPassword sets the password.
func WithPassword(password string) Option {
	return func(opt *redis.UniversalOptions) {
		opt.Password = password
	}
}

// WithDB selects the database; ignored by cluster clients.
func WithDB(db int) Option {
	return func(opt *redis.UniversalOptions) {
		opt.DB = db
	}
}

// WithTimeouts sets the dial, read and write timeouts in one go. Zero values keep the defaults.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(opt *redis.UniversalOptions) {
		if dial > 0 {
			opt.DialTimeout = dial
		}

		if read > 0 {
			opt.ReadTimeout = read
		}

		if write > 0 {
			opt.WriteTimeout = write
		}
	}
}

// WithPoolSize sets the per-node connection pool size.
func WithPoolSize(poolSize int) Option {
	return func(opt *redis.UniversalOptions) {
		opt.PoolSize = poolSize
	}
}

// WithTLSConfig enables TLS.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(opt *redis.UniversalOptions) {
		opt.TLSConfig = tlsConfig
	}
}
