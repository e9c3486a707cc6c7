// Package config loads the hyperstats configuration in layers: built-in defaults, an optional
// YAML file, an optional .env file and finally HYPERSTATS_* environment variables.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/hyp3rd/hyperstats/internal/constants"
	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// DefaultEnvFile is read when Load is not given explicit env files.
const DefaultEnvFile = ".env"

// Config keeps the service configuration.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"        envconfig:"HYPERSTATS_HTTP_ADDR"`
	StaticDir       string        `yaml:"static_dir"       envconfig:"HYPERSTATS_STATIC_DIR"`
	AuthToken       string        `yaml:"auth_token"       envconfig:"HYPERSTATS_AUTH_TOKEN"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     envconfig:"HYPERSTATS_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    envconfig:"HYPERSTATS_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"HYPERSTATS_SHUTDOWN_TIMEOUT"`
	BodyLimit       int           `yaml:"body_limit"       envconfig:"HYPERSTATS_BODY_LIMIT"`

	Precision      int    `yaml:"precision"       envconfig:"HYPERSTATS_PRECISION"`
	DefaultVariant string `yaml:"default_variant" envconfig:"HYPERSTATS_DEFAULT_VARIANT"`
	Workers        int    `yaml:"workers"         envconfig:"HYPERSTATS_WORKERS"`

	CacheBackend    string        `yaml:"cache_backend"    envconfig:"HYPERSTATS_CACHE_BACKEND"`
	CacheCapacity   int           `yaml:"cache_capacity"   envconfig:"HYPERSTATS_CACHE_CAPACITY"`
	CacheMaxBytes   int64         `yaml:"cache_max_bytes"  envconfig:"HYPERSTATS_CACHE_MAX_BYTES"`
	CacheTTL        time.Duration `yaml:"cache_ttl"        envconfig:"HYPERSTATS_CACHE_TTL"`
	CacheSerializer string        `yaml:"cache_serializer" envconfig:"HYPERSTATS_CACHE_SERIALIZER"`

	RedisAddrs    []string `yaml:"redis_addrs"    envconfig:"HYPERSTATS_REDIS_ADDRS"`
	RedisUsername string   `yaml:"redis_username" envconfig:"HYPERSTATS_REDIS_USERNAME"`
	RedisPassword string   `yaml:"redis_password" envconfig:"HYPERSTATS_REDIS_PASSWORD"`
	RedisDB       int      `yaml:"redis_db"       envconfig:"HYPERSTATS_REDIS_DB"`

	PostgresDSN  string `yaml:"postgres_dsn"  envconfig:"HYPERSTATS_POSTGRES_DSN"`
	SamplesQuery string `yaml:"samples_query" envconfig:"HYPERSTATS_SAMPLES_QUERY"`

	LogLevel string `yaml:"log_level" envconfig:"HYPERSTATS_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:        constants.DefaultHTTPAddr,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		BodyLimit:       constants.DefaultBodyLimit,
		Precision:       constants.DefaultPrecision,
		DefaultVariant:  constants.DefaultVariant,
		CacheCapacity:   constants.DefaultCacheCapacity,
		CacheMaxBytes:   constants.DefaultCacheMaxBytes,
		CacheTTL:        constants.DefaultCacheTTL,
		CacheSerializer: constants.DefaultSerializer,
		SamplesQuery:    constants.DefaultSamplesQuery,
		LogLevel:        constants.DefaultLogLevel,
	}
}

// Load builds the configuration. path names an optional YAML file; envFiles default to
// DefaultEnvFile and are skipped when missing. Variables already set in the environment win
// over the env files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		err := readFile(cfg, path)
		if err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	for _, envFile := range envFiles {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, ewrap.Wrap(err, "reading env file "+envFile)
		}
	}

	err := readEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and names.
func (cfg *Config) Validate() error {
	if cfg.Precision < 0 || cfg.Precision > constants.MaxPrecision {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, "precision must be between 0 and "+strconv.Itoa(constants.MaxPrecision))
	}

	if _, err := stats.ParseVariant(cfg.DefaultVariant); err != nil {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, err.Error())
	}

	if cfg.Workers < 0 {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, "workers cannot be negative")
	}

	switch cfg.CacheBackend {
	case "", constants.InMemoryBackend:
	case constants.RedisBackend:
		if len(cfg.RedisAddrs) == 0 {
			return ewrap.Wrap(sentinel.ErrInvalidConfig, "redis backend needs at least one address")
		}
	default:
		return ewrap.Wrap(sentinel.ErrInvalidBackendType, cfg.CacheBackend)
	}

	if cfg.CacheCapacity < 0 {
		return ewrap.Wrap(sentinel.ErrInvalidCapacity, "cache capacity")
	}

	if cfg.CacheMaxBytes < 0 {
		return ewrap.Wrap(sentinel.ErrInvalidMaxCacheSize, "cache max bytes")
	}

	if cfg.CacheTTL < 0 {
		return ewrap.Wrap(sentinel.ErrInvalidExpiration, "cache ttl")
	}

	if !slices.Contains(serializer.NewSerializerRegistry().Names(), cfg.CacheSerializer) {
		return ewrap.Wrap(sentinel.ErrSerializerNotFound, cfg.CacheSerializer)
	}

	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, "timeouts must be positive")
	}

	return nil
}

// Variant returns the parsed default variant. Call after Validate.
func (cfg *Config) Variant() stats.Variant {
	variant, _ := stats.ParseVariant(cfg.DefaultVariant)

	return variant
}

func readFile(cfg *Config, cfgFile string) error {
	openedCfgFile, err := os.Open(cfgFile)
	if err != nil {
		return ewrap.Wrap(err, "opening config file")
	}

	defer func() {
		_ = openedCfgFile.Close()
	}()

	decoder := yaml.NewDecoder(openedCfgFile)
	decoder.KnownFields(true)

	err = decoder.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return ewrap.Wrap(err, "decoding config file "+cfgFile)
	}

	return nil
}

func readEnv(cfg *Config) error {
	err := envconfig.Process("", cfg)
	if err != nil {
		return ewrap.Wrap(err, "reading environment")
	}

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))

	return nil
}
