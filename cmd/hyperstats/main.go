// Command hyperstats computes descriptive statistics for a sample set read from the command line,
// a file, standard input or Postgres, or serves the calculator over HTTP with -serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/hyp3rd/hyperstats"
	"github.com/hyp3rd/hyperstats/internal/config"
	"github.com/hyp3rd/hyperstats/internal/constants"
	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
	"github.com/hyp3rd/hyperstats/internal/logging"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/internal/source"
	"github.com/hyp3rd/hyperstats/pkg/backend"
	redisstore "github.com/hyp3rd/hyperstats/pkg/backend/redis"
	"github.com/hyp3rd/hyperstats/pkg/middleware"
)

const instrumentationName = "github.com/hyp3rd/hyperstats"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	serve      bool
	file       string
	pg         bool
	pgQuery    string
	population bool
	precision  int
	// populationSet is true when -population was given explicitly
	populationSet bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("hyperstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: hyperstats [flags] [numbers...]")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	fs.BoolVar(&opts.serve, "serve", false, "serve the calculator over HTTP until interrupted")
	fs.StringVar(&opts.file, "file", "", "read samples from a file (\"-\" for standard input)")
	fs.BoolVar(&opts.pg, "pg", false, "read samples from Postgres with the configured samples query")
	fs.StringVar(&opts.pgQuery, "pg-query", "", "read samples from Postgres with this query")
	fs.BoolVar(&opts.population, "population", false, "use the population formulas (default from configuration)")
	fs.IntVar(&opts.precision, "precision", -1, "decimal places in the report (default from configuration)")

	err := fs.Parse(args)
	if err != nil {
		return nil, nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "population" {
			opts.populationSet = true
		}
	})

	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if opts.precision >= 0 {
		cfg.Precision = opts.precision

		err = cfg.Validate()
		if err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	cache, closeCache, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeCache()

	svc, err := newService(cfg, cache, &logger)
	if err != nil {
		return err
	}

	if opts.serve {
		return serve(ctx, cfg, svc, logger)
	}

	values, err := readSamples(ctx, cfg, opts, rest, stdin)
	if err != nil {
		return err
	}

	req := hyperstats.Request{Numbers: values}
	if opts.populationSet {
		req.Population = &opts.population
	}

	report, err := svc.Compute(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return ewrap.Wrap(err, "encoding report")
	}

	_, err = fmt.Fprintln(stdout, string(out))

	return err
}

func newService(cfg *config.Config, cache backend.IBackend, logger *zerolog.Logger) (hyperstats.Service, error) {
	calcOpts := []hyperstats.Option{
		hyperstats.WithPrecision(cfg.Precision),
		hyperstats.WithDefaultVariant(cfg.Variant()),
	}

	if cfg.Workers > 0 {
		calcOpts = append(calcOpts, hyperstats.WithWorkers(cfg.Workers))
	}

	if cache != nil {
		calcOpts = append(calcOpts, hyperstats.WithBackend(cache, cfg.CacheTTL))
	}

	calc, err := hyperstats.New(calcOpts...)
	if err != nil {
		return nil, err
	}

	metrics, err := middleware.NewOTelMetricsMiddleware(calc, otel.GetMeterProvider().Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	// apply middleware in the same order as you want to execute them
	svc := hyperstats.ApplyMiddleware(metrics,
		func(next hyperstats.Service) hyperstats.Service {
			return middleware.NewOTelTracingMiddleware(next, otel.Tracer(instrumentationName))
		},
		middleware.Logging(logger),
	)

	return svc, nil
}

// newBackend builds the configured report cache; the returned func releases its resources.
func newBackend(ctx context.Context, cfg *config.Config) (backend.IBackend, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case "":
		return nil, noop, nil
	case constants.InMemoryBackend:
		inm, err := backend.NewInMemory(
			backend.WithCapacity[backend.InMemory](cfg.CacheCapacity),
			backend.WithMaxCacheSize(cfg.CacheMaxBytes),
		)
		if err != nil {
			return nil, noop, err
		}

		return inm, noop, nil
	case constants.RedisBackend:
		store, err := redisstore.New(
			redisstore.WithAddrs(cfg.RedisAddrs...),
			redisstore.WithUsername(cfg.RedisUsername),
			redisstore.WithPassword(cfg.RedisPassword),
			redisstore.WithDB(cfg.RedisDB),
		)
		if err != nil {
			return nil, noop, err
		}

		closeStore := func() { _ = store.Close() }

		err = store.Ping(ctx)
		if err != nil {
			closeStore()

			return nil, noop, err
		}

		ser, err := serializer.New(cfg.CacheSerializer)
		if err != nil {
			closeStore()

			return nil, noop, err
		}

		rb, err := backend.NewRedis(
			backend.WithRedisClient(store.Client),
			backend.WithCapacity[backend.Redis](cfg.CacheCapacity),
			backend.WithSerializer(ser),
		)
		if err != nil {
			closeStore()

			return nil, noop, err
		}

		return rb, closeStore, nil
	default:
		return nil, noop, ewrap.Wrap(sentinel.ErrInvalidBackendType, cfg.CacheBackend)
	}
}

func readSamples(ctx context.Context, cfg *config.Config, opts *options, args []string, stdin io.Reader) ([]float64, error) {
	switch {
	case opts.pg || opts.pgQuery != "":
		query := cfg.SamplesQuery
		if opts.pgQuery != "" {
			query = opts.pgQuery
		}

		dsn := cfg.PostgresDSN
		if dsn == "" {
			var err error

			dsn, err = source.DSNFromEnv()
			if err != nil {
				return nil, err
			}
		}

		db, err := source.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}

		defer func() {
			_ = db.Close()
		}()

		return source.FromPostgres(ctx, db, query)
	case opts.file == "-":
		return source.Parse(stdin)
	case opts.file != "":
		return source.FromFile(opts.file)
	default:
		return source.FromArgs(args)
	}
}

func serve(ctx context.Context, cfg *config.Config, svc hyperstats.Service, logger zerolog.Logger) error {
	httpOpts := []hyperstats.HTTPOption{
		hyperstats.WithHTTPReadTimeout(cfg.ReadTimeout),
		hyperstats.WithHTTPWriteTimeout(cfg.WriteTimeout),
		hyperstats.WithHTTPBodyLimit(cfg.BodyLimit),
	}

	if cfg.StaticDir != "" {
		httpOpts = append(httpOpts, hyperstats.WithStaticDir(cfg.StaticDir))
	}

	if cfg.AuthToken != "" {
		httpOpts = append(httpOpts, hyperstats.WithHTTPAuth(hyperstats.BearerAuth(cfg.AuthToken)))
	}

	srv := hyperstats.NewHTTPServer(cfg.HTTPAddr, httpOpts...)

	// requests in flight during shutdown must not see the signal cancellation
	err := srv.Start(context.WithoutCancel(ctx), svc)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", srv.Address()).Int("precision", svc.Precision()).Msg("hyperstats listening")

	<-ctx.Done()

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
