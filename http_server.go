package hyperstats

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/goccy/go-json"
	fiber "github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/hyperstats/internal/constants"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// StatusMessage is the body served by GET /status.
const StatusMessage = "This server is running.."

// HTTPOption configures the HTTP server.
type HTTPOption func(*HTTPServer)

// HTTPServer holds the Fiber app serving the calculator and its settings.
type HTTPServer struct {
	addr         string
	app          *fiber.App
	readTimeout  time.Duration
	writeTimeout time.Duration
	bodyLimit    int
	staticDir    string
	authFunc     func(fiber.Ctx) error
	ln           net.Listener
	mounted      bool
	started      bool
}

// WithHTTPAuth sets an auth function guarding the compute and stats routes (return error to block).
func WithHTTPAuth(fn func(fiber.Ctx) error) HTTPOption {
	return func(s *HTTPServer) { s.authFunc = fn }
}

// WithHTTPReadTimeout sets read timeout.
func WithHTTPReadTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPServer) { s.readTimeout = d }
}

// WithHTTPWriteTimeout sets write timeout.
func WithHTTPWriteTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPServer) { s.writeTimeout = d }
}

// WithHTTPBodyLimit caps request bodies, in bytes.
func WithHTTPBodyLimit(limit int) HTTPOption {
	return func(s *HTTPServer) { s.bodyLimit = limit }
}

// WithStaticDir serves the calculator front end from dir at "/".
func WithStaticDir(dir string) HTTPOption {
	return func(s *HTTPServer) { s.staticDir = dir }
}

// BearerAuth returns an auth function accepting only "Authorization: Bearer <token>".
func BearerAuth(token string) func(fiber.Ctx) error {
	want := []byte(token)

	return func(fiberCtx fiber.Ctx) error {
		got, ok := strings.CutPrefix(fiberCtx.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return fiber.ErrUnauthorized
		}

		return nil
	}
}

// NewHTTPServer builds an HTTP server holder (lazy start).
func NewHTTPServer(addr string, opts ...HTTPOption) *HTTPServer {
	srv := &HTTPServer{
		addr:         addr,
		readTimeout:  constants.DefaultReadTimeout,
		writeTimeout: constants.DefaultWriteTimeout,
		bodyLimit:    constants.DefaultBodyLimit,
	}
	for _, opt := range opts { // apply options
		opt(srv)
	}

	srv.app = fiber.New(fiber.Config{
		ReadTimeout:  srv.readTimeout,
		WriteTimeout: srv.writeTimeout,
		BodyLimit:    srv.bodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return srv
}

// App returns the underlying Fiber app.
func (s *HTTPServer) App() *fiber.App { return s.app }

// Mount registers the routes for svc (idempotent).
func (s *HTTPServer) Mount(ctx context.Context, svc Service) {
	if s.mounted {
		return
	}

	s.mountRoutes(ctx, svc)
	s.mounted = true
}

// Start mounts the routes and launches the listener (idempotent).
func (s *HTTPServer) Start(ctx context.Context, svc Service) error {
	if s.started { // idempotent
		return nil
	}

	s.Mount(ctx, svc)

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "http listen")
	}

	s.ln = ln

	go func() { // serve in background; Listener returns once Shutdown is called
		_ = s.app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	s.started = true

	return nil
}

// Address returns the bound address (useful when passing ":0" for ephemeral port). Empty if not started yet.
func (s *HTTPServer) Address() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Shutdown stops the server, giving in-flight requests until ctx is done.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- s.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrHTTPShutdownTimeout
	case err := <-ch:
		return err
	}
}

type batchRequest struct {
	Requests []Request `json:"requests"`
}

type batchItem struct {
	Report *stats.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (s *HTTPServer) mountRoutes(ctx context.Context, svc Service) {
	useAuth := s.wrapAuth

	status := func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString(StatusMessage) }

	s.app.Get("/status", status)
	s.app.Get("/health", func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString("ok") })
	s.app.Get("/stats", useAuth(func(fiberCtx fiber.Ctx) error { return fiberCtx.JSON(svc.GetStats()) }))

	s.app.Post("/numbers", useAuth(func(fiberCtx fiber.Ctx) error {
		var req Request

		err := json.Unmarshal(fiberCtx.Body(), &req)
		if err != nil {
			return writeError(fiberCtx, ewrap.Wrap(sentinel.ErrInvalidRequest, err.Error()))
		}

		report, err := svc.Compute(ctx, req)
		if err != nil {
			return writeError(fiberCtx, err)
		}

		return fiberCtx.JSON(report)
	}))

	s.app.Post("/numbers/batch", useAuth(func(fiberCtx fiber.Ctx) error {
		var req batchRequest

		err := json.Unmarshal(fiberCtx.Body(), &req)
		if err != nil {
			return writeError(fiberCtx, ewrap.Wrap(sentinel.ErrInvalidRequest, err.Error()))
		}

		results := svc.ComputeBatch(ctx, req.Requests)

		items := make([]batchItem, len(results))
		for i, res := range results {
			if res.Err != nil {
				items[i].Error = res.Err.Error()

				continue
			}

			items[i].Report = res.Report
		}

		return fiberCtx.JSON(fiber.Map{"results": items})
	}))

	if s.staticDir == "" {
		s.app.Get("/", status)

		return
	}

	s.app.Get("/*", static.New(s.staticDir))
}

// wrapAuth returns an auth-wrapped handler if authFunc provided.
func (s *HTTPServer) wrapAuth(handler fiber.Handler) fiber.Handler { //nolint:ireturn
	if s.authFunc == nil {
		return handler
	}

	return func(fiberCtx fiber.Ctx) error {
		authErr := s.authFunc(fiberCtx)
		if authErr != nil {
			return authErr
		}

		return handler(fiberCtx)
	}
}

// writeError maps service errors onto HTTP statuses.
func writeError(fiberCtx fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, stats.ErrEmptyInput),
		errors.Is(err, stats.ErrNonFiniteInput),
		errors.Is(err, sentinel.ErrInvalidRequest):
		code = fiber.StatusBadRequest
	case errors.Is(err, sentinel.ErrTimeoutOrCanceled):
		code = fiber.StatusServiceUnavailable
	}

	return fiberCtx.Status(code).JSON(fiber.Map{"error": err.Error()})
}
