package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/provider"
	"finboard/internal/resolver"
)

// Invalidator drops cached results for a period.
type Invalidator interface {
	Invalidate(ctx context.Context, key core.PeriodKey)
}

// Publisher announces a changed period to other processes.
type Publisher interface {
	PublishPeriodRefresh(ctx context.Context, msg *amqp.PeriodRefreshMessage) error
}

// Options wires the server to the rest of the application. Only Resolver
// is required.
type Options struct {
	Addr     string
	Resolver *resolver.Resolver
	// Writer is nil for read-only backends; PUT /api/periods then answers
	// 501.
	Writer      provider.PeriodWriter
	Invalidator Invalidator
	Publisher   Publisher
	Ping        func(ctx context.Context) error
	Logger      *applog.Logger
	CORSOrigins []string
	RateLimit   ratelimit.Config
	// RequestTimeout bounds provider reads per request.
	RequestTimeout time.Duration
}

// Server is the JSON API in front of the resolver.
type Server struct {
	http.Server
	resolver    *resolver.Resolver
	writer      provider.PeriodWriter
	invalidator Invalidator
	publisher   Publisher
	ping        func(ctx context.Context) error

	logger      *applog.Logger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	timeout     time.Duration
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 7 * time.Second
	}

	s := &Server{
		resolver:    opts.Resolver,
		writer:      opts.Writer,
		invalidator: opts.Invalidator,
		publisher:   opts.Publisher,
		ping:        opts.Ping,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		detector:    security.NewDetector(),
		timeout:     timeout,
		started:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        s.routes(opts.CORSOrigins),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader},
		MaxAge:         300,
	}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		}, http.MethodPost, http.MethodPut))

		r.Get("/periods/options", s.handlePeriodOptions)
		r.Post("/selection", s.handleSelection)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/charts/data", s.handleChartData)
		r.Get("/stats", s.handleStats)
		r.Put("/periods", s.handlePutPeriod)
	})

	return r
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down")
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
