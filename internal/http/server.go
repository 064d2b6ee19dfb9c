// Package http serves the JSON API over the record gateways, the dashboard
// and the auth service.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/form"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readyTimeout      = 3 * time.Second

	maxBodyBytes = 1 << 20
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires a Server. Gateways, Dashboard and Auth are required.
type Options struct {
	Addr      string
	Gateways  *services.Gateways
	Dashboard *services.Dashboard
	Auth      *auth.Service
	Store     Pinger
	Schemas   *form.Schemas // nil uses the built-in schemas

	RateLimitPerMinute int
	// SecureCookies marks the session cookie Secure, for TLS deployments.
	SecureCookies bool
	Logger        *log.Logger
}

type Server struct {
	http.Server

	gateways  *services.Gateways
	dashboard *services.Dashboard
	auth      *auth.Service
	store     Pinger
	schemas   form.Schemas
	secure    bool
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	schemas := form.DefaultSchemas()
	if opts.Schemas != nil {
		schemas = *opts.Schemas
	}

	s := &Server{
		gateways:  opts.Gateways,
		dashboard: opts.Dashboard,
		auth:      opts.Auth,
		store:     opts.Store,
		schemas:   schemas,
		secure:    opts.SecureCookies,
		logger:    logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector:  security.NewDetector(logger),
		startedAt: time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.Handle("GET /api/auth/session", s.requireSession(http.HandlerFunc(s.handleSession)))

	mux.HandleFunc("GET /api/forms/{type}", s.handleFormSchema)

	registerRecords(mux, s, "transactions", s.gateways.Transactions, s.schemas.Transaction, true)
	registerRecords(mux, s, "budgets", s.gateways.Budgets, s.schemas.Budget, true)
	registerRecords(mux, s, "notes", s.gateways.Notes, s.schemas.Note, false)
	registerRecords(mux, s, "assets", s.gateways.Assets, s.schemas.Asset, false)

	mux.Handle("GET /api/analytics/budget-comparison", s.requireSession(http.HandlerFunc(s.handleBudgetComparison)))
	mux.Handle("GET /api/analytics/budget-total", s.requireSession(http.HandlerFunc(s.handleBudgetTotal)))
	mux.Handle("GET /api/analytics/methods", s.requireSession(http.HandlerFunc(s.handleMethods)))
	mux.Handle("GET /api/analytics/yearly", s.requireSession(http.HandlerFunc(s.handleYearly)))
	mux.Handle("GET /api/analytics/monthly", s.requireSession(http.HandlerFunc(s.handleMonthly)))
	mux.Handle("GET /api/analytics/assets-total", s.requireSession(http.HandlerFunc(s.handleAssetsTotal)))
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return auth.RequireSession(s.auth, func(w http.ResponseWriter, r *http.Request, err error) {
		ErrorResponse(http.StatusUnauthorized, auth.Message(err)).Write(w)
	})(next)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		"method", r.Method,
		"path", r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops the limiter cleanup and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
