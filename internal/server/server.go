package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interntrack/internal/config"
	"github.com/jonathan/interntrack/internal/db"
	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/ingestion"
	"github.com/jonathan/interntrack/internal/logging"
	"github.com/jonathan/interntrack/internal/server/middleware"
	"github.com/jonathan/interntrack/internal/server/ratelimit"
)

// APIName is reported by the health endpoint.
const APIName = "InternTrack API"

// shutdownTimeout bounds how long Start waits for in-flight requests.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          db.Store
	logger         *slog.Logger
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	authHandler    *AuthHandler
	appService     *ApplicationService
	enhancer       enhancer.Enhancer
	fetcher        ingestion.PostingFetcher
	corsOrigin     string
	maxUploadBytes int64
	now            func() time.Time
}

// Config holds the server's settings and collaborators.
type Config struct {
	Port  int
	Store db.Store
	// Logger defaults to a discarding logger.
	Logger         *slog.Logger
	JWT            *config.JWTConfig
	Password       *config.PasswordConfig
	Enhancer       enhancer.Enhancer
	// Fetcher resolves jobUrl; nil disables it.
	Fetcher ingestion.PostingFetcher
	// RateLimit nil means ratelimit.LoadConfig().
	RateLimit   *ratelimit.Config
	CORSOrigin  string
	MaxUploadMB int
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	if cfg.Password == nil {
		return nil, fmt.Errorf("password config is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = config.Defaults().MaxUploadMB
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = config.Defaults().CORSOrigin
	}
	if cfg.Enhancer.Logger == nil {
		cfg.Enhancer.Logger = cfg.Logger
	}

	s := &Server{
		store:          cfg.Store,
		logger:         cfg.Logger,
		rateLimiter:    ratelimit.NewLimiter(cfg.RateLimit),
		appService:     NewApplicationService(cfg.Store),
		enhancer:       cfg.Enhancer,
		fetcher:        cfg.Fetcher,
		corsOrigin:     cfg.CORSOrigin,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		now:            time.Now,
	}
	s.jwtService = NewJWTService(cfg.JWT)
	s.authHandler = NewAuthHandler(s, NewUserService(cfg.Store, cfg.Password), s.jwtService)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // job posting fetches and AI calls
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)

	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protected(h))
	}

	handle("GET /api/apps", s.handleListApplications)
	handle("POST /api/apps", s.handleCreateApplication)
	handle("GET /api/apps/stats", s.handleApplicationStats)
	handle("GET /api/apps/export.xlsx", s.handleExportApplications)
	handle("PUT /api/apps/{id}", s.handleUpdateApplication)
	handle("DELETE /api/apps/{id}", s.handleDeleteApplication)

	handle("POST /api/resume/enhance", s.handleEnhance)
	handle("POST /api/resume/enhance-pdf", s.handleEnhancePDF)
	handle("POST /api/resume/agent", s.handleEnhanceAgent)

	return s.withLogging(s.withCORS(s.withRateLimit(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.logger.Info("server stopped")
	return err
}

// Close stops the rate limiter and closes the store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("failed to close store", "error", err)
		}
	}
}

// withCORS adds CORS headers. Origin "*" reflects the caller's origin so credentials
// remain allowed.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.corsOrigin
		if origin == "*" {
			origin = r.Header.Get("Origin")
		}
		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{OK: true, Name: APIName})
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is ignored since there is no trusted proxy list.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// RateLimitResponse is the 429 body.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Limit      int    `json:"limit,omitempty"`
	ResetAt    string `json:"reset_at,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	resp := RateLimitResponse{
		Error: "Too many requests. Please try again later.",
		Limit: info.Limit,
	}
	if !info.ResetTime.IsZero() {
		resp.ResetAt = info.ResetTime.UTC().Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		// round up so clients never retry early
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		resp.RetryAfter = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"client", s.extractClientID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"limit", info.Limit,
	)
	s.jsonResponse(w, http.StatusTooManyRequests, resp)
}
