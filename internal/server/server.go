package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/config"
	"github.com/jonathan/salon-copy/internal/db"
	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/metrics"
	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/server/middleware"
	"github.com/jonathan/salon-copy/internal/server/ratelimit"
	"github.com/jonathan/salon-copy/internal/types"
)

const maxBodyBytes = 1 << 20

// Runner executes one generation request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressCallback) (*pipeline.Result, error)
}

// RunStore reads recorded generation runs.
type RunStore interface {
	GetRun(ctx context.Context, id uuid.UUID) (*db.GenerationRun, error)
	ListRuns(ctx context.Context, limit int) ([]db.GenerationRun, error)
	Ping(ctx context.Context) error
}

// Options wires the server collaborators. Config, Pipeline and Registry are
// required; Runs and Metrics may be nil.
type Options struct {
	Config   *config.Config
	Pipeline Runner
	Registry *featured.Registry
	Runs     RunStore
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cfg         *config.Config
	pipeline    Runner
	registry    *featured.Registry
	runs        RunStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("featured registry is required")
	}

	s := &Server{
		cfg:      opts.Config,
		pipeline: opts.Pipeline,
		registry: opts.Registry,
		runs:     opts.Runs,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	rl := s.cfg.RateLimit
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.NewConfig(ratelimit.Settings{
		Enabled:        rl.Enabled,
		RequestsPerMin: rl.RequestsPerMin,
		Burst:          rl.Burst,
		GeneratePerMin: rl.GeneratePerMin,
		GenerateBurst:  rl.GenerateBurst,
	}))

	if s.cfg.Admin.Enabled() {
		s.jwtService = NewJWTService(s.cfg.Admin.JWTSecret, s.cfg.Admin.TokenTTL)
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate/stream", s.handleGenerateStream)
	mux.HandleFunc("GET /api/featured-keywords", s.handleFeaturedKeywords)
	mux.HandleFunc("POST /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/pipeline/steps", s.handleListSteps)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Admin endpoints exist only when a password hash and a signing secret are configured
	if s.jwtService != nil {
		mux.HandleFunc("POST /api/admin/token", s.handleAdminToken)
		requireAdmin := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
		mux.Handle("POST /api/featured-keywords/reload", requireAdmin(http.HandlerFunc(s.handleReloadFeatured)))
	}

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.handler = middleware.RequestID(s.withLogging(s.withCORS(s.withRateLimit(mux))))
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // must exceed the model timeout
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers. An empty origin list allows any origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origins := s.cfg.Server.CORSOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(origins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request and records HTTP metrics. It must sit
// inside RequestID and outside the mux so the matched pattern is visible.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}

		s.logger.Info("request completed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// statusRecorder captures the response status while passing flushes
// through for event streams.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// handleHealth returns server health status including the registry state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.registry.Health()
	resp := map[string]any{
		"status":            "ok",
		"featured_keywords": health,
	}
	if !health.IsAvailable {
		resp["status"] = "degraded"
	}
	if s.runs != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.runs.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes the shared error envelope.
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, types.ErrorResponse{
		Success: false,
		Error:   types.ErrorBody{Message: message, Code: code},
		Status:  status,
	})
}

// writeError maps err onto the error envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), ErrorCode(err), ErrorMessage(err))
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
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

// rateLimitResponse writes a 429 Too Many Requests response in the shared envelope.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.errorResponse(w, http.StatusTooManyRequests, CodeRateLimited, msgRateLimited)
}

// queryLimit parses ?limit= within [1, max], defaulting to def.
func queryLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, &ErrValidation{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", maxLimit)}
	}
	return n, nil
}
