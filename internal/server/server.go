// Package server exposes the aggregated collector documents over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/metrics"
	"github.com/HerbHall/sysstat/internal/registry"
	"github.com/HerbHall/sysstat/internal/version"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit is the sustained request rate per second; 0 disables limiting.
	RateLimit float64
	RateBurst int

	// PluginConfig is shared read-only by every request.
	PluginConfig plugin.ConfigValue

	// Metrics may be nil. Gatherer, when set, is served at /metrics.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server is the sysstat HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	aggregator *registry.Aggregator
	opts       Options
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a Server serving the collectors in reg.
func New(opts Options, reg *registry.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		registry:   reg,
		aggregator: registry.NewAggregator(reg, logger.Named("aggregator"), opts.Metrics),
		opts:       opts,
		logger:     logger,
		mux:        mux,
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleStats)
	s.mux.HandleFunc("GET /test", s.handleTest)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/collectors", s.handleCollectors)
	if s.opts.Gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.mux.HandleFunc("/", s.handleFallback)
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = rateLimit(h, s.opts.RateLimit, s.opts.RateBurst)
	h = recoverer(h, s.logger)
	h = accessLog(h, s.logger, s.opts.Metrics)
	h = requestID(h)
	return h
}

// Serve accepts connections on l. It blocks until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", l.Addr().String()))
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleStats returns every collector's document for this request's options.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseStatsConfig(r.URL.Query(), s.opts.PluginConfig)
	if err != nil {
		BadRequest(w, err.Error(), r.URL.RequestURI())
		return
	}

	resp := s.aggregator.Collect(r.Context(), cfg)
	writeJSON(w, resp)
}

// handleTest is a plain liveness check.
func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("test"))
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"service": "sysstat",
		"version": version.Map(),
	})
}

// handleCollectors returns the list of registered collectors.
func (s *Server) handleCollectors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.registry.Infos())
}

// handleFallback answers every request no route matched.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead && s.isRoute(r.URL.Path) {
		w.Header().Set("Allow", "GET, HEAD")
		MethodNotAllowed(w, r.Method+" is not supported", r.URL.Path)
		return
	}
	NotFound(w, "no such endpoint", r.URL.Path)
}

func (s *Server) isRoute(path string) bool {
	switch path {
	case "/", "/test", "/api/v1/health", "/api/v1/collectors":
		return true
	case "/metrics":
		return s.opts.Gatherer != nil
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Sysstat-Version", version.Short())
	_ = json.NewEncoder(w).Encode(v)
}
