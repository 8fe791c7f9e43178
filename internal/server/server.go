// Package server exposes the content report over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/db"
	"github.com/n0roo/content-locator/internal/report"
)

// BuildFunc produces a fresh report for one request.
type BuildFunc func(ctx context.Context) *report.Report

// StatsSource reports stored row counts.
type StatsSource interface {
	Stats(ctx context.Context) (*db.Stats, error)
}

// Config holds server configuration
type Config struct {
	Port     int
	SiteName string
	SiteURL  string
	DBPath   string
	DBType   string

	Build BuildFunc
	// Stats is optional; corpus-file scans have no database.
	Stats StatsSource
}

// Server represents the web server
type Server struct {
	config  Config
	logger  *zap.Logger
	handler http.Handler
	srv     *http.Server
	started time.Time
}

// NewServer creates a new server
func NewServer(config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:  config,
		logger:  logger,
		started: time.Now(),
	}
	s.handler = s.routes()
	s.srv = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/report", s.handleReport)
		r.Get("/report/{bucket}", s.handleBucket)
	})

	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured port and serves until Stop
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("포트 %d 열기 실패: %w", s.config.Port, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener. It returns nil after Stop.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("content locator API running",
		zap.String("addr", ln.Addr().String()),
		zap.String("site", s.config.SiteName))

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// corsMiddleware wraps a handler with CORS headers for all requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Run starts the server (convenience function)
func Run(config Config, logger *zap.Logger) error {
	return NewServer(config, logger).Start()
}
