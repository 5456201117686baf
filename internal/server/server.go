// Package server exposes the assessment pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/pipeline"
	"github.com/spigell/interview-readiness/internal/resume"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultListen          = ":8000"
	defaultShutdownTimeout = 30 * time.Second
	multipartMemory        = 32 << 20
	// Room for form fields and multipart framing on top of the file itself.
	multipartOverhead = 1 << 20
)

// Config holds server configuration.
type Config struct {
	Listen          string
	Provider        string
	MaxUploadBytes  int64
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
	// WriteTimeout bounds writing a response, generation included. Zero means no limit.
	WriteTimeout    time.Duration
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Generator   ai.Generator
	ExtractText func(data []byte) (string, error)
	Logger      *zap.Logger
}

// Server represents the HTTP server.
type Server struct {
	httpServer      *http.Server
	pipeline        *pipeline.Pipeline
	generator       ai.Generator
	extractText     func(data []byte) (string, error)
	logger          *zap.Logger
	provider        string
	maxUploadBytes  int64
	shutdownTimeout time.Duration
}

// New creates a new server instance.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		pipeline:        deps.Pipeline,
		generator:       deps.Generator,
		extractText:     deps.ExtractText,
		logger:          deps.Logger,
		provider:        cfg.Provider,
		maxUploadBytes:  cfg.MaxUploadBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.extractText == nil {
		s.extractText = resume.ExtractText
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	listen := cfg.Listen
	if listen == "" {
		listen = defaultListen
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /parse-pdf", s.handleParsePDF)
	mux.HandleFunc("GET /health", s.handleHealth)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.withRequestID(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("listen", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}
