// Package server provides the HTTP API for editing messages.
//
//   - GET  /healthz       - Liveness probe
//   - POST /api/extract   - Parse an uploaded message and return its editable parts
//   - POST /api/rebuild   - Apply edits to an uploaded message and return the result
//
// Uploads are multipart forms with the message in the "eml" file field. Every
// response carries an X-Request-Id header.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zostay/emledit/internal/config"
	"github.com/zostay/emledit/translate"
)

// RequestIDHeader is the response header holding the request id.
const RequestIDHeader = "X-Request-Id"

// Server is the emledit HTTP server.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	translator *translate.Service
	httpSrv    *http.Server
}

// New returns a Server. The translate.Service may be nil, which turns off
// translated previews.
func New(cfg *config.Config, svc *translate.Service, logger *slog.Logger) *Server {
	s := &Server{
		config:     cfg,
		logger:     logger,
		translator: svc,
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.withRequestID(mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/rebuild", s.handleRebuild)
}

// ListenAndServe serves until the context is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "listen", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Middleware

type contextKey string

const loggerContextKey contextKey = "logger"

// statusRecorder remembers the status written to a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags the request with a new id, which is returned in the
// response and added to every log line for the request.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// loggerFrom returns the request logger.
func (s *Server) loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return s.logger
}

// Helpers

func (s *Server) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	s.jsonResponse(w, map[string]string{"error": message}, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
