package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/presence-audit/internal/audit"
	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/preferences"
	"github.com/jonathan/presence-audit/internal/server/ratelimit"
)

//go:embed static/index.html
var staticFS embed.FS

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      chi.Router
	audits      *audit.Service
	prefs       preferences.Store
	catalog     *currency.Catalog
	limiter     *ratelimit.Limiter
	corsOrigins []string
	logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// RateLimit is the number of audits per minute per client; 0 disables limiting.
	RateLimit int
}

// New creates a new server instance
func New(cfg Config, audits *audit.Service, prefs preferences.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		audits:      audits,
		prefs:       prefs,
		catalog:     audits.Catalog(),
		limiter:     ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit)),
		corsOrigins: cfg.CORSOrigins,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(s.withCORS)
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Get("/currencies", s.handleCurrencies)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		r.Route("/audits", func(r chi.Router) {
			r.Get("/", s.handleListAudits)
			r.Post("/", s.handleCreateAudit)
			r.Post("/stream", s.handleCreateAuditStream)
			r.Get("/{id}", s.handleGetAudit)
			r.Get("/{id}/report.html", s.handleReportHTML)
			r.Get("/{id}/report.pdf", s.handleReportPDF)
		})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	defer s.limiter.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Close stops background workers without serving. Used by tests that only call Handler.
func (s *Server) Close() {
	s.limiter.Stop()
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes the error body for err and logs server-side failures.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.jsonResponse(w, status, errorBody(err))
}

// badRequest writes a 400 for malformed input that never reached the service.
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.jsonResponse(w, http.StatusBadRequest, ErrorBody{Error: CodeBadRequest, Message: message})
}
