// Package web serves the interview coach pages: intake, the live interview
// call and the feedback report.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
)

const defaultListenAddress = ":8080"

// Config holds HTTP server settings.
type Config struct {
	ListenAddress   string
	SessionTTL      time.Duration
	MaxSessions     int
	MaxUploadBytes  int64
	SecureCookies   bool
	WebhookToken    string
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the pages drive.
type Deps struct {
	Avatar    interview.AvatarService
	Coach     ai.Coach
	Interview interview.Config
	Logger    *zap.Logger
	Observer  metrics.Observer
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer prometheus.Gatherer
}

// Server is the interview coach HTTP server.
type Server struct {
	cfg        Config
	httpServer *http.Server
	tabs       *Tabs
	coach      ai.Coach
	pages      *pages
	logger     *zap.Logger
	gatherer   prometheus.Gatherer
	now        func() time.Time
}

// New wires the routes. It does not start listening.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Avatar == nil {
		return nil, errors.New("avatar service is required")
	}
	if deps.Coach == nil {
		return nil, errors.New("coach is required")
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}

	log := logger.WithFields(deps.Logger)
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	pages, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		coach:    deps.Coach,
		pages:    pages,
		logger:   log,
		gatherer: gatherer,
		now:      time.Now,
	}
	s.tabs = NewTabs(cfg.MaxSessions, cfg.SessionTTL, cfg.SecureCookies,
		newTabController(deps.Avatar, deps.Interview, log, deps.Observer), log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /upload", s.handleUploadPage)
	mux.HandleFunc("POST /upload", s.handleUpload)

	mux.HandleFunc("GET /interview", s.handleInterview)
	mux.HandleFunc("POST /interview/media", s.handleMedia)
	mux.HandleFunc("POST /interview/transcript", s.handleTranscript)
	mux.HandleFunc("POST /interview/end", s.handleEnd)
	mux.HandleFunc("POST /interview/teardown", s.handleTeardown)
	mux.HandleFunc("GET /interview/status", s.handleStatus)
	mux.HandleFunc("GET /interview/questions", s.handleQuestions)

	mux.HandleFunc("POST /webhooks/avatar", s.handleAvatarWebhook)

	mux.HandleFunc("GET /feedback", s.handleFeedback)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.withRecovery(s.withLogging(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// interview setup and feedback generation wait on remote providers
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Tabs exposes the tab session registry.
func (s *Server) Tabs() *Tabs {
	return s.tabs
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("address", s.cfg.ListenAddress))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and releases every tab's provider resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	err := s.httpServer.Shutdown(ctx)
	s.tabs.Close(ctx)

	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"status": "ok", "tabs": s.tabs.Len()})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode json response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
