// Package api provides the HTTP REST API consumed by the tickerpulse dashboard.
//
// It exposes per-ticker sentiment, single-ticker news reports with optional
// AI narratives, the investment assistant and PayPal checkout for the
// premium tier.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/payment"
	"github.com/seenimoa/tickerpulse/internal/summary"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// SentimentService runs the news-to-sentiment pipeline.
type SentimentService interface {
	Run(ctx context.Context, tickers []string) models.PipelineResult
	RunTicker(ctx context.Context, ticker string) models.PipelineResult
	Report(ctx context.Context, ticker string) (*models.TickerReport, error)
}

// PaymentService creates and captures checkout orders.
type PaymentService interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*payment.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*payment.Capture, error)
}

// Deps are the collaborators behind the handlers. Summarizer and Advisor
// default to placeholder-only instances; a nil Payments disables the
// payment routes.
type Deps struct {
	Sentiment  SentimentService
	Summarizer *summary.Summarizer
	Advisor    *summary.Advisor
	Payments   PaymentService
	Health     func() models.HealthStatus
	Logger     zerolog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	deps   Deps
	logger zerolog.Logger
	group  singleflight.Group
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Summarizer == nil {
		deps.Summarizer = summary.NewSummarizer(nil, summary.DefaultSummaryOptions(), deps.Logger)
	}
	if deps.Advisor == nil {
		deps.Advisor = summary.NewAdvisor(nil, summary.DefaultAdviceOptions(), deps.Logger)
	}
	if deps.Health == nil {
		deps.Health = func() models.HealthStatus { return models.HealthStatus{Status: "ok"} }
	}

	srv := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With().Str("component", "api").Logger(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when ctx
// is cancelled or the process receives SIGINT/SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// Browser view of the watch-list
	r.Get("/dashboard", s.handleDashboard)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Sentiment
		r.Get("/sentiment", s.handleSentiment)
		r.Get("/sentiment/{ticker}", s.handleSentimentTicker)
		r.Get("/report/{ticker}", s.handleReport)

		// Investment assistant
		r.Post("/chat", s.handleChat)

		// Premium checkout
		r.Post("/payments/orders", s.handleCreateOrder)
		r.Post("/payments/orders/{id}/capture", s.handleCaptureOrder)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request with the zerolog logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

// ============================================================
// Response helpers
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to write JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
