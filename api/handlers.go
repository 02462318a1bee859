package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/payment"
	"github.com/seenimoa/tickerpulse/internal/report"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// pipelineTimeout bounds a coalesced pipeline run, which outlives the
// request that started it.
const pipelineTimeout = 2 * time.Minute

// ============================================================
// Request types
// ============================================================

// ChatRequest is the body for POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
	Profile string `json:"profile" validate:"max=200"`
}

// CreateOrderRequest is the body for POST /api/v1/payments/orders.
// Amount defaults to the configured premium price.
type CreateOrderRequest struct {
	Amount   string `json:"amount"   validate:"omitempty,numeric"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.deps.Health()
	if h.MarketStatus == "" {
		now := utils.NowET()
		h.MarketStatus = utils.MarketStatus(now)
		h.TimeET = now.Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: h})
}

// handleSentiment serves GET /api/v1/sentiment?tickers=AAPL,MSFT.
// The pipeline result is returned as is, with status 200 even on failure;
// the success flag inside carries the outcome.
func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runQuery(r))
}

// handleDashboard renders the same result as an HTML page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.Render(&buf, report.FormatHTML, s.runQuery(r), report.Options{}); err != nil {
		s.logger.Error().Err(err).Msg("dashboard render failed")
		s.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// runQuery runs the pipeline for the ?tickers= list, or the default
// watch-list when it is absent.
func (s *Server) runQuery(r *http.Request) models.PipelineResult {
	tickers := utils.ParseTickers(r.URL.Query().Get("tickers"))
	key := "run:" + strings.Join(tickers, ",")
	return s.coalesce(r.Context(), key, func(ctx context.Context) models.PipelineResult {
		return s.deps.Sentiment.Run(ctx, tickers)
	})
}

func (s *Server) handleSentimentTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	res := s.coalesce(r.Context(), "run:"+ticker, func(ctx context.Context) models.PipelineResult {
		return s.deps.Sentiment.RunTicker(ctx, ticker)
	})
	s.writeJSON(w, http.StatusOK, res)
}

// coalesce shares one pipeline run between identical in-flight requests.
func (s *Server) coalesce(ctx context.Context, key string, run func(context.Context) models.PipelineResult) models.PipelineResult {
	ch := s.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pipelineTimeout)
		defer cancel()
		return run(runCtx), nil
	})
	select {
	case res := <-ch:
		return res.Val.(models.PipelineResult)
	case <-ctx.Done():
		return models.PipelineResult{Success: false, Error: ctx.Err().Error()}
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	withSummary, _ := strconv.ParseBool(r.URL.Query().Get("summary"))

	report, err := s.deps.Sentiment.Report(r.Context(), ticker)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, datasource.ErrEmptyTicker) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}
	if withSummary {
		s.deps.Summarizer.SummarizeReport(r.Context(), report)
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	answer := s.deps.Advisor.Advise(r.Context(), req.Message, req.Profile)
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"response": answer,
			"profile":  req.Profile,
		},
	})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Payments == nil {
		s.writeError(w, http.StatusServiceUnavailable, payment.ErrCredentialsMissing.Error())
		return
	}

	var req CreateOrderRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Amount == "" && s.cfg != nil {
		req.Amount = s.cfg.PayPal.PremiumPrice
	}
	if req.Currency == "" && s.cfg != nil {
		req.Currency = s.cfg.PayPal.Currency
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	order, err := s.deps.Payments.CreateOrder(r.Context(), amount, req.Currency)
	if err != nil {
		s.writePaymentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: order})
}

func (s *Server) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Payments == nil {
		s.writeError(w, http.StatusServiceUnavailable, payment.ErrCredentialsMissing.Error())
		return
	}

	capture, err := s.deps.Payments.CaptureOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writePaymentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: capture})
}

func (s *Server) writePaymentError(w http.ResponseWriter, err error) {
	var apiErr *payment.APIError
	switch {
	case errors.Is(err, payment.ErrInvalidAmount):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		s.logger.Warn().Err(err).Msg("paypal request failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeAndValidate reads a JSON body into req and checks its validate tags.
// An empty body decodes as the zero value.
// It writes the error response itself and reports whether to continue.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if msg := validateRequest(r.Context(), req); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}
