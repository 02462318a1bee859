package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/payment"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/summary"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// fakeSentiment returns canned results. When block is set, Run waits on it
// after signalling entered.
type fakeSentiment struct {
	result  models.PipelineResult
	report  *models.TickerReport
	err     error
	calls   atomic.Int32
	block   chan struct{}
	entered chan struct{}
	tickers []string
}

func (f *fakeSentiment) Run(ctx context.Context, tickers []string) models.PipelineResult {
	f.calls.Add(1)
	f.tickers = tickers
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	return f.result
}

func (f *fakeSentiment) RunTicker(ctx context.Context, ticker string) models.PipelineResult {
	return f.Run(ctx, []string{ticker})
}

func (f *fakeSentiment) Report(ctx context.Context, ticker string) (*models.TickerReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakePayments struct {
	amount   decimal.Decimal
	currency string
	err      error
}

func (f *fakePayments) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*payment.Order, error) {
	f.amount, f.currency = amount, currency
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Order{ID: "ORDER-1", Status: "CREATED", ApprovalLink: "https://paypal.test/approve"}, nil
}

func (f *fakePayments) CaptureOrder(ctx context.Context, orderID string) (*payment.Capture, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Capture{ID: orderID, Status: "COMPLETED"}, nil
}

func testServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Sentiment == nil {
		deps.Sentiment = &fakeSentiment{result: models.PipelineResult{Success: true}}
	}
	deps.Logger = zerolog.Nop()
	return NewServer(config.Default(), deps)
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) models.PipelineResult {
	t.Helper()
	var res models.PipelineResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return res
}

// headlineSource serves fixed titles per ticker.
type headlineSource map[string][]string

func (headlineSource) Name() string { return "test" }

func (h headlineSource) Fetch(_ context.Context, ticker string) ([]models.Headline, error) {
	titles, ok := h[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	out := make([]models.Headline, 0, len(titles))
	for _, title := range titles {
		out = append(out, models.Headline{Ticker: ticker, Title: title, DateText: "Jan-02-24", TimeText: "09:30AM"})
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, Deps{Health: func() models.HealthStatus {
		return models.HealthStatus{Status: "ok", Scorer: "keyword"}
	}})

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status got %d, want %d", path, rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type got %q", path, ct)
		}

		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]any)
		if !resp.Success || !ok {
			t.Fatalf("%s: unexpected response %+v", path, resp)
		}
		if data["status"] != "ok" || data["scorer"] != "keyword" {
			t.Errorf("%s: unexpected data %v", path, data)
		}
		if data["market_status"] == "" || data["market_status"] == nil {
			t.Errorf("%s: missing market_status", path)
		}
	}
}

func TestHandleHealthDefault(t *testing.T) {
	rec := do(t, testServer(t, Deps{}), http.MethodGet, "/health", "")
	resp := decodeResponse(t, rec)
	if data, _ := resp.Data.(map[string]any); data["status"] != "ok" {
		t.Errorf("unexpected health %+v", resp)
	}
}

// ════════════════════════════════════════════════════════════════════
// Sentiment
// ════════════════════════════════════════════════════════════════════

func TestHandleSentimentEndToEnd(t *testing.T) {
	src := headlineSource{
		"AAPL": {"Apple stock surges", "Apple beats record"},
		"TSLA": {"Tesla plunges"},
	}
	p := pipeline.New(pipeline.DefaultConfig(), src, sentiment.NewKeywordScorer(), zerolog.Nop())
	srv := testServer(t, Deps{Sentiment: p})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment?tickers=aapl,$tsla,MSFT", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	res := decodeResult(t, rec)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if len(res.Data) != 3 {
		t.Fatalf("expected 3 tickers, got %v", res.Data)
	}

	tests := []struct {
		ticker string
		label  models.SentimentLabel
		score  float64
		count  int
	}{
		{"AAPL", models.LabelBullish, 0.25, 2},
		{"TSLA", models.LabelBearish, -0.2, 1},
		{"MSFT", models.LabelNoData, 0, 0},
	}
	for _, tt := range tests {
		got := res.Data[tt.ticker]
		if got.Label != tt.label || got.Compound != tt.score || got.HeadlineCount != tt.count {
			t.Errorf("%s: got %+v", tt.ticker, got)
		}
	}
}

func TestHandleDashboard(t *testing.T) {
	fake := &fakeSentiment{result: models.PipelineResult{
		Success: true,
		Data:    map[string]models.TickerSummary{"AAPL": {Label: models.LabelBullish, Compound: 0.3, HeadlineCount: 2}},
	}}
	rec := do(t, testServer(t, Deps{Sentiment: fake}), http.MethodGet, "/dashboard?tickers=aapl", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "AAPL") || !strings.Contains(body, "Bullish") {
		t.Errorf("dashboard missing ticker row")
	}
	if len(fake.tickers) != 1 || fake.tickers[0] != "AAPL" {
		t.Errorf("unexpected tickers %v", fake.tickers)
	}
}

func TestHandleSentimentDefaultTickers(t *testing.T) {
	fake := &fakeSentiment{result: models.PipelineResult{Success: true}}
	srv := testServer(t, Deps{Sentiment: fake})

	do(t, srv, http.MethodGet, "/api/v1/sentiment", "")
	if len(fake.tickers) != 0 {
		t.Errorf("expected empty ticker list, got %v", fake.tickers)
	}
}

func TestHandleSentimentFailureKeepsStatusOK(t *testing.T) {
	fake := &fakeSentiment{result: models.PipelineResult{Success: false, Error: "boom"}}
	rec := do(t, testServer(t, Deps{Sentiment: fake}), http.MethodGet, "/api/v1/sentiment/aapl", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	res := decodeResult(t, rec)
	if res.Success || res.Error != "boom" || res.Data != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if fake.tickers[0] != "AAPL" {
		t.Errorf("ticker not uppercased: %v", fake.tickers)
	}
}

func TestHandleSentimentCoalescesConcurrentRequests(t *testing.T) {
	fake := &fakeSentiment{
		result:  models.PipelineResult{Success: true, Timestamp: "2024-01-02T15:04:05Z"},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	srv := testServer(t, Deps{Sentiment: fake})

	var wg sync.WaitGroup
	codes := make([]int, 2)
	request := func(i int) {
		defer wg.Done()
		codes[i] = do(t, srv, http.MethodGet, "/api/v1/sentiment?tickers=AAPL", "").Code
	}

	wg.Add(1)
	go request(0)
	<-fake.entered

	wg.Add(1)
	go request(1)
	time.Sleep(50 * time.Millisecond)
	close(fake.block)
	wg.Wait()

	if n := fake.calls.Load(); n != 1 {
		t.Errorf("expected 1 pipeline run, got %d", n)
	}
	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d: status %d", i, c)
		}
	}
}

func TestHandleSentimentClientGone(t *testing.T) {
	fake := &fakeSentiment{
		result:  models.PipelineResult{Success: true},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	defer close(fake.block)
	srv := testServer(t, Deps{Sentiment: fake})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment?tickers=AAPL", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	go func() {
		<-fake.entered
		cancel()
	}()
	srv.Router().ServeHTTP(rec, req)

	res := decodeResult(t, rec)
	if res.Success || res.Error == "" {
		t.Errorf("expected failure after cancellation, got %+v", res)
	}
}

// ════════════════════════════════════════════════════════════════════
// Report
// ════════════════════════════════════════════════════════════════════

func TestHandleReport(t *testing.T) {
	report := &models.TickerReport{
		Summary:   models.TickerSummary{Ticker: "AAPL", Label: models.LabelBullish, Compound: 0.3, HeadlineCount: 1},
		Headlines: []models.ScoredHeadline{{Headline: models.Headline{Ticker: "AAPL", Title: "Apple beats"}}},
	}

	tests := []struct {
		name          string
		query         string
		wantNarrative string
	}{
		{"without summary", "", ""},
		{"with summary", "?summary=true", summary.SummaryUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *report
			srv := testServer(t, Deps{Sentiment: &fakeSentiment{report: &r}})

			rec := do(t, srv, http.MethodGet, "/api/v1/report/aapl"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			var body struct {
				Success bool                `json:"success"`
				Data    models.TickerReport `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if !body.Success || body.Data.Summary.Label != models.LabelBullish || len(body.Data.Headlines) != 1 {
				t.Errorf("unexpected report %+v", body)
			}
			if body.Data.Narrative != tt.wantNarrative {
				t.Errorf("narrative: got %q, want %q", body.Data.Narrative, tt.wantNarrative)
			}
		})
	}
}

func TestHandleReportErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty ticker", datasource.ErrEmptyTicker, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, Deps{Sentiment: &fakeSentiment{err: tt.err}})
			rec := do(t, srv, http.MethodGet, "/api/v1/report/AAPL", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error != tt.err.Error() {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Chat
// ════════════════════════════════════════════════════════════════════

func TestHandleChatValidation(t *testing.T) {
	srv := testServer(t, Deps{})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid json", "{not json", "invalid request body"},
		{"empty body", "", "message is required"},
		{"missing message", `{"profile":"Growth"}`, "message is required"},
		{"long profile", `{"message":"hi","profile":"` + strings.Repeat("x", 201) + `"}`, "profile must be at most 200 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/v1/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Error != tt.wantErr {
				t.Errorf("error: got %q, want %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestHandleChat(t *testing.T) {
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c1","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"Diversify."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":2,"total_tokens":12}}`))
	}))
	defer llmSrv.Close()

	client := summary.NewChatClient("sk-test", llmSrv.URL, "m", time.Second)
	advisor := summary.NewAdvisor(client, summary.DefaultAdviceOptions(), zerolog.Nop())
	srv := testServer(t, Deps{Advisor: advisor})

	rec := do(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"What should I buy?","profile":"Value Investing"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	data, _ := decodeResponse(t, rec).Data.(map[string]any)
	if data["response"] != "Diversify." || data["profile"] != "Value Investing" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestHandleChatWithoutKey(t *testing.T) {
	rec := do(t, testServer(t, Deps{}), http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)
	data, _ := decodeResponse(t, rec).Data.(map[string]any)
	if data["response"] != summary.AdviceUnavailable {
		t.Errorf("unexpected response %v", data["response"])
	}
}

// ════════════════════════════════════════════════════════════════════
// Payments
// ════════════════════════════════════════════════════════════════════

func TestHandleCreateOrderDisabled(t *testing.T) {
	srv := testServer(t, Deps{})
	for _, path := range []string{"/api/v1/payments/orders", "/api/v1/payments/orders/X/capture"} {
		rec := do(t, srv, http.MethodPost, path, "{}")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status got %d, want 503", path, rec.Code)
		}
	}
}

func TestHandleCreateOrder(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		wantStatus   int
		wantAmount   string
		wantCurrency string
	}{
		{"defaults", "{}", nil, http.StatusCreated, "9.99", "USD"},
		{"explicit", `{"amount":"19.5","currency":"EUR"}`, nil, http.StatusCreated, "19.5", "EUR"},
		{"non-numeric amount", `{"amount":"abc"}`, nil, http.StatusBadRequest, "", ""},
		{"bad currency", `{"currency":"EURO"}`, nil, http.StatusBadRequest, "", ""},
		{"rejected amount", `{"amount":"0"}`, payment.ErrInvalidAmount, http.StatusBadRequest, "0", "USD"},
		{"paypal error", "{}", &payment.APIError{Op: "create order", StatusCode: 400, Body: "{}"}, http.StatusBadGateway, "9.99", "USD"},
		{"network error", "{}", errors.New("dial tcp: refused"), http.StatusInternalServerError, "9.99", "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pay := &fakePayments{err: tt.err}
			srv := testServer(t, Deps{Payments: pay})

			rec := do(t, srv, http.MethodPost, "/api/v1/payments/orders", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantAmount != "" && !pay.amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Errorf("amount: got %s, want %s", pay.amount, tt.wantAmount)
			}
			if pay.currency != tt.wantCurrency {
				t.Errorf("currency: got %q, want %q", pay.currency, tt.wantCurrency)
			}
		})
	}
}

func TestHandleCreateOrderResponse(t *testing.T) {
	srv := testServer(t, Deps{Payments: &fakePayments{}})
	rec := do(t, srv, http.MethodPost, "/api/v1/payments/orders", "{}")

	data, _ := decodeResponse(t, rec).Data.(map[string]any)
	if data["order_id"] != "ORDER-1" || data["approval_link"] != "https://paypal.test/approve" {
		t.Errorf("unexpected order %v", data)
	}
}

func TestHandleCaptureOrder(t *testing.T) {
	srv := testServer(t, Deps{Payments: &fakePayments{}})
	rec := do(t, srv, http.MethodPost, "/api/v1/payments/orders/ORDER-1/capture", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	data, _ := decodeResponse(t, rec).Data.(map[string]any)
	if data["status"] != "COMPLETED" {
		t.Errorf("unexpected capture %v", data)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config
// ════════════════════════════════════════════════════════════════════

func TestHandleGetConfigHidesSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-secret-value-123"
	cfg.PayPal.Secret = "paypal-secret-456"
	srv := NewServer(cfg, Deps{Sentiment: &fakeSentiment{}, Logger: zerolog.Nop()})

	rec := do(t, srv, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, secret := range []string{cfg.LLM.APIKey, cfg.PayPal.Secret} {
		if strings.Contains(body, secret) {
			t.Errorf("config response leaks %q", secret)
		}
	}
	if !strings.Contains(body, `"strategy":"auto"`) {
		t.Errorf("missing sentiment strategy in %s", body)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/config/keys", "")
	var keys struct {
		Data []config.KeyStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&keys); err != nil {
		t.Fatal(err)
	}
	if len(keys.Data) != 3 || keys.Data[0].Masked != "sk-...123" || !keys.Data[0].IsSet {
		t.Errorf("unexpected key status %+v", keys.Data)
	}
}

func TestHandleGetConfigNotLoaded(t *testing.T) {
	srv := NewServer(nil, Deps{Sentiment: &fakeSentiment{}, Logger: zerolog.Nop()})
	rec := do(t, srv, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// writeJSON / writeError
// ════════════════════════════════════════════════════════════════════

func TestWriteError(t *testing.T) {
	srv := testServer(t, Deps{})
	rec := httptest.NewRecorder()
	srv.writeError(rec, http.StatusNotFound, "not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error != "not found" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, testServer(t, Deps{}), http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
