// Package api — configuration endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/tickerpulse/internal/config"
)

// ConfigView is the public part of the running configuration. Secrets are
// never included; their status is served by /config/keys.
type ConfigView struct {
	News struct {
		Source       string `json:"source"`
		MaxHeadlines int    `json:"max_headlines"`
	} `json:"news"`
	Sentiment struct {
		Strategy         string   `json:"strategy"`
		BullishThreshold float64  `json:"bullish_threshold"`
		BearishThreshold float64  `json:"bearish_threshold"`
		DefaultTickers   []string `json:"default_tickers"`
	} `json:"sentiment"`
	LLM struct {
		BaseURL string `json:"base_url"`
		Model   string `json:"model"`
	} `json:"llm"`
	PayPal struct {
		Env          string `json:"env"`
		PremiumPrice string `json:"premium_price"`
		Currency     string `json:"currency"`
	} `json:"paypal"`
}

func newConfigView(cfg *config.Config) ConfigView {
	var v ConfigView
	v.News.Source = cfg.News.Source
	v.News.MaxHeadlines = cfg.News.MaxHeadlines
	v.Sentiment.Strategy = cfg.Sentiment.Strategy
	v.Sentiment.BullishThreshold = cfg.Sentiment.BullishThreshold
	v.Sentiment.BearishThreshold = cfg.Sentiment.BearishThreshold
	v.Sentiment.DefaultTickers = cfg.Sentiment.DefaultTickers
	v.LLM.BaseURL = cfg.LLM.BaseURL
	v.LLM.Model = cfg.LLM.Model
	v.PayPal.Env = cfg.PayPal.Env
	v.PayPal.PremiumPrice = cfg.PayPal.PremiumPrice
	v.PayPal.Currency = cfg.PayPal.Currency
	return v
}

// handleGetConfig returns the public running configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newConfigView(s.cfg)})
}

// handleGetConfigKeys returns the masked status of all secrets.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: config.CheckAPIKeys(s.cfg)})
}
