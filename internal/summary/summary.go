// Package summary produces AI-written narratives on top of the sentiment
// results: a per-ticker news summary and a free-form investment assistant.
//
// Neither generator returns an error. A missing API key or a failed call
// degrades to a fixed placeholder text so the caller can always render
// something.
package summary

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/tickerpulse/internal/llm"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// Placeholder texts.
const (
	SummaryUnavailable = "AI analysis not available - API key not configured"
	SummaryErrorPrefix = "Error generating AI analysis: "
	AdviceUnavailable  = "Investment advice not available - API key not configured"
	AdviceErrorPrefix  = "Error generating investment advice: "
)

// Options configures one kind of generation request.
type Options struct {
	Model       string // empty = client default
	Temperature float64
	MaxTokens   int
}

// DefaultSummaryOptions returns the settings used for news summaries.
func DefaultSummaryOptions() Options {
	return Options{Temperature: 0.3, MaxTokens: 500}
}

// DefaultAdviceOptions returns the settings used for investment advice.
func DefaultAdviceOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 800}
}

func (o Options) chatOptions() *llm.ChatOptions {
	return &llm.ChatOptions{Model: o.Model, Temperature: o.Temperature, MaxTokens: o.MaxTokens}
}

// NewChatClient returns an LLM client, or nil when apiKey is empty so that
// the generators fall back to their placeholders.
func NewChatClient(apiKey, baseURL, model string, timeout time.Duration) llm.ChatClient {
	c, err := llm.NewClient(apiKey, llm.WithBaseURL(baseURL), llm.WithModel(model), llm.WithTimeout(timeout))
	if err != nil {
		return nil
	}
	return c
}

// Summarizer writes a short narrative about a ticker's recent headlines.
type Summarizer struct {
	client llm.ChatClient
	opts   Options
	logger zerolog.Logger
}

// NewSummarizer creates a summarizer. client may be nil.
func NewSummarizer(client llm.ChatClient, opts Options, logger zerolog.Logger) *Summarizer {
	return &Summarizer{client: client, opts: opts, logger: logger.With().Str("component", "summary").Logger()}
}

// Available reports whether a client is configured.
func (s *Summarizer) Available() bool { return s.client != nil }

// Summarize returns the narrative for ticker, built from up to five scored
// headlines and the aggregate compound score.
func (s *Summarizer) Summarize(ctx context.Context, ticker string, headlines []models.ScoredHeadline, compound float64) string {
	if s.client == nil {
		return SummaryUnavailable
	}
	prompt := SummaryPrompt(ticker, headlines, compound)
	resp, err := s.client.Chat(ctx, []llm.Message{llm.UserMessage(prompt)}, s.opts.chatOptions())
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("summary generation failed")
		return SummaryErrorPrefix + err.Error()
	}
	s.logger.Debug().Str("ticker", ticker).Int("tokens", resp.Usage.TotalTokens).Msg("summary generated")
	return resp.Content
}

// SummarizeReport fills report.Narrative from its headlines and summary.
func (s *Summarizer) SummarizeReport(ctx context.Context, report *models.TickerReport) {
	report.Narrative = s.Summarize(ctx, report.Summary.Ticker, report.Headlines, report.Summary.Compound)
}

// Advisor answers free-form investment questions.
type Advisor struct {
	client llm.ChatClient
	opts   Options
	logger zerolog.Logger
}

// NewAdvisor creates an advisor. client may be nil.
func NewAdvisor(client llm.ChatClient, opts Options, logger zerolog.Logger) *Advisor {
	return &Advisor{client: client, opts: opts, logger: logger.With().Str("component", "advisor").Logger()}
}

// Advise answers question for an optional investment profile
// (e.g. "Value Investing").
func (a *Advisor) Advise(ctx context.Context, question, profile string) string {
	if a.client == nil {
		return AdviceUnavailable
	}
	prompt := AdvicePrompt(question, profile)
	resp, err := a.client.Chat(ctx, []llm.Message{llm.UserMessage(prompt)}, a.opts.chatOptions())
	if err != nil {
		a.logger.Warn().Err(err).Msg("advice generation failed")
		return AdviceErrorPrefix + err.Error()
	}
	return resp.Content
}
