package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/tickerpulse/api"
	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/llm"
	"github.com/seenimoa/tickerpulse/internal/payment"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/summary"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// newSource builds the configured headline source.
func newSource(cfg *config.Config) (datasource.HeadlineSource, error) {
	tmpl := cfg.News.FinvizURL
	if strings.EqualFold(cfg.News.Source, datasource.SourceYahoo) {
		tmpl = cfg.News.RSSURL
	}
	return datasource.New(cfg.News.Source, datasource.Options{
		URLTemplate:       tmpl,
		UserAgent:         cfg.News.UserAgent,
		MaxHeadlines:      cfg.News.MaxHeadlines,
		Timeout:           time.Duration(cfg.News.TimeoutSec) * time.Second,
		RequestsPerSecond: cfg.News.RequestsPerSecond,
	})
}

func newScorer(cfg *config.Config, logger zerolog.Logger) (sentiment.Scorer, error) {
	return sentiment.Select(sentiment.Options{
		Strategy:    sentiment.Strategy(cfg.Sentiment.Strategy),
		LexiconPath: cfg.Sentiment.LexiconPath,
		Logger:      logger,
	})
}

// newPipeline wires source and scorer. The scorer is chosen once here and
// kept for the life of the process.
func newPipeline(cfg *config.Config, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	sc, err := newScorer(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("source", src.Name()).Str("scorer", string(sc.Strategy())).Msg("pipeline ready")

	return pipeline.New(pipeline.Config{
		DefaultTickers:   utils.NormalizeTickers(cfg.Sentiment.DefaultTickers),
		BullishThreshold: cfg.Sentiment.BullishThreshold,
		BearishThreshold: cfg.Sentiment.BearishThreshold,
		TopNHeadlines:    cfg.News.MaxHeadlines,
	}, src, sc, logger), nil
}

func llmTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.LLM.TimeoutSec) * time.Second
}

func newSummarizer(cfg *config.Config, logger zerolog.Logger) *summary.Summarizer {
	client := summary.NewChatClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, llmTimeout(cfg))
	return summary.NewSummarizer(client, summary.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
}

// narratives summarizes each ticker from the headlines its run already
// fetched.
func narratives(ctx context.Context, sum *summary.Summarizer, d pipeline.Detail) map[string]string {
	out := make(map[string]string, len(d.Result.Data))
	for ticker, s := range d.Result.Data {
		s.Ticker = ticker
		tr := &models.TickerReport{
			Summary:   s,
			Headlines: d.Headlines[ticker],
			Timestamp: d.Result.Timestamp,
		}
		sum.SummarizeReport(ctx, tr)
		out[ticker] = tr.Narrative
	}
	return out
}

func newAdvisor(cfg *config.Config, logger zerolog.Logger) *summary.Advisor {
	client := summary.NewChatClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, llmTimeout(cfg))
	return summary.NewAdvisor(client, summary.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.AdviceTemperature,
		MaxTokens:   cfg.LLM.AdviceMaxTokens,
	}, logger)
}

// llmStatus checks the configured LLM endpoint with the API key.
func llmStatus(ctx context.Context, cfg *config.Config) string {
	c, err := llm.NewClient(cfg.LLM.APIKey, llm.WithBaseURL(cfg.LLM.BaseURL), llm.WithTimeout(5*time.Second))
	if err != nil {
		return "❌ " + err.Error()
	}
	if err := c.Ping(ctx); err != nil {
		return "❌ " + err.Error()
	}
	return "✅ reachable"
}

func newPayPal(cfg *config.Config) (*payment.Client, error) {
	return payment.NewClient(payment.Config{
		ClientID: cfg.PayPal.ClientID,
		Secret:   cfg.PayPal.Secret,
		Env:      cfg.PayPal.Env,
	})
}

// paymentService returns nil, not a typed nil, when PayPal is not configured.
func paymentService(cfg *config.Config) api.PaymentService {
	c, err := newPayPal(cfg)
	if err != nil {
		return nil
	}
	return c
}

// healthStatus reports readiness without running the pipeline or touching
// the network.
func healthStatus(cfg *config.Config) models.HealthStatus {
	lexOK := sentiment.LexiconAvailable(cfg.Sentiment.LexiconPath)
	scorer := sentiment.StrategyKeyword
	if lexOK && cfg.Sentiment.Strategy != string(sentiment.StrategyKeyword) {
		scorer = sentiment.StrategyLexicon
	}
	return models.HealthStatus{
		Status:           "ok",
		Scorer:           string(scorer),
		LexiconAvailable: lexOK,
		Version:          version,
	}
}
