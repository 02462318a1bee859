// Package pipeline runs the news-to-sentiment flow for a watch-list:
// fetch headlines, score them, group by ticker and classify.
//
// A run is sequential and keeps no state between calls; every call
// recomputes from fresh headlines.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultTickers is the watch-list used when a run names no tickers.
var DefaultTickers = []string{"AMZN", "TSLA", "AAPL", "MSFT"}

// Config holds run parameters.
type Config struct {
	DefaultTickers   []string
	BullishThreshold float64
	BearishThreshold float64
	TopNHeadlines    int
}

// DefaultConfig returns the standard watch-list, ±0.05 thresholds and 10
// headlines per ticker.
func DefaultConfig() Config {
	th := sentiment.DefaultThresholds()
	return Config{
		DefaultTickers:   append([]string(nil), DefaultTickers...),
		BullishThreshold: th.Bullish,
		BearishThreshold: th.Bearish,
		TopNHeadlines:    datasource.DefaultMaxHeadlines,
	}
}

// Pipeline wires a headline source to a scorer.
type Pipeline struct {
	cfg    Config
	source datasource.HeadlineSource
	scorer sentiment.Scorer
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a pipeline. The scorer is bound for the pipeline's lifetime.
func New(cfg Config, source datasource.HeadlineSource, scorer sentiment.Scorer, logger zerolog.Logger) *Pipeline {
	if len(cfg.DefaultTickers) == 0 {
		cfg.DefaultTickers = append([]string(nil), DefaultTickers...)
	}
	return &Pipeline{
		cfg:    cfg,
		source: source,
		scorer: scorer,
		logger: logger.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
}

// Scorer returns the scoring strategy bound to the pipeline.
func (p *Pipeline) Scorer() sentiment.Scorer { return p.scorer }

func (p *Pipeline) thresholds() sentiment.Thresholds {
	return sentiment.Thresholds{Bullish: p.cfg.BullishThreshold, Bearish: p.cfg.BearishThreshold}
}

// Detail is a run result together with the scored headlines behind each
// summary, keyed by ticker.
type Detail struct {
	Result    models.PipelineResult
	Headlines map[string][]models.ScoredHeadline
}

// Run fetches, scores and aggregates headlines for tickers, or for the
// default watch-list when tickers is empty. A ticker whose fetch fails is
// reported as "No data". Any other failure, including a panic or a
// cancelled context, yields Success=false with no partial data.
func (p *Pipeline) Run(ctx context.Context, tickers []string) models.PipelineResult {
	return p.RunDetail(ctx, tickers).Result
}

// RunTicker runs the pipeline for a single ticker, uppercased.
func (p *Pipeline) RunTicker(ctx context.Context, ticker string) models.PipelineResult {
	return p.RunTickerDetail(ctx, ticker).Result
}

// RunTickerDetail is RunTicker keeping the scored headlines.
func (p *Pipeline) RunTickerDetail(ctx context.Context, ticker string) Detail {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return Detail{Result: failure(datasource.ErrEmptyTicker)}
	}
	return p.RunDetail(ctx, []string{t})
}

// RunDetail is Run keeping the scored headlines, so callers that need both
// the aggregate and its inputs fetch each ticker once.
func (p *Pipeline) RunDetail(ctx context.Context, tickers []string) (detail Detail) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("pipeline run aborted")
			detail = Detail{Result: failure(fmt.Errorf("internal error: %v", r))}
		}
	}()

	if len(tickers) == 0 {
		tickers = p.cfg.DefaultTickers
	}

	scored, err := p.collect(ctx, tickers)
	if err != nil {
		p.logger.Error().Err(err).Strs("tickers", tickers).Msg("pipeline run failed")
		return Detail{Result: failure(err)}
	}

	data := sentiment.Aggregate(scored, tickers, p.thresholds())
	p.logger.Info().
		Int("tickers", len(tickers)).
		Int("headlines", len(scored)).
		Str("scorer", string(p.scorer.Strategy())).
		Msg("pipeline run complete")

	byTicker := make(map[string][]models.ScoredHeadline, len(data))
	for _, sh := range scored {
		if _, ok := data[sh.Ticker]; ok {
			byTicker[sh.Ticker] = append(byTicker[sh.Ticker], sh)
		}
	}

	return Detail{
		Result: models.PipelineResult{
			Success:   true,
			Timestamp: p.now().Format(time.RFC3339),
			Data:      data,
		},
		Headlines: byTicker,
	}
}

// Report returns the single-ticker detail view: the aggregate summary and
// the scored headlines behind it.
func (p *Pipeline) Report(ctx context.Context, ticker string) (report *models.TickerReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Str("ticker", ticker).Msg("report aborted")
			report, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	t := utils.NormalizeTicker(ticker)
	if t == "" {
		return nil, datasource.ErrEmptyTicker
	}

	scored, err := p.collect(ctx, []string{t})
	if err != nil {
		return nil, err
	}
	summary := sentiment.Aggregate(scored, []string{t}, p.thresholds())[t]
	return &models.TickerReport{
		Summary:   summary,
		Headlines: scored,
		Timestamp: p.now().Format(time.RFC3339),
	}, nil
}

// collect fetches each ticker in order and scores the flattened headlines.
// Fetch errors are logged and count as zero headlines; only context
// cancellation aborts the run.
func (p *Pipeline) collect(ctx context.Context, tickers []string) ([]models.ScoredHeadline, error) {
	var all []models.Headline
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hs, err := p.source.Fetch(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.Warn().Err(err).Str("ticker", t).Str("source", p.source.Name()).Msg("headline fetch failed")
			continue
		}
		if n := p.cfg.TopNHeadlines; n > 0 && len(hs) > n {
			hs = hs[:n]
		}
		p.logger.Debug().Str("ticker", t).Int("headlines", len(hs)).Msg("headlines fetched")
		all = append(all, hs...)
	}
	return sentiment.ScoreHeadlines(p.scorer, all), nil
}

func failure(err error) models.PipelineResult {
	return models.PipelineResult{Success: false, Error: err.Error()}
}
