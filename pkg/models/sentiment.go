package models

import "math"

// SentimentLabel classifies a ticker's mean compound score.
type SentimentLabel string

const (
	LabelBullish SentimentLabel = "Bullish"
	LabelBearish SentimentLabel = "Bearish"
	LabelNeutral SentimentLabel = "Neutral"
	LabelNoData  SentimentLabel = "No data"
)

// ScoreVector holds the four polarity scores for one piece of text.
// Compound is in [-1, 1]; the other three are in [0, 1].
type ScoreVector struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// TickerSummary is the per-ticker aggregate emitted by the pipeline.
type TickerSummary struct {
	Ticker        string         `json:"-"`
	Label         SentimentLabel `json:"sentiment"`
	Compound      float64        `json:"compound_score"`
	Positive      float64        `json:"positive"`
	Negative      float64        `json:"negative"`
	Neutral       float64        `json:"neutral"`
	HeadlineCount int            `json:"headline_count,omitempty"`
}

// NoDataSummary returns the all-zero summary used for tickers without headlines.
func NoDataSummary(ticker string) TickerSummary {
	return TickerSummary{Ticker: ticker, Label: LabelNoData}
}

// PipelineResult is the terminal output of one pipeline run.
// On failure only Success=false and Error are set.
type PipelineResult struct {
	Success   bool                     `json:"success"`
	Timestamp string                   `json:"timestamp,omitempty"`
	Data      map[string]TickerSummary `json:"data,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// Round4 rounds v to 4 decimal digits for presentation.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
