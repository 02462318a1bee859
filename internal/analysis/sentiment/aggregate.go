package sentiment

import "github.com/seenimoa/tickerpulse/pkg/models"

// Thresholds are the classification cut-offs on the compound score.
type Thresholds struct {
	Bullish float64
	Bearish float64
}

// DefaultThresholds returns ±0.05.
func DefaultThresholds() Thresholds {
	return Thresholds{Bullish: 0.05, Bearish: -0.05}
}

// Classify labels a mean compound score. Both boundaries are inclusive.
func Classify(compound float64, th Thresholds) models.SentimentLabel {
	switch {
	case compound >= th.Bullish:
		return models.LabelBullish
	case compound <= th.Bearish:
		return models.LabelBearish
	default:
		return models.LabelNeutral
	}
}

type accumulator struct {
	n        int
	compound float64
	pos      float64
	neg      float64
	neu      float64
}

// Aggregate groups scored headlines by exact ticker and returns exactly one
// summary per requested ticker. Requested tickers without headlines get a
// "No data" summary; headlines for tickers that were not requested are
// ignored. Means are computed at full precision and rounded on output.
func Aggregate(scored []models.ScoredHeadline, requested []string, th Thresholds) map[string]models.TickerSummary {
	groups := make(map[string]*accumulator, len(requested))
	for _, t := range requested {
		groups[t] = &accumulator{}
	}
	for _, sh := range scored {
		acc, ok := groups[sh.Ticker]
		if !ok {
			continue
		}
		acc.n++
		acc.compound += sh.Compound
		acc.pos += sh.Positive
		acc.neg += sh.Negative
		acc.neu += sh.Neutral
	}

	out := make(map[string]models.TickerSummary, len(groups))
	for ticker, acc := range groups {
		if acc.n == 0 {
			out[ticker] = models.NoDataSummary(ticker)
			continue
		}
		n := float64(acc.n)
		mean := acc.compound / n
		out[ticker] = models.TickerSummary{
			Ticker:        ticker,
			Label:         Classify(mean, th),
			Compound:      models.Round4(mean),
			Positive:      models.Round4(acc.pos / n),
			Negative:      models.Round4(acc.neg / n),
			Neutral:       models.Round4(acc.neu / n),
			HeadlineCount: acc.n,
		}
	}
	return out
}
