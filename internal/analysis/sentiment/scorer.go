// Package sentiment scores headline text and aggregates scores per ticker.
//
// Two scoring strategies are available behind the Scorer interface: a
// lexicon-based rule scorer (primary) and a keyword-counting scorer used
// when the lexicon resource cannot be loaded at process start.
package sentiment

import (
	"math"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// Strategy names a scoring strategy.
type Strategy string

const (
	StrategyLexicon Strategy = "lexicon"
	StrategyKeyword Strategy = "keyword"
)

// Scorer turns one headline title into a ScoreVector.
// Implementations must be deterministic and must accept any input,
// including the empty string.
type Scorer interface {
	Score(title string) models.ScoreVector
	Strategy() Strategy
}

// ScoreHeadlines scores every headline with s, preserving order.
func ScoreHeadlines(s Scorer, headlines []models.Headline) []models.ScoredHeadline {
	out := make([]models.ScoredHeadline, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, models.ScoredHeadline{
			Headline:    h,
			ScoreVector: s.Score(h.Title),
		})
	}
	return out
}

// ------------------------------------------------------------------
// Keyword fallback scorer.
// Approximate: it only counts cue words, so the positive/negative/neutral
// components are fixed placeholders rather than measured proportions.
// ------------------------------------------------------------------

var positiveCues = map[string]bool{
	"gain": true, "gains": true, "rise": true, "rises": true, "rising": true,
	"surge": true, "surges": true, "soar": true, "soars": true, "jump": true,
	"jumps": true, "rally": true, "rallies": true, "beat": true, "beats": true,
	"up": true, "upgrade": true, "upgraded": true, "growth": true, "profit": true,
	"strong": true, "bullish": true, "record": true, "outperform": true,
	"buy": true, "boost": true, "positive": true, "higher": true,
}

var negativeCues = map[string]bool{
	"loss": true, "losses": true, "fall": true, "falls": true, "falling": true,
	"drop": true, "drops": true, "plunge": true, "plunges": true, "decline": true,
	"declines": true, "miss": true, "misses": true, "down": true, "downgrade": true,
	"downgraded": true, "weak": true, "bearish": true, "cut": true, "cuts": true,
	"lawsuit": true, "crash": true, "slump": true, "sell": true, "lower": true,
	"negative": true, "warning": true, "probe": true,
}

// KeywordScorer counts positive and negative cue words.
type KeywordScorer struct{}

// NewKeywordScorer returns the fallback scorer.
func NewKeywordScorer() *KeywordScorer { return &KeywordScorer{} }

// Strategy reports StrategyKeyword.
func (*KeywordScorer) Strategy() Strategy { return StrategyKeyword }

// Score counts case-insensitive cue words in title. Compound is
// 0.1 + 0.1·(pos−neg) when positive cues dominate, the mirrored value when
// negative cues dominate, and 0 otherwise.
func (*KeywordScorer) Score(title string) models.ScoreVector {
	pos, neg := 0, 0
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, wordPunct)
		switch {
		case positiveCues[w]:
			pos++
		case negativeCues[w]:
			neg++
		}
	}

	switch {
	case pos > neg:
		return models.ScoreVector{
			Compound: clamp(0.1+0.1*float64(pos-neg), -1, 1),
			Positive: 0.3, Negative: 0.1, Neutral: 0.6,
		}
	case neg > pos:
		return models.ScoreVector{
			Compound: clamp(-0.1-0.1*float64(neg-pos), -1, 1),
			Positive: 0.1, Negative: 0.3, Neutral: 0.6,
		}
	default:
		return models.ScoreVector{Positive: 0.2, Negative: 0.2, Neutral: 0.6}
	}
}

// wordPunct is trimmed from both ends of a word before lookup.
const wordPunct = ".,!?\"'()[]{}:;`-–—…"

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
