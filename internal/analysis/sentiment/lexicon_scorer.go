package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// LexiconScorer applies the VADER rule set (boosters, negation, "least",
// ALL-CAPS emphasis, "but" contrast, punctuation emphasis) over a valence
// lexicon.
type LexiconScorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewLexiconScorer returns a scorer backed by lex. The stock lexicon reuses
// the shared analyzer; any other lexicon gets its own.
func NewLexiconScorer(lex *Lexicon) *LexiconScorer {
	base, err := vader()
	if err == nil && lex == builtin.lex {
		return &LexiconScorer{sia: base}
	}

	sia := &govader.SentimentIntensityAnalyzer{
		Lexicon:   lex.valence,
		Constants: govader.NewTermConstants(),
	}
	if err == nil {
		sia.EmojiDict = base.EmojiDict
	}
	return &LexiconScorer{sia: sia}
}

// Strategy reports StrategyLexicon.
func (*LexiconScorer) Strategy() Strategy { return StrategyLexicon }

// Score returns compound, positive, negative and neutral scores for text.
// Positive, negative and neutral sum to 1; text without any tokens is
// fully neutral.
func (s *LexiconScorer) Score(text string) models.ScoreVector {
	p := s.sia.PolarityScores(text)
	if p.Positive+p.Negative+p.Neutral == 0 {
		return models.ScoreVector{Neutral: 1}
	}
	return models.ScoreVector{
		Compound: p.Compound,
		Positive: p.Positive,
		Negative: p.Negative,
		Neutral:  p.Neutral,
	}
}
