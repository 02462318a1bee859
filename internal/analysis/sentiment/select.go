package sentiment

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// StrategyAuto picks the lexicon scorer when its resource loads and the
// keyword scorer otherwise.
const StrategyAuto Strategy = "auto"

// Options controls scorer selection.
type Options struct {
	Strategy    Strategy
	LexiconPath string // empty means the stock VADER lexicon
	Logger      zerolog.Logger
}

// Select binds one scoring strategy for the life of the process.
func Select(opts Options) (Scorer, error) {
	switch opts.Strategy {
	case StrategyKeyword:
		return NewKeywordScorer(), nil

	case StrategyLexicon:
		lex, err := loadLexicon(opts.LexiconPath)
		if err != nil {
			return nil, err
		}
		return NewLexiconScorer(lex), nil

	case StrategyAuto, "":
		lex, err := loadLexicon(opts.LexiconPath)
		if err != nil {
			opts.Logger.Warn().Err(err).Msg("lexicon unavailable, using keyword scorer")
			return NewKeywordScorer(), nil
		}
		return NewLexiconScorer(lex), nil

	default:
		return nil, fmt.Errorf("unknown sentiment strategy %q", opts.Strategy)
	}
}

// LexiconAvailable reports whether the lexicon at path (or the stock one)
// can be loaded.
func LexiconAvailable(path string) bool {
	_, err := loadLexicon(path)
	return err == nil
}

func loadLexicon(path string) (lex *Lexicon, err error) {
	defer func() {
		if r := recover(); r != nil {
			lex, err = nil, fmt.Errorf("%w: %v", ErrLexiconUnavailable, r)
		}
	}()

	if path != "" {
		return LoadLexiconFile(path)
	}
	lex, err = DefaultLexicon()
	if err != nil && !errors.Is(err, ErrLexiconUnavailable) {
		err = fmt.Errorf("%w: %v", ErrLexiconUnavailable, err)
	}
	return lex, err
}
