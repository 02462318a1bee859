package sentiment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// ErrLexiconUnavailable is returned when the lexicon resource cannot be loaded.
var ErrLexiconUnavailable = errors.New("sentiment: lexicon unavailable")

// Lexicon maps lowercase tokens to valence on the -4..+4 scale.
// It is read-only once built and safe to share between goroutines.
type Lexicon struct {
	valence map[string]float64
}

// Len returns the number of entries.
func (l *Lexicon) Len() int { return len(l.valence) }

// Valence returns the valence of a lowercase token.
func (l *Lexicon) Valence(token string) (float64, bool) {
	v, ok := l.valence[token]
	return v, ok
}

// ParseLexicon reads a tab-separated lexicon: token, mean valence, then any
// number of ignored columns (the VADER lexicon file layout). Blank lines and
// lines starting with '#' are skipped.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{valence: make(map[string]float64)}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("lexicon line %d: expected token and valence", lineNo)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", lineNo, err)
		}
		lex.valence[strings.ToLower(strings.TrimSpace(fields[0]))] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	if lex.Len() == 0 {
		return nil, fmt.Errorf("%w: empty lexicon", ErrLexiconUnavailable)
	}
	return lex, nil
}

// LoadLexiconFile parses the lexicon at path.
func LoadLexiconFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLexiconUnavailable, err)
	}
	defer f.Close()

	lex, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLexiconUnavailable, path, err)
	}
	return lex, nil
}

var builtin struct {
	once sync.Once
	sia  *govader.SentimentIntensityAnalyzer
	lex  *Lexicon
	err  error
}

// vader returns the process-wide analyzer carrying the stock VADER lexicon,
// built on first use.
func vader() (*govader.SentimentIntensityAnalyzer, error) {
	builtin.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				builtin.sia, builtin.lex = nil, nil
				builtin.err = fmt.Errorf("%w: %v", ErrLexiconUnavailable, r)
			}
		}()
		sia := govader.NewSentimentIntensityAnalyzer()
		if len(sia.Lexicon) == 0 {
			builtin.err = fmt.Errorf("%w: empty lexicon", ErrLexiconUnavailable)
			return
		}
		builtin.sia = sia
		builtin.lex = &Lexicon{valence: sia.Lexicon}
	})
	return builtin.sia, builtin.err
}

// DefaultLexicon returns the VADER lexicon shipped with govader. Every
// caller in the process shares the same instance.
func DefaultLexicon() (*Lexicon, error) {
	if _, err := vader(); err != nil {
		return nil, err
	}
	return builtin.lex, nil
}
