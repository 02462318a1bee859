package utils

import (
	"strings"
)

// NormalizeTicker uppercases a user-input ticker and strips whitespace and
// the "$" cashtag prefix common in chat and social posts.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ParseTickers splits a comma- or space-separated ticker list, normalizes
// each entry and drops blanks and duplicates while keeping input order.
// For example, "aapl, $tsla AAPL" → ["AAPL", "TSLA"].
func ParseTickers(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		t := NormalizeTicker(f)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// NormalizeTickers applies NormalizeTicker to every entry, dropping blanks
// and duplicates.
func NormalizeTickers(tickers []string) []string {
	return ParseTickers(strings.Join(tickers, ","))
}
