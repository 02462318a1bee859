package models

// Headline is a single news row scraped or parsed for a ticker.
// Date and time are kept as the source printed them (e.g. "Jan-02-24", "09:30AM").
type Headline struct {
	Ticker   string `json:"ticker"`
	Title    string `json:"title"`
	DateText string `json:"date"`
	TimeText string `json:"time"`
	Link     string `json:"link,omitempty"`
	Source   string `json:"source,omitempty"` // "finviz", "yahoo"
}

// ScoredHeadline joins a headline with the scores computed from its title.
type ScoredHeadline struct {
	Headline
	ScoreVector
}

// TickerReport is the detailed single-ticker view rendered by the dashboard:
// the aggregate summary plus the individual scored headlines behind it.
type TickerReport struct {
	Summary   TickerSummary    `json:"summary"`
	Headlines []ScoredHeadline `json:"headlines"`
	Narrative string           `json:"narrative,omitempty"` // AI-generated text
	Timestamp string           `json:"timestamp"`
}
