package models

// HealthStatus is the static readiness marker. Producing it never runs the
// pipeline and never touches the network.
type HealthStatus struct {
	Status           string `json:"status"`
	Scorer           string `json:"scorer"`
	LexiconAvailable bool   `json:"lexicon_available"`
	MarketStatus     string `json:"market_status,omitempty"`
	TimeET           string `json:"time_et,omitempty"`
	Version          string `json:"version,omitempty"`
}
