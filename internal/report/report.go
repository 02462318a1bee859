// Package report renders pipeline results for people: a terminal table,
// a self-contained HTML page with SVG charts, or indented JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat accepts json, text or html, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText, FormatHTML:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want json, text or html)", s)
	}
}

// Options controls rendering.
type Options struct {
	Title      string            // default: "tickerpulse — News Sentiment"
	Narratives map[string]string // per-ticker AI summaries, optional
}

func (o Options) title() string {
	if o.Title == "" {
		return "tickerpulse — News Sentiment"
	}
	return o.Title
}

// Render writes res to w in format f.
func Render(w io.Writer, f Format, res models.PipelineResult, opts Options) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, renderText(res, opts))
		return err
	case FormatHTML:
		return renderHTML(w, res, opts)
	default:
		return renderJSON(w, res, opts)
	}
}

// Summaries returns the result's summaries sorted by ticker, with the
// Ticker field filled from the map key.
func Summaries(res models.PipelineResult) []models.TickerSummary {
	tickers := make([]string, 0, len(res.Data))
	for t := range res.Data {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)

	out := make([]models.TickerSummary, 0, len(tickers))
	for _, t := range tickers {
		s := res.Data[t]
		s.Ticker = t
		out = append(out, s)
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// JSON
// ════════════════════════════════════════════════════════════════════

func renderJSON(w io.Writer, res models.PipelineResult, opts Options) error {
	var v any = res
	if len(opts.Narratives) > 0 {
		v = struct {
			models.PipelineResult
			Narratives map[string]string `json:"narratives"`
		}{res, opts.Narratives}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderText(res models.PipelineResult, opts Options) string {
	var sb strings.Builder
	line := strings.Repeat("═", 72)
	thinLine := strings.Repeat("─", 72)

	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", opts.title()))
	if res.Timestamp != "" {
		sb.WriteString(fmt.Sprintf("  Generated: %s\n", res.Timestamp))
	}
	sb.WriteString(line + "\n")

	if !res.Success {
		sb.WriteString(fmt.Sprintf("  Run failed: %s\n", res.Error))
		sb.WriteString(line + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-8s %-10s %9s %8s %8s %8s %9s\n",
		"TICKER", "SENTIMENT", "COMPOUND", "POS", "NEG", "NEU", "HEADLINES"))
	sb.WriteString(thinLine + "\n")
	summaries := Summaries(res)
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("  %-8s %-10s %+9.4f %8.4f %8.4f %8.4f %9d\n",
			s.Ticker, s.Label, s.Compound, s.Positive, s.Negative, s.Neutral, s.HeadlineCount))
	}

	for _, s := range summaries {
		text, ok := opts.Narratives[s.Ticker]
		if !ok {
			continue
		}
		sb.WriteString(thinLine + "\n")
		sb.WriteString(fmt.Sprintf("  ■ %s\n", s.Ticker))
		for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
			sb.WriteString("  " + l + "\n")
		}
	}

	sb.WriteString(line + "\n")
	sb.WriteString("  Disclaimer: sentiment is computed from headlines only.\n")
	sb.WriteString("  Not financial advice.\n")
	sb.WriteString(line + "\n")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

// pageData feeds PageTemplate.
type pageData struct {
	Title       string
	Timestamp   string
	MarketState string
	Success     bool
	Error       string
	Chart       template.HTML
	Tickers     []tickerCard
}

type tickerCard struct {
	models.TickerSummary
	Gauge     template.HTML
	Narrative string
}

var pageTmpl = template.Must(template.New("page").Parse(PageTemplate))

func renderHTML(w io.Writer, res models.PipelineResult, opts Options) error {
	d := pageData{
		Title:       opts.title(),
		Timestamp:   res.Timestamp,
		MarketState: utils.MarketStatus(utils.NowET()),
		Success:     res.Success,
		Error:       res.Error,
	}
	if res.Success {
		summaries := Summaries(res)
		cfg := DefaultChartConfig()
		cfg.Height = 80 + 40*len(summaries)
		// chart markup is generated here with escaped labels
		d.Chart = template.HTML(HorizontalBarChart(CompoundBars(summaries), cfg))
		for _, s := range summaries {
			d.Tickers = append(d.Tickers, tickerCard{
				TickerSummary: s,
				Gauge:         template.HTML(GaugeChart(s.Compound, s.Label, 200)),
				Narrative:     opts.Narratives[s.Ticker],
			})
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, d); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
