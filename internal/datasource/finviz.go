package datasource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Source identifiers.
const (
	SourceFinviz = "finviz"
	SourceYahoo  = "yahoo"
)

// DefaultFinvizURL is the Finviz quote page template.
const DefaultFinvizURL = "https://finviz.com/quote.ashx?t=%s"

// todayMarker is printed by Finviz instead of a date for same-day rows.
const todayMarker = "Today"

// Finviz scrapes the news table of a Finviz quote page.
type Finviz struct {
	client       *client
	urlTemplate  string
	maxHeadlines int
	now          func() time.Time
}

// NewFinviz creates a Finviz headline source.
func NewFinviz(opts Options) *Finviz {
	tmpl := opts.URLTemplate
	if tmpl == "" {
		tmpl = DefaultFinvizURL
	}
	return &Finviz{
		client:       newClient(opts),
		urlTemplate:  tmpl,
		maxHeadlines: opts.maxHeadlines(),
		now:          utils.NowET,
	}
}

// Name returns "finviz".
func (f *Finviz) Name() string { return SourceFinviz }

// Fetch downloads the quote page for ticker and parses its news table.
func (f *Finviz) Fetch(ctx context.Context, ticker string) ([]models.Headline, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}

	pageURL := fmt.Sprintf(f.urlTemplate, url.QueryEscape(ticker))
	body, err := f.client.doGet(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}
	defer body.Close()

	headlines, err := f.parse(body, ticker, pageURL)
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}
	return truncate(headlines, f.maxHeadlines), nil
}

// parse extracts headlines from a quote page. Each news-table row carries a
// date-and-time cell ("Jan-02-24 09:30AM" or "Today 09:30AM") or, for later
// rows of the same day, a time-only cell ("09:15AM") that inherits the most
// recent date. Rows without a link, with an empty cell, or with a time-only
// cell before any date has been seen are skipped.
func (f *Finviz) parse(r io.Reader, ticker, pageURL string) ([]models.Headline, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := doc.Find("#news-table")
	if table.Length() == 0 {
		return nil, ErrNoNewsTable
	}

	base, _ := url.Parse(pageURL)
	var (
		out      []models.Headline
		lastDate string
	)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		a := row.Find("a").First()
		href, ok := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if !ok || href == "" || title == "" {
			return
		}

		tokens := strings.Fields(row.Find("td").First().Text())
		var date, clock string
		switch len(tokens) {
		case 0:
			return
		case 1:
			if lastDate == "" {
				return
			}
			date, clock = lastDate, tokens[0]
		default:
			date, clock = tokens[0], tokens[1]
			if date == todayMarker {
				date = utils.FormatNewsDate(f.now())
			}
			lastDate = date
		}

		out = append(out, models.Headline{
			Ticker:   ticker,
			Title:    title,
			DateText: date,
			TimeText: clock,
			Link:     resolveLink(base, href),
			Source:   SourceFinviz,
		})
	})
	return out, nil
}

// resolveLink makes site-relative article links absolute.
func resolveLink(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
