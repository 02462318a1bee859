package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultYahooRSSURL is the Yahoo Finance per-ticker headline feed template.
const DefaultYahooRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// YahooRSS reads the Yahoo Finance headline RSS feed.
type YahooRSS struct {
	client       *client
	urlTemplate  string
	maxHeadlines int
	parser       *gofeed.Parser
}

// NewYahooRSS creates a Yahoo Finance RSS headline source.
func NewYahooRSS(opts Options) *YahooRSS {
	tmpl := opts.URLTemplate
	if tmpl == "" {
		tmpl = DefaultYahooRSSURL
	}
	return &YahooRSS{
		client:       newClient(opts),
		urlTemplate:  tmpl,
		maxHeadlines: opts.maxHeadlines(),
		parser:       gofeed.NewParser(),
	}
}

// Name returns "yahoo".
func (y *YahooRSS) Name() string { return SourceYahoo }

// Fetch parses the feed for ticker. Items keep feed order; the publish time
// is rendered in US Eastern time with the Finviz date and time layouts.
func (y *YahooRSS) Fetch(ctx context.Context, ticker string) ([]models.Headline, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}

	feedURL := fmt.Sprintf(y.urlTemplate, url.QueryEscape(ticker))
	body, err := y.client.doGet(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo rss %s: %w", ticker, err)
	}
	defer body.Close()

	feed, err := y.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo rss %s: parse feed: %w", ticker, err)
	}

	out := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := cleanHTML(item.Title)
		if title == "" {
			continue
		}
		h := models.Headline{
			Ticker: ticker,
			Title:  title,
			Link:   item.Link,
			Source: SourceYahoo,
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil {
			h.DateText = utils.FormatNewsDate(*published)
			h.TimeText = utils.FormatNewsTime(*published)
		}
		out = append(out, h)
	}
	return truncate(out, y.maxHeadlines), nil
}

// cleanHTML strips HTML tags and entities from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
