// Package datasource fetches recent news headlines for stock tickers.
// It defines a common HeadlineSource interface with a Finviz quote-page
// scraper (primary) and a Yahoo Finance RSS reader.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// HeadlineSource fetches the most recent headlines for one ticker.
// Implementations make a single best-effort attempt; they never retry.
type HeadlineSource interface {
	// Name returns the short source identifier stored on each headline.
	Name() string

	// Fetch returns at most the configured number of headlines, newest first.
	Fetch(ctx context.Context, ticker string) ([]models.Headline, error)
}

// --- Sentinel errors ---

// ErrNoNewsTable is returned when a quote page has no news table.
var ErrNoNewsTable = errors.New("news table not found")

// ErrEmptyTicker is returned when Fetch is called without a ticker.
var ErrEmptyTicker = errors.New("empty ticker")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client ---

// DefaultUserAgent is the browser user agent sent when none is configured.
// Finviz rejects requests without one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultMaxHeadlines is the per-ticker headline cap.
const DefaultMaxHeadlines = 10

// Options configures a headline source.
type Options struct {
	URLTemplate       string  // fmt template, %s = ticker; empty = source default
	UserAgent         string  // empty = DefaultUserAgent
	MaxHeadlines      int     // <= 0 = DefaultMaxHeadlines
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 = unpaced
	HTTPClient        *http.Client
}

func (o Options) maxHeadlines() int {
	if o.MaxHeadlines <= 0 {
		return DefaultMaxHeadlines
	}
	return o.MaxHeadlines
}

// client is the HTTP plumbing shared by the sources: browser headers and
// optional request pacing.
type client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

func newClient(opts Options) *client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	c := &client{http: hc, userAgent: ua}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// doGet performs a GET request with browser headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func (c *client) doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// New returns the source registered under name ("finviz" or "yahoo").
func New(name string, opts Options) (HeadlineSource, error) {
	switch strings.ToLower(name) {
	case "", SourceFinviz:
		return NewFinviz(opts), nil
	case SourceYahoo:
		return NewYahooRSS(opts), nil
	default:
		return nil, fmt.Errorf("unknown headline source %q", name)
	}
}

func truncate(hs []models.Headline, n int) []models.Headline {
	if n > 0 && len(hs) > n {
		return hs[:n]
	}
	return hs
}
