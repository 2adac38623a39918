// Package collyfetcher scrapes watchlist pages using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// DefaultBaseURL is the watchlist site root.
const DefaultBaseURL = "https://www.imdb.com"

// externalIDPattern matches watchlist title identifiers anywhere in the page.
// The page structure is not a contract: a layout change yields zero or wrong ids.
var externalIDPattern = regexp.MustCompile(`tt\d+`)

// Config controls collector behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds a single page fetch. Zero waits indefinitely.
	Timeout time.Duration
}

// Fetcher downloads a watchlist page and extracts title identifiers from it.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// Every sync revisits the same page.
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
		colly.ParseHTTPErrorResponse(),
	)
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// WatchlistURL returns the page scraped for listID.
func (f *Fetcher) WatchlistURL(listID string) string {
	return fmt.Sprintf("%s/user/%s/watchlist", f.cfg.BaseURL, listID)
}

// FetchIDs issues one GET for the watchlist page and returns the distinct
// title identifiers found in the raw body. There is no retry. The body is
// scanned whatever the status code; only transport failures are errors.
func (f *Fetcher) FetchIDs(ctx context.Context, listID string) ([]string, error) {
	var (
		body     []byte
		fetchErr error
	)
	collector := f.buildCollector(ctx, &body, &fetchErr)
	if err := f.runCollector(ctx, collector, f.WatchlistURL(listID), &fetchErr); err != nil {
		return nil, err
	}
	return ExtractIDs(body), nil
}

// ExtractIDs returns every distinct tt-identifier in body in first-seen order.
func ExtractIDs(body []byte) []string {
	matches := externalIDPattern.FindAll(body, -1)
	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := string(m)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (f *Fetcher) buildCollector(ctx context.Context, body *[]byte, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)
	colly.StdlibContext(ctx)(collector)
	f.configureCollectorHooks(collector, body, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, body *[]byte, fetchErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		*body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("watchlist fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("watchlist response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("watchlist visit failed: %w", err)
		}
		return nil
	}
}

// newHTTPTransport sets no dial or handshake deadline; Config.Timeout is the
// only bound on a fetch.
func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		DialContext:     (&net.Dialer{KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}
