// Package tmdb talks to The Movie Database v3 API: it resolves watchlist
// identifiers to catalog ids and fetches full movie details.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Config controls the API client.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each API call. Zero waits indefinitely.
	Timeout time.Duration
}

// Client is an HTTP client for the TMDB API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a Client. An empty API key is accepted; TMDB rejects the
// first call made with it.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// APIError is a non-2xx response from TMDB.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: status %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb: status %d: %s", e.StatusCode, e.Message)
}

type findResult struct {
	ID int64 `json:"id"`
}

type findResponse struct {
	MovieResults []findResult `json:"movie_results"`
	TVResults    []findResult `json:"tv_results"`
}

// Resolve maps an IMDb title id to a TMDB id. The first movie match wins,
// then the first TV match. ok is false when neither exists.
func (c *Client) Resolve(ctx context.Context, externalID string) (int64, bool, error) {
	q := url.Values{}
	q.Set("external_source", "imdb_id")
	var resp findResponse
	status, err := c.get(ctx, "/find/"+url.PathEscape(externalID), q, &resp)
	if err != nil {
		return 0, false, fmt.Errorf("find %s: %w", externalID, err)
	}
	if status >= http.StatusBadRequest {
		return 0, false, fmt.Errorf("find %s: %w", externalID, &APIError{StatusCode: status})
	}
	switch {
	case len(resp.MovieResults) > 0:
		return resp.MovieResults[0].ID, true, nil
	case len(resp.TVResults) > 0:
		return resp.TVResults[0].ID, true, nil
	default:
		return 0, false, nil
	}
}

// Details fetches a movie with credits and keywords embedded in one call.
// A response for an unknown id decodes without an id and is reported through
// Details.Usable rather than as an error. Authentication failures and rate
// limiting are errors.
func (c *Client) Details(ctx context.Context, catalogID int64) (Details, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits,keywords")
	var details Details
	status, err := c.get(ctx, "/movie/"+strconv.FormatInt(catalogID, 10), q, &details)
	if err != nil {
		return Details{}, fmt.Errorf("movie %d: %w", catalogID, err)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return Details{}, fmt.Errorf("movie %d: %w", catalogID, &APIError{StatusCode: status})
	}
	return details, nil
}

// get decodes the JSON body into out and returns the status code. Bodies of
// error responses are decoded too; a body that is not JSON is an error only
// for 2xx responses.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) (int, error) {
	q.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", path, redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil && resp.StatusCode < http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("decode body: %w", err)
	}
	return resp.StatusCode, nil
}

// redactKey keeps the credential out of url.Error messages.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, key, "REDACTED")
	}
	return err
}
