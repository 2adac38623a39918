package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/"})
}

func TestResolvePrefersMovieResults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/find/tt0137523", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		_, _ = w.Write([]byte(`{"movie_results":[{"id":550},{"id":551}],"tv_results":[{"id":1399}]}`))
	})

	id, ok, err := c.Resolve(context.Background(), "tt0137523")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(550), id)
}

func TestResolveFallsBackToTVResults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[{"id":1399}]}`))
	})

	id, ok, err := c.Resolve(context.Background(), "tt0944947")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1399), id)
}

func TestResolveNoMatchIsNotAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results":[],"person_results":[{"id":287}],"tv_results":[]}`))
	})

	_, ok, err := c.Resolve(context.Background(), "tt9999999")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveAuthFailureIsAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key","success":false}`))
	})

	_, ok, err := c.Resolve(context.Background(), "tt0137523")
	require.False(t, ok)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestDetailsDecodesEmbeddedBlocks(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "credits,keywords", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"overview": "An insomniac office worker...",
			"popularity": 61.4,
			"poster_path": "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
			"genres": [{"id": 18, "name": "Drama"}],
			"credits": {
				"cast": [{"name": "Edward Norton", "order": 0}],
				"crew": [{"name": "David Fincher", "job": "Director"}]
			},
			"keywords": {"keywords": [{"id": 825, "name": "support group"}]}
		}`))
	})

	d, err := c.Details(context.Background(), 550)
	require.NoError(t, err)
	require.True(t, d.Usable())
	require.Equal(t, int64(550), *d.ID)
	require.Equal(t, "Fight Club", *d.Title)
	require.Nil(t, d.Name)
	require.Equal(t, 61.4, *d.Popularity)
	require.Equal(t, "Drama", d.Genres[0].Name)
	require.Equal(t, "Director", d.Credits.Crew[0].Job)
	require.Equal(t, "support group", d.Keywords.Keywords[0].Name)
}

func TestDetailsNotFoundIsUnusable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	d, err := c.Details(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, d.Usable())
}

func TestDetailsAuthFailureIsAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Details(context.Background(), 1)
	require.Error(t, err)
}

func TestDetailsRateLimitIsAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false,"status_code":25,"status_message":"Your request count is over the allowed limit."}`))
	})

	_, err := c.Details(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestDetailsMalformedBodyIsAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.Details(context.Background(), 1)
	require.ErrorContains(t, err, "decode body")
}

func TestTransportErrorRedactsKey(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{APIKey: "topsecret", BaseURL: "http://127.0.0.1:1"})
	_, _, err := c.Resolve(context.Background(), "tt1")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "topsecret")
}
