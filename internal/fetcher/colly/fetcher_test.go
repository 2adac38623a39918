package collyfetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"
)

const watchlistPage = `<html><body>
<a href="/title/tt0137523/">Fight Club</a>
<a href="/title/tt1375666/?ref_=wl">Inception</a>
<div data-tconst="tt0137523"></div>
<script>{"const":"tt0068646"}</script>
</body></html>`

func TestFetchIDsExtractsDistinctIDs(t *testing.T) {
	t.Parallel()

	var (
		mu             sync.Mutex
		gotPath, gotUA string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(watchlistPage))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL + "/", UserAgent: "Mozilla/5.0"})
	ids, err := f.FetchIDs(context.Background(), "ur146714887")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"tt0137523", "tt1375666", "tt0068646"}, ids)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/user/ur146714887/watchlist", gotPath)
	require.Equal(t, "Mozilla/5.0", gotUA)
}

func TestFetchIDsCanRunRepeatedly(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(watchlistPage))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL})
	for i := 0; i < 2; i++ {
		ids, err := f.FetchIDs(context.Background(), "ur1")
		require.NoError(t, err)
		require.Len(t, ids, 3)
	}
	require.Equal(t, int32(2), hits.Load())
}

func TestFetchIDsEmptyPageIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Your watchlist is empty</body></html>"))
	}))
	defer srv.Close()

	ids, err := New(Config{BaseURL: srv.URL}).FetchIDs(context.Background(), "ur1")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestFetchIDsScansErrorPages(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<a href="/title/tt0137523/">blocked</a>`))
		}))

		ids, err := New(Config{BaseURL: srv.URL}).FetchIDs(context.Background(), "ur1")
		srv.Close()
		require.NoError(t, err, "status %d", status)
		require.Equal(t, []string{"tt0137523"}, ids)
	}
}

func TestFetchIDsPropagatesTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	ids, err := New(Config{BaseURL: base}).FetchIDs(context.Background(), "ur1")
	require.Error(t, err)
	require.Nil(t, ids)
}

func TestFetchIDsReadsWholeLargePage(t *testing.T) {
	t.Parallel()

	page := append(bytes.Repeat([]byte("x"), 11<<20), []byte(" tt7654321")...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	ids, err := New(Config{BaseURL: srv.URL}).FetchIDs(context.Background(), "ur1")
	require.NoError(t, err)
	require.Equal(t, []string{"tt7654321"}, ids)
}

func TestFetchIDsCancelAbortsRequest(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	aborted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
		close(aborted)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := New(Config{BaseURL: srv.URL}).FetchIDs(ctx, "ur1")
		errCh <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	select {
	case <-aborted:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream request was not aborted")
	}
}

func TestHTTPTransportHasNoDeadlines(t *testing.T) {
	t.Parallel()

	tr := newHTTPTransport()
	require.Zero(t, tr.TLSHandshakeTimeout)
	require.Zero(t, tr.ResponseHeaderTimeout)
	require.Zero(t, tr.ExpectContinueTimeout)
}

func TestFetchIDsHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{BaseURL: srv.URL}).FetchIDs(ctx, "ur1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractIDs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"tt1", "tt22"}, ExtractIDs([]byte("tt1 xx tt22 tt1 ttx")))
	require.Empty(t, ExtractIDs(nil))
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	var body []byte
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &body, &fetchErr)
	if hooks.onResponse == nil || hooks.onError == nil {
		t.Fatal("expected hooks to be registered")
	}

	hooks.onResponse(&colly.Response{StatusCode: http.StatusOK, Body: []byte("tt42")})
	require.Equal(t, "tt42", string(body))

	hooks.onError(nil, errors.New("boom"))
	require.EqualError(t, fetchErr, "boom")

	hooks.onError(&colly.Response{StatusCode: http.StatusForbidden}, errors.New("Forbidden"))
	require.EqualError(t, fetchErr, "status 403: Forbidden")
}

func TestWatchlistURLDefaultsToIMDb(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.imdb.com/user/ur9/watchlist", New(Config{}).WatchlistURL("ur9"))
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
