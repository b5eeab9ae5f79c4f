package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_OK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h3>Austin, TX</h3></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "campus-test/1.0")
	html, err := f.FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Austin, TX</h3>")
	assert.Equal(t, "campus-test/1.0", gotUA)
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "")
	_, err := f.FetchHTML(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(5*time.Second, "")
	_, err := f.FetchHTML(ctx, srv.URL)
	assert.Error(t, err)
}

func TestBrowserFetcher_CloseWithoutLaunch(t *testing.T) {
	f := NewBrowserFetcher(time.Second)
	assert.NoError(t, f.Close())
}

func TestBrowserFetcher_LaunchesOnceUnderConcurrency(t *testing.T) {
	var starts atomic.Int32
	shared := rod.New()
	f := NewBrowserFetcher(time.Second)
	f.start = func() (*rod.Browser, error) {
		starts.Add(1)
		time.Sleep(10 * time.Millisecond)
		return shared, nil
	}

	var wg sync.WaitGroup
	got := make([]*rod.Browser, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := f.launch()
			assert.NoError(t, err)
			got[i] = b
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), starts.Load())
	for _, b := range got {
		assert.Same(t, shared, b)
	}

	// shared was never connected; drop it instead of closing.
	f.browser = nil
}

func TestBrowserFetcher_LaunchErrorNotCached(t *testing.T) {
	calls := 0
	f := NewBrowserFetcher(time.Second)
	f.start = func() (*rod.Browser, error) {
		calls++
		return nil, errors.New("no chromium")
	}

	_, err := f.FetchHTML(context.Background(), "http://campus.test")
	require.Error(t, err)
	_, err = f.launch()
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, f.Close())
}
