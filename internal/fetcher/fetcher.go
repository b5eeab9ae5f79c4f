// Package fetcher downloads raw HTML for the directory and detail pages.
package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher returns the HTML document at url.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

const maxBodyBytes = 4 << 20

// HTTPFetcher fetches pages with a plain net/http GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// FetchHTML performs a GET and returns the body. Status >= 400 is an error.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "http: create request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	zap.L().Named("fetcher").Debug("GET", zap.String("url", url))
	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "http: fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("http: %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "http: read body")
	}
	return string(body), nil
}
