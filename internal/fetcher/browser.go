package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chromium. Use it when the
// directory is built client-side. The browser is launched lazily on the
// first fetch and reused until Close. It is safe for concurrent use.
type BrowserFetcher struct {
	timeout time.Duration
	start   func() (*rod.Browser, error)

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates a BrowserFetcher; no browser is started yet.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{timeout: timeout, start: launchChromium}
}

func launchChromium() (*rod.Browser, error) {
	zap.L().Named("fetcher").Info("launching headless browser")
	u, err := launcher.New().Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch")
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}
	return b, nil
}

// launch returns the shared browser, starting it on first use.
func (f *BrowserFetcher) launch() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}
	b, err := f.start()
	if err != nil {
		return nil, err
	}
	f.browser = b
	return b, nil
}

// FetchHTML navigates to url in a stealth page and returns the settled DOM.
func (f *BrowserFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	browser, err := f.launch()
	if err != nil {
		return "", err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return "", eris.Wrap(err, "browser: open page")
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(f.timeout)

	zap.L().Named("fetcher").Debug("navigating", zap.String("url", url))
	if err := page.Navigate(url); err != nil {
		return "", eris.Wrapf(err, "browser: navigate %s", url)
	}
	if err := page.WaitStable(time.Second); err != nil {
		return "", eris.Wrapf(err, "browser: wait for %s", url)
	}

	html, err := page.HTML()
	if err != nil {
		return "", eris.Wrap(err, "browser: read html")
	}
	return html, nil
}

// Close shuts the browser down if one was launched.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	return err
}
