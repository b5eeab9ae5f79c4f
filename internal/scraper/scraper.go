package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mspro-labs/campus-locator/internal/config"
	"mspro-labs/campus-locator/internal/fetcher"
	"mspro-labs/campus-locator/internal/models"
)

// Sentinel values returned when a detail page lacks an address or a map.
const (
	AddressNotFound = "Address not found."
	MapNotFound     = "Map not found."
)

func logger() *zap.Logger { return zap.L().Named("scraper") }

// FetchDirectory downloads the listing page and parses it into a Directory.
func FetchDirectory(ctx context.Context, f fetcher.Fetcher, site *config.SiteConfig) (models.Directory, error) {
	listURL := site.DirectoryURL()
	logger().Info("fetching directory", zap.String("url", listURL))

	html, err := f.FetchHTML(ctx, listURL)
	if err != nil {
		return nil, eris.Wrap(err, "scraper: fetch directory")
	}

	dir, err := ParseDirectory(html, site)
	if err != nil {
		return nil, eris.Wrap(err, "scraper: parse directory")
	}
	logger().Info("directory parsed", zap.Int("keys", len(dir)))
	return dir, nil
}

// ParseDirectory reads the building table. Each row with a linked header
// cell and at least one data cell is stored under both its uppercased
// acronym and its uppercased name. A page without the expected table
// yields an empty Directory, not an error.
func ParseDirectory(html string, site *config.SiteConfig) (models.Directory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	dir := models.Directory{}
	sel := site.Selectors

	body := doc.Find(sel.TableBody).First()
	if body.Length() == 0 {
		logger().Warn("directory table not found", zap.String("selector", sel.TableBody))
		return dir, nil
	}

	body.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		header := row.Find(sel.HeaderCell).First()
		cells := row.Find(sel.DataCell)
		if header.Length() == 0 || cells.Length() == 0 {
			return
		}
		link := header.Find(sel.Link).First()
		if link.Length() == 0 {
			return
		}

		acronym := strings.TrimSpace(link.Text())
		name := strings.TrimSpace(cells.First().Text())
		href, _ := link.Attr("href")
		pageURL := resolveHref(site.BaseURL, href)

		for _, key := range []string{strings.ToUpper(acronym), strings.ToUpper(name)} {
			order := len(dir)
			if prev, ok := dir[key]; ok {
				order = prev.Order
			}
			dir[key] = models.DirectoryEntry{Key: key, URL: pageURL, Name: name, Order: order}
		}
	})

	return dir, nil
}

// resolveHref joins site-relative links onto the base URL and leaves
// absolute links untouched.
func resolveHref(baseURL, href string) string {
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return strings.TrimRight(baseURL, "/") + href
}

// FetchBuildingDetail downloads a building page and extracts its address and map URL.
func FetchBuildingDetail(ctx context.Context, f fetcher.Fetcher, pageURL string, site *config.SiteConfig) (address, mapURL string, err error) {
	logger().Info("fetching building page", zap.String("url", pageURL))
	html, err := f.FetchHTML(ctx, pageURL)
	if err != nil {
		return "", "", eris.Wrap(err, "scraper: fetch building page")
	}
	address, mapURL, err = ParseBuildingDetail(html, site)
	if err != nil {
		return "", "", eris.Wrap(err, "scraper: parse building page")
	}
	return address, mapURL, nil
}

// ParseBuildingDetail returns the first heading whose sole text contains a
// comma (falling back to the first heading) and the first frame's src.
// Missing parts come back as AddressNotFound / MapNotFound.
func ParseBuildingDetail(html string, site *config.SiteConfig) (address, mapURL string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}
	sel := site.Selectors

	headings := doc.Find(sel.AddressHeading)
	addrTag := headings.FilterFunction(func(_ int, s *goquery.Selection) bool {
		text, ok := soleString(s.Get(0))
		return ok && strings.Contains(text, ",")
	}).First()
	if addrTag.Length() == 0 {
		addrTag = headings.First()
	}
	address = AddressNotFound
	if addrTag.Length() > 0 {
		address = strippedText(addrTag.Get(0))
	}

	mapURL = MapNotFound
	if src, ok := doc.Find(sel.MapFrame).First().Attr("src"); ok {
		mapURL = src
	}

	return address, mapURL, nil
}

// soleString follows n's only child down to a single text node. Headings
// with several children, or none, have no sole string.
func soleString(n *html.Node) (string, bool) {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil {
		return "", false
	}
	switch c.Type {
	case html.TextNode:
		return c.Data, true
	case html.ElementNode:
		return soleString(c)
	}
	return "", false
}

// strippedText joins every descendant text node of n, each trimmed, with no
// separator; blank nodes are dropped.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
