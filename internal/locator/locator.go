// Package locator runs the photo-to-map pipeline: OCR, directory lookup,
// detail scrape and page rendering.
package locator

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"mspro-labs/campus-locator/internal/config"
	"mspro-labs/campus-locator/internal/db"
	"mspro-labs/campus-locator/internal/fetcher"
	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/resolver"
	"mspro-labs/campus-locator/internal/scraper"
)

var (
	// ErrBuildingNotFound means the OCR text matched no directory entry.
	ErrBuildingNotFound = eris.New("building not found")
	// ErrIncompleteInfo means the building page lacked an address or a map.
	ErrIncompleteInfo = eris.New("unable to retrieve full information for the building")
)

// TextExtractor produces filtered sign text from an image path.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PageRenderer shows the location page for a building and returns its path.
type PageRenderer interface {
	Render(b models.Building) (string, error)
}

// DirectorySource provides the building directory for one run.
type DirectorySource func(ctx context.Context) (models.Directory, error)

// ScrapedDirectory fetches the directory from the live site.
func ScrapedDirectory(f fetcher.Fetcher, site *config.SiteConfig) DirectorySource {
	return func(ctx context.Context) (models.Directory, error) {
		return scraper.FetchDirectory(ctx, f, site)
	}
}

// StoredDirectory reads the last synced snapshot from the store.
func StoredDirectory(database *sql.DB) DirectorySource {
	return func(context.Context) (models.Directory, error) {
		dir, err := db.LoadDirectory(database)
		if err != nil {
			return nil, err
		}
		if len(dir) == 0 {
			return nil, eris.New("locator: snapshot store is empty; run 'directory sync' first")
		}
		return dir, nil
	}
}

// Locator wires the pipeline stages together.
type Locator struct {
	Extractor TextExtractor
	Directory DirectorySource
	Fetcher   fetcher.Fetcher
	Site      *config.SiteConfig
	Renderer  PageRenderer
	// Store is optional; when set, successful lookups are recorded.
	Store *sql.DB
}

// Result describes a successful lookup.
type Result struct {
	OCRText  string
	Building models.Building
	PagePath string
}

// Locate runs the whole pipeline for one image. The reportable outcomes come
// back as ocr.ErrUnreadableImage, ocr.ErrNoText, ErrBuildingNotFound and
// ErrIncompleteInfo; anything else is an unexpected failure.
func (l *Locator) Locate(ctx context.Context, imagePath string) (*Result, error) {
	log := zap.L().Named("locator")

	text, err := l.Extractor.Extract(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	log.Info("detected text", zap.String("text", text))

	building, err := l.Lookup(ctx, text)
	if err != nil {
		return &Result{OCRText: text}, err
	}

	path, err := l.Renderer.Render(building)
	if err != nil {
		return &Result{OCRText: text, Building: building, PagePath: path}, err
	}

	if l.Store != nil {
		if err := db.RecordLookup(l.Store, text, building); err != nil {
			log.Warn("failed to record lookup", zap.Error(err))
		}
	}

	return &Result{OCRText: text, Building: building, PagePath: path}, nil
}

// Lookup resolves text against the directory and scrapes the building's
// details. It does not render.
func (l *Locator) Lookup(ctx context.Context, text string) (models.Building, error) {
	dir, err := l.Directory(ctx)
	if err != nil {
		return models.Building{}, eris.Wrap(err, "locator: load directory")
	}

	match, ok := resolver.Resolve(dir, text)
	if !ok {
		return models.Building{}, ErrBuildingNotFound
	}

	return l.Details(ctx, match.Key, match.Entry)
}

// Details scrapes the building page for entry and fails with
// ErrIncompleteInfo when the address or map is missing.
func (l *Locator) Details(ctx context.Context, key string, entry models.DirectoryEntry) (models.Building, error) {
	address, mapURL, err := scraper.FetchBuildingDetail(ctx, l.Fetcher, entry.URL, l.Site)
	if err != nil {
		return models.Building{}, err
	}
	b := models.Building{Name: entry.Name, Key: key, Address: address, MapURL: mapURL}
	if address == scraper.AddressNotFound || mapURL == scraper.MapNotFound {
		return b, ErrIncompleteInfo
	}
	return b, nil
}
