package cmd

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"mspro-labs/campus-locator/internal/ai"
	"mspro-labs/campus-locator/internal/db"
	"mspro-labs/campus-locator/internal/fetcher"
	"mspro-labs/campus-locator/internal/locator"
	"mspro-labs/campus-locator/internal/ocr"
)

// closers collects cleanup funcs for resources opened by a command.
type closers []func()

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func newFetcher(cmd *cobra.Command, cl *closers) fetcher.Fetcher {
	timeout := time.Duration(appCfg.Fetch.TimeoutSecs) * time.Second
	browserFetch, _ := cmd.Flags().GetBool("browser-fetch")
	if browserFetch || appCfg.Fetch.Mode == "browser" {
		bf := fetcher.NewBrowserFetcher(timeout)
		*cl = append(*cl, func() { _ = bf.Close() })
		return bf
	}
	return fetcher.NewHTTPFetcher(timeout, appCfg.Fetch.UserAgent)
}

func newExtractor(ctx context.Context, cl *closers) (*ocr.Extractor, error) {
	switch appCfg.OCR.Engine {
	case "gemini":
		client, err := ai.NewClient(ctx, appCfg.GeminiAPIKey, appCfg.OCR.GeminiModel)
		if err != nil {
			return nil, err
		}
		*cl = append(*cl, client.Close)
		return ocr.NewExtractor(ocr.NewGemini(client)), nil
	case "tesseract":
		return ocr.NewExtractor(ocr.NewTesseract(appCfg.OCR.Language)), nil
	default:
		return nil, eris.Errorf("unknown OCR engine %q", appCfg.OCR.Engine)
	}
}

// openStore connects to the snapshot store when --db is set; it returns nil
// otherwise. required makes a missing --db an error.
func openStore(cl *closers, required bool) (*sql.DB, error) {
	if appCfg.DBPath == "" {
		if required {
			return nil, eris.New("this command needs a snapshot store; pass --db or set CAMPUSLOC_DB_PATH")
		}
		return nil, nil
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		return nil, err
	}
	*cl = append(*cl, func() { _ = database.Close() })
	return database, nil
}

// directorySource picks the live scrape or, with --offline, the stored snapshot.
func directorySource(cmd *cobra.Command, f fetcher.Fetcher, store *sql.DB) (locator.DirectorySource, error) {
	offline, _ := cmd.Flags().GetBool("offline")
	if !offline {
		return locator.ScrapedDirectory(f, siteCfg), nil
	}
	if store == nil {
		return nil, eris.New("--offline needs a snapshot store; pass --db")
	}
	return locator.StoredDirectory(store), nil
}
