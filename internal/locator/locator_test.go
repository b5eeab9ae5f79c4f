package locator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/campus-locator/internal/config"
	"mspro-labs/campus-locator/internal/db"
	"mspro-labs/campus-locator/internal/fetcher"
	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/ocr"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(context.Context, string) (string, error) { return f.text, f.err }

type fakeRenderer struct {
	calls []models.Building
}

func (f *fakeRenderer) Render(b models.Building) (string, error) {
	f.calls = append(f.calls, b)
	return "/tmp/campus-location-test.html", nil
}

// campusServer serves an EER detail page and a PMA page without a map.
func campusServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bldg/EER", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<h3>EER</h3><h3>2501 Speedway, Austin, TX 78712</h3><iframe src="https://maps.test/eer"></iframe>`))
	})
	mux.HandleFunc("/bldg/PMA", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<h3>2515 Speedway, Austin, TX 78712</h3>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newLocator(t *testing.T, srv *httptest.Server, text string) (*Locator, *fakeRenderer) {
	t.Helper()
	site, err := config.ParseSiteConfig([]byte("base_url: " + srv.URL + "\ndirectory_path: /facilities/\n"))
	require.NoError(t, err)

	dir := models.Directory{
		"EER": {Key: "EER", URL: srv.URL + "/bldg/EER", Name: "Engineering Education and Research Center"},
		"PMA": {Key: "PMA", URL: srv.URL + "/bldg/PMA", Name: "Robert Lee Moore Hall"},
	}
	renderer := &fakeRenderer{}
	return &Locator{
		Extractor: fakeExtractor{text: text},
		Directory: func(context.Context) (models.Directory, error) { return dir, nil },
		Fetcher:   fetcher.NewHTTPFetcher(5*time.Second, ""),
		Site:      site,
		Renderer:  renderer,
	}, renderer
}

func TestLocate_EndToEnd(t *testing.T) {
	l, renderer := newLocator(t, campusServer(t), "EER")

	res, err := l.Locate(context.Background(), "eer.jpg")
	require.NoError(t, err)

	require.Len(t, renderer.calls, 1)
	assert.Equal(t, models.Building{
		Name:    "Engineering Education and Research Center",
		Key:     "EER",
		Address: "2501 Speedway, Austin, TX 78712",
		MapURL:  "https://maps.test/eer",
	}, renderer.calls[0])
	assert.Equal(t, "EER", res.OCRText)
	assert.Equal(t, "/tmp/campus-location-test.html", res.PagePath)
}

func TestLocate_NotFound(t *testing.T) {
	l, renderer := newLocator(t, campusServer(t), "GDC")

	res, err := l.Locate(context.Background(), "gdc.jpg")
	assert.True(t, errors.Is(err, ErrBuildingNotFound))
	assert.Equal(t, "GDC", res.OCRText)
	assert.Empty(t, renderer.calls)
}

func TestLocate_IncompleteInfo(t *testing.T) {
	l, renderer := newLocator(t, campusServer(t), "PMA")

	_, err := l.Locate(context.Background(), "pma.jpg")
	assert.True(t, errors.Is(err, ErrIncompleteInfo))
	assert.Empty(t, renderer.calls)
}

func TestLocate_OCRFailurePassesThrough(t *testing.T) {
	l, renderer := newLocator(t, campusServer(t), "")
	l.Extractor = fakeExtractor{err: ocr.ErrNoText}

	res, err := l.Locate(context.Background(), "blank.jpg")
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ocr.ErrNoText))
	assert.Empty(t, renderer.calls)
}

func TestLocate_RecordsHistory(t *testing.T) {
	store, err := db.Connect(t.TempDir() + "/campus.db")
	require.NoError(t, err)
	defer store.Close()

	l, _ := newLocator(t, campusServer(t), "eer")
	l.Store = store

	_, err = l.Locate(context.Background(), "eer.jpg")
	require.NoError(t, err)

	entries, err := db.ListLookups(store)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "eer", entries[0].OCRText)
	assert.Equal(t, "EER", entries[0].Key)
}

func TestStoredDirectory(t *testing.T) {
	store, err := db.Connect(t.TempDir() + "/campus.db")
	require.NoError(t, err)
	defer store.Close()

	_, err = StoredDirectory(store)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory sync")

	_, err = db.SaveDirectory(store, models.Directory{"EER": {Key: "EER", URL: "u", Name: "n"}})
	require.NoError(t, err)

	dir, err := StoredDirectory(store)(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dir, "EER")
}
