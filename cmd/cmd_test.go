package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/campus-locator/internal/config"
	"mspro-labs/campus-locator/internal/fetcher"
	"mspro-labs/campus-locator/internal/locator"
	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/ocr"
	"mspro-labs/campus-locator/internal/render"
)

func TestReportMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
		ok   bool
	}{
		{eris.Wrap(ocr.ErrUnreadableImage, "ocr: open x"), "Error: Unable to read the image. Please check the file path.", true},
		{ocr.ErrNoText, "No text detected in the image.", true},
		{locator.ErrBuildingNotFound, "Building not found. Please check your input.", true},
		{locator.ErrIncompleteInfo, "Unable to retrieve full information for the building.", true},
		{errors.New("connection refused"), "", false},
		{nil, "", false},
	}
	for _, tc := range tests {
		msg, ok := reportMessage(tc.err)
		assert.Equal(t, tc.ok, ok, "err=%v", tc.err)
		assert.Equal(t, tc.want, msg)
	}
}

func TestImagePathFrom(t *testing.T) {
	path, err := imagePathFrom([]string{"/photos/PMA.jpg"}, strings.NewReader(""), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "/photos/PMA.jpg", path)

	var prompt bytes.Buffer
	path, err = imagePathFrom(nil, strings.NewReader("\"C:\\photos\\EER.jpg\"\n"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, `C:\photos\EER.jpg`, path)
	assert.Equal(t, "Please enter the full path to the image file: ", prompt.String())

	path, err = imagePathFrom(nil, strings.NewReader("/no/newline.png"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "/no/newline.png", path)
}

func TestFilterEntries(t *testing.T) {
	dir := models.Directory{
		"PMA":                   {URL: "u1", Name: "Robert Lee Moore Hall"},
		"ROBERT LEE MOORE HALL": {URL: "u1", Name: "Robert Lee Moore Hall"},
		"EER":                   {URL: "u2", Name: "Engineering Education and Research Center"},
	}

	all := filterEntries(dir, "")
	require.Len(t, all, 3)
	assert.Equal(t, "EER", all[0].Key)
	assert.Equal(t, "PMA", all[1].Key)

	moore := filterEntries(dir, "moore")
	require.Len(t, moore, 2)
	assert.Equal(t, "PMA", moore[0].Key)
}

func TestServeMux(t *testing.T) {
	campus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bldg/EER":
			_, _ = w.Write([]byte(`<h3>2501 Speedway, Austin, TX 78712</h3><iframe src="https://maps.test/eer"></iframe>`))
		default:
			_, _ = w.Write([]byte(`<p>no details</p>`))
		}
	}))
	defer campus.Close()

	site, err := config.ParseSiteConfig([]byte("base_url: " + campus.URL + "\ndirectory_path: /facilities/\n"))
	require.NoError(t, err)
	dir := models.Directory{
		"EER": {Key: "EER", URL: campus.URL + "/bldg/EER", Name: "Engineering Education and Research Center"},
		"PMA": {Key: "PMA", URL: campus.URL + "/bldg/PMA", Name: "Robert Lee Moore Hall"},
	}
	renderer, err := render.New("", nil)
	require.NoError(t, err)
	l := &locator.Locator{Fetcher: fetcher.NewHTTPFetcher(5*time.Second, ""), Site: site}

	mux, err := newServeMux(dir, l, renderer)
	require.NoError(t, err)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, status := get(t, srv.URL+"/?q=engineering")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Engineering Education and Research Center")
	assert.NotContains(t, body, "Robert Lee Moore Hall")

	body, status = get(t, srv.URL+"/building?key=eer")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "You are currently located at the Engineering Education and Research Center (EER)")
	assert.Contains(t, body, "https://maps.test/eer")

	_, status = get(t, srv.URL+"/building?key=PMA")
	assert.Equal(t, http.StatusBadGateway, status)

	_, status = get(t, srv.URL+"/building?key=XYZ")
	assert.Equal(t, http.StatusNotFound, status)

	_, status = get(t, srv.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func get(t *testing.T, url string) (string, int) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b), resp.StatusCode
}
