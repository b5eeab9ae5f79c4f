package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/campus-locator/internal/models"
)

var pma = models.Building{
	Name:    "Robert Lee Moore Hall",
	Key:     "PMA",
	Address: "2515 Speedway, Austin, TX 78712",
	MapURL:  "https://www.google.com/maps/embed?pb=abc",
}

func TestWrite(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, pma))
	out := buf.String()

	assert.Contains(t, out, "You are currently located at the Robert Lee Moore Hall (PMA)")
	assert.Contains(t, out, "Address: 2515 Speedway, Austin, TX 78712")
	assert.Contains(t, out, `src="https://www.google.com/maps/embed?pb=abc"`)
	assert.Contains(t, out, "<title>Campus Location</title>")
}

func TestWrite_EscapesScrapedMarkup(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	b := pma
	b.Address = `<script>alert(1)</script>`
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, b))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRender_WritesAndOpens(t *testing.T) {
	dir := t.TempDir()
	var opened string
	r, err := New(dir, func(path string) error {
		opened = path
		return nil
	})
	require.NoError(t, err)

	path, err := r.Render(pma)
	require.NoError(t, err)

	assert.Equal(t, path, opened)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".html"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(PMA)")
}

func TestRender_OpenFailure(t *testing.T) {
	r, err := New(t.TempDir(), func(string) error { return errors.New("no display") })
	require.NoError(t, err)

	path, err := r.Render(pma)
	require.Error(t, err)
	assert.FileExists(t, path)
}
