// Package render writes the location page for a resolved building and opens
// it in the default browser.
package render

import (
	"html/template"
	"io"
	"os"

	"github.com/pkg/browser"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/web"
)

// Opener shows a local file to the user.
type Opener func(path string) error

// BrowserOpener opens path in the system default browser.
func BrowserOpener(path string) error {
	return browser.OpenFile(path)
}

// Renderer fills the location template.
type Renderer struct {
	tmpl      *template.Template
	outputDir string
	open      Opener
}

// New parses the embedded location template. outputDir "" means the OS temp
// dir; a nil open skips opening the file.
func New(outputDir string, open Opener) (*Renderer, error) {
	tmpl, err := web.Template("location.html")
	if err != nil {
		return nil, eris.Wrap(err, "render: parse location template")
	}
	return &Renderer{tmpl: tmpl, outputDir: outputDir, open: open}, nil
}

// Write renders the page for b to w.
func (r *Renderer) Write(w io.Writer, b models.Building) error {
	if err := r.tmpl.Execute(w, b); err != nil {
		return eris.Wrap(err, "render: execute template")
	}
	return nil
}

// Render writes the page to a new temporary .html file and opens it.
// The file is left in place and its path returned.
func (r *Renderer) Render(b models.Building) (string, error) {
	f, err := os.CreateTemp(r.outputDir, "campus-location-*.html")
	if err != nil {
		return "", eris.Wrap(err, "render: create temp file")
	}
	path := f.Name()

	if err := r.Write(f, b); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrap(err, "render: close temp file")
	}
	zap.L().Named("render").Debug("page written", zap.String("path", path))

	if r.open != nil {
		if err := r.open(path); err != nil {
			return path, eris.Wrapf(err, "render: open %s", path)
		}
	}
	return path, nil
}
