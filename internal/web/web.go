package web

import (
	"embed"
	"html/template"
	"path"
)

//go:embed templates
var assets embed.FS

// Template parses the named files from the embedded templates directory.
// The first name becomes the template's name, so pages that extend the
// layout list "base.html" first.
func Template(names ...string) (*template.Template, error) {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = path.Join("templates", n)
	}
	return template.ParseFS(assets, patterns...)
}
