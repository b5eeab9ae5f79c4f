// Package ocr turns a photo of a building sign into filtered text.
package ocr

import (
	"bytes"
	"context"

	"github.com/disintegration/imaging"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"mspro-labs/campus-locator/internal/textnorm"
)

// Engine recognizes text in a PNG-encoded image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Extractor preprocesses an image and runs it through an Engine.
type Extractor struct {
	engine Engine
}

// NewExtractor wraps engine.
func NewExtractor(engine Engine) *Extractor {
	return &Extractor{engine: engine}
}

// Extract loads the image at path, applies its EXIF orientation, converts it
// to grayscale, recognizes it
// and keeps letters, whitespace and ampersands. It returns ErrUnreadableImage
// or ErrNoText for the two reportable failures.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	log := zap.L().Named("ocr")

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		log.Debug("open image failed", zap.String("path", path), zap.Error(err))
		return "", eris.Wrapf(ErrUnreadableImage, "ocr: open %s: %v", path, err)
	}
	gray := imaging.Grayscale(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return "", eris.Wrap(err, "ocr: encode grayscale")
	}

	raw, err := e.engine.Recognize(ctx, buf.Bytes())
	if err != nil {
		return "", eris.Wrapf(err, "ocr: %s recognize", e.engine.Name())
	}

	text := textnorm.FilterOCR(raw)
	log.Debug("recognized", zap.String("engine", e.engine.Name()), zap.String("raw", snippet(raw, 120)), zap.String("filtered", text))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// snippet shortens s for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
