package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
)

// Tesseract runs the local Tesseract engine through gosseract.
type Tesseract struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewTesseract creates a Tesseract engine for the given language (e.g. "eng").
func NewTesseract(language string) *Tesseract {
	return &Tesseract{language: language, clientFactory: gosseract.NewClient}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs one recognition pass over png.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := t.clientFactory()
	defer client.Close()

	if t.language != "" {
		if err := client.SetLanguage(t.language); err != nil {
			return "", eris.Wrap(err, "tesseract: set language")
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", eris.Wrap(err, "tesseract: set image")
	}
	text, err := client.Text()
	if err != nil {
		return "", eris.Wrap(err, "tesseract: text")
	}
	return text, nil
}
