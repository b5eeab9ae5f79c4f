package ocr

import (
	"context"

	"mspro-labs/campus-locator/internal/ai"
)

// Gemini reads sign text with a Gemini multimodal model.
type Gemini struct {
	client *ai.Client
}

// NewGemini wraps an ai.Client. The caller owns the client and closes it.
func NewGemini(client *ai.Client) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Recognize(ctx context.Context, png []byte) (string, error) {
	return g.client.ReadSign(ctx, "png", png)
}
