package ai

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
)

const signPrompt = `This photo shows the name or abbreviation of a university building on a sign or wall.
Transcribe only the building name or abbreviation exactly as written. Reply with the text alone, no quotes or commentary.
If there is no readable text, reply with nothing.`

// Client wraps the GenAI client.
type Client struct {
	genaiClient *genai.Client
	model       *genai.GenerativeModel
}

// NewClient creates a connected AI client for the given model.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, eris.New("ai: GEMINI_API_KEY (or gemini_api_key) is required for the gemini engine")
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, eris.Wrap(err, "ai: create client")
	}

	model := c.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Client{
		genaiClient: c,
		model:       model,
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// ReadSign asks the model to transcribe the building name in an image.
// format is the image subtype, e.g. "png" or "jpeg".
func (c *Client) ReadSign(ctx context.Context, format string, image []byte) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(signPrompt))
	if err != nil {
		return "", eris.Wrap(err, "ai: generate content")
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
