package llm

import (
	"context"
	"strings"

	"comidacasa/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini API client. A missing API key is a
// fatal configuration error, never retried.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (Generator, func() error, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, nil, &Error{Kind: KindConfigurationMissing, Message: msgMissingKey}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, nil, Normalize(err)
	}

	c := &geminiClient{client: client, model: cfg.GeminiModel}
	return c, client.Close, nil
}

// GenerateJSON sends the prompt with a JSON response constraint and returns
// the raw generated text.
func (c *geminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", Normalize(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Kind: KindEmptyResponse, Message: msgEmpty}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", &Error{Kind: KindEmptyResponse, Message: msgEmpty}
	}
	return out, nil
}
