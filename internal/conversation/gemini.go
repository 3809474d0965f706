package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const polishSystemPrompt = "You rewrite WhatsApp replies for a South African event ticketing " +
	"assistant. Keep every number, amount, URL and ticket code exactly as given. " +
	"Keep it short and friendly. Return only the rewritten message."

// GeminiPolisher implements Polisher using Google's Gemini API.
type GeminiPolisher struct {
	client  *genai.Client
	modelID string
}

// NewGeminiPolisher creates a Gemini-backed polisher.
func NewGeminiPolisher(ctx context.Context, apiKey, modelID string) (*GeminiPolisher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	return &GeminiPolisher{client: client, modelID: modelID}, nil
}

// Polish asks the model for a warmer rendition of the draft. Callers
// treat any error as "use the draft".
func (p *GeminiPolisher) Polish(ctx context.Context, draft string) (string, error) {
	model := p.client.GenerativeModel(p.modelID)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(300)
	model.SystemInstruction = genai.NewUserContent(genai.Text(polishSystemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(draft))
	if err != nil {
		return "", fmt.Errorf("conversation: gemini polish failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("conversation: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("conversation: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// Close releases resources held by the Gemini client.
func (p *GeminiPolisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
