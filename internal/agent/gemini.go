package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider answers transcript fragments with a Gemini model.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider bound to the given model.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Respond sends the fragment to the model and returns its reply.
func (p *GeminiProvider) Respond(ctx context.Context, text string) (string, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(text), nil)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}
