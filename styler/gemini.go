package styler

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/models"
)

const geminiModel = "gemini-2.0-flash"

// GeminiStyler generates outfit recommendations using the Gemini API.
type GeminiStyler struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiStyler creates a Gemini-backed styler.
func NewGeminiStyler(ctx context.Context) (*GeminiStyler, error) {
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiStyler{
		client: client,
		model:  client.GenerativeModel(geminiModel),
	}, nil
}

// Style asks Gemini to pick an outfit from the given items.
func (g *GeminiStyler) Style(ctx context.Context, items []models.StylingItem, sc models.StyleContext) (models.OutfitRecommendation, error) {
	prompt, err := buildPrompt(items, sc)
	if err != nil {
		return models.OutfitRecommendation{}, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.OutfitRecommendation{}, attributor.Classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return models.OutfitRecommendation{}, &attributor.InvalidResponseError{Err: fmt.Errorf("no content generated")}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return parseRecommendation(string(text))
		}
	}
	return models.OutfitRecommendation{}, &attributor.InvalidResponseError{Err: fmt.Errorf("response contained no text part")}
}

// Close releases the underlying API client.
func (g *GeminiStyler) Close() error {
	return g.client.Close()
}
