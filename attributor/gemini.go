package attributor

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/models"
)

const geminiModel = "gemini-2.0-flash"

// GeminiAttributor extracts clothing attributes using the Gemini vision API.
type GeminiAttributor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAttributor creates a Gemini-backed attributor.
func NewGeminiAttributor(ctx context.Context) (*GeminiAttributor, error) {
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAttributor{
		client: client,
		model:  client.GenerativeModel(geminiModel),
	}, nil
}

// Extract sends the image with the extraction prompt and parses the JSON reply.
func (g *GeminiAttributor) Extract(ctx context.Context, imageData []byte, filename string) (models.Attributes, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(extractionPrompt),
		genai.ImageData("jpeg", imageData),
	)
	if err != nil {
		return models.Attributes{}, Classify(err)
	}

	text, err := geminiResponseText(resp)
	if err != nil {
		return models.Attributes{}, err
	}
	return ParseAttributes(text, filename)
}

// Close releases the underlying API client.
func (g *GeminiAttributor) Close() error {
	return g.client.Close()
}

// geminiResponseText pulls the text part out of a generate-content response.
func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &InvalidResponseError{Err: fmt.Errorf("no content generated")}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", &InvalidResponseError{Err: fmt.Errorf("response contained no text part")}
}
