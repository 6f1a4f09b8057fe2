package styler

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/models"
)

const openAIModel = "gpt-4o-mini"

// OpenAIStyler generates outfit recommendations using the OpenAI API.
type OpenAIStyler struct {
	client *openai.Client
}

// NewOpenAIStyler creates an OpenAI-backed styler.
func NewOpenAIStyler() (*OpenAIStyler, error) {
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return &OpenAIStyler{client: openai.NewClient(config.OpenAIAPIKey)}, nil
}

// Style asks OpenAI to pick an outfit from the given items.
func (o *OpenAIStyler) Style(ctx context.Context, items []models.StylingItem, sc models.StyleContext) (models.OutfitRecommendation, error) {
	prompt, err := buildPrompt(items, sc)
	if err != nil {
		return models.OutfitRecommendation{}, err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openAIModel,
		MaxTokens:   1000,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert AI fashion stylist. Always respond with valid JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return models.OutfitRecommendation{}, attributor.ClassifyOpenAI(err)
	}

	if len(resp.Choices) == 0 {
		return models.OutfitRecommendation{}, &attributor.InvalidResponseError{Err: fmt.Errorf("no choices returned")}
	}
	return parseRecommendation(resp.Choices[0].Message.Content)
}
