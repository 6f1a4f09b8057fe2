package attributor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/models"
)

const openAIModel = "gpt-4o-mini"

// OpenAIAttributor extracts clothing attributes using the OpenAI vision API.
type OpenAIAttributor struct {
	client *openai.Client
}

// NewOpenAIAttributor creates an OpenAI-backed attributor.
func NewOpenAIAttributor() (*OpenAIAttributor, error) {
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return &OpenAIAttributor{client: openai.NewClient(config.OpenAIAPIKey)}, nil
}

// Extract sends the image as a data URL with the extraction prompt and parses
// the JSON reply.
func (o *OpenAIAttributor) Extract(ctx context.Context, imageData []byte, filename string) (models.Attributes, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openAIModel,
		MaxTokens: 1000,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return models.Attributes{}, ClassifyOpenAI(err)
	}

	if len(resp.Choices) == 0 {
		return models.Attributes{}, &InvalidResponseError{Err: fmt.Errorf("no choices returned")}
	}
	return ParseAttributes(resp.Choices[0].Message.Content, filename)
}

// ClassifyOpenAI uses the API error status code when present and falls
// back to message sniffing for transport failures.
func ClassifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &RateLimitError{RetryAfter: 2 * time.Second, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &VendorUnavailableError{Err: err}
		default:
			return err
		}
	}
	return Classify(err)
}
