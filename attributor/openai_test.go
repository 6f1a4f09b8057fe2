package attributor

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyOpenAIStatusCodes(t *testing.T) {
	rateLimited := ClassifyOpenAI(&openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"})
	var rl *RateLimitError
	assert.True(t, errors.As(rateLimited, &rl))
	assert.Positive(t, rl.BackoffHint())
	assert.True(t, IsRetryable(rateLimited))

	serverErr := ClassifyOpenAI(&openai.APIError{HTTPStatusCode: 503, Message: "overloaded"})
	var vu *VendorUnavailableError
	assert.True(t, errors.As(serverErr, &vu))

	authErr := ClassifyOpenAI(&openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key"})
	assert.False(t, IsRetryable(authErr))
}

func TestClassifyOpenAITransportFallback(t *testing.T) {
	classified := ClassifyOpenAI(errors.New("dial tcp: connection refused"))
	assert.True(t, IsRetryable(classified))
}
