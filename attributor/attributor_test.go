package attributor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{"identifier":"top","category":"T-Shirt","gender":"unisex","primary_color":"Navy","style":"Casual","occasion":"Everyday","weather":"Warm","fit":"Regular Fit","sleeve_length":"Short Sleeve","description":"A navy cotton t-shirt."}`

func TestParseAttributesValidJSON(t *testing.T) {
	attrs, err := ParseAttributes(validResponse, "shirt.jpg")
	require.NoError(t, err)

	assert.Equal(t, "shirt.jpg", attrs.Image)
	assert.Equal(t, "top", attrs.Identifier)
	assert.Equal(t, "T-Shirt", attrs.Category)
	assert.Equal(t, "Navy", attrs.PrimaryColor)
}

func TestParseAttributesSalvagesWrappedJSON(t *testing.T) {
	wrapped := "Sure! Here is the analysis:\n```json\n" + validResponse + "\n```\nLet me know if you need anything else."

	attrs, err := ParseAttributes(wrapped, "shirt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "T-Shirt", attrs.Category)
}

func TestParseAttributesRejectsNonJSON(t *testing.T) {
	_, err := ParseAttributes("I cannot analyze this image.", "shirt.jpg")

	var invalid *InvalidResponseError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Raw, "cannot analyze")
}

func TestParseAttributesRejectsMissingRequiredFields(t *testing.T) {
	_, err := ParseAttributes(`{"gender":"unisex","primary_color":"Navy"}`, "shirt.jpg")

	var invalid *InvalidResponseError
	require.True(t, errors.As(err, &invalid))
	assert.False(t, IsRetryable(err))
}

func TestParseAttributesEmptyResponse(t *testing.T) {
	_, err := ParseAttributes("", "shirt.jpg")

	var invalid *InvalidResponseError
	assert.True(t, errors.As(err, &invalid))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RateLimitError{Err: errors.New("429")}))
	assert.True(t, IsRetryable(&VendorUnavailableError{Err: errors.New("503")}))
	assert.False(t, IsRetryable(&InvalidResponseError{Err: errors.New("bad json")}))
	assert.False(t, IsRetryable(errors.New("invalid api key")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"quota exceeded", errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"unavailable", errors.New("rpc error: code = Unavailable desc = service unavailable"), true},
		{"timeout", errors.New("context deadline exceeded (Client.Timeout exceeded)"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"server error", errors.New("googleapi: Error 500: internal error"), true},
		{"bad api key", errors.New("API key not valid"), false},
		{"permission denied", errors.New("rpc error: code = 403 permission denied"), false},
		{"unknown defaults to transient", errors.New("something odd happened"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify(tt.err)
			assert.Equal(t, tt.retryable, IsRetryable(classified))
			assert.True(t, errors.Is(classified, tt.err) || classified == tt.err)
		})
	}
}

func TestClassifyRateLimitBeatsServerError(t *testing.T) {
	classified := Classify(errors.New("Error 429: too many requests, retry later"))

	var rateLimit *RateLimitError
	assert.True(t, errors.As(classified, &rateLimit))
}

func TestRateLimitErrorBackoffHint(t *testing.T) {
	err := &RateLimitError{RetryAfter: 7 * time.Second, Err: errors.New("429")}
	assert.Equal(t, 7*time.Second, err.BackoffHint())
}
