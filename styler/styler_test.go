package styler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/models"
)

const validRecommendation = `{"top":"shirt.jpg","bottom":"jeans.jpg","outerwear":"jacket.jpg","justification":"neutral palette","style_notes":"roll the sleeves","other_accessories":"leather watch","weather_consideration":"layerable for cool evenings"}`

func TestParseRecommendationValid(t *testing.T) {
	outfit, err := parseRecommendation(validRecommendation)
	require.NoError(t, err)

	assert.Equal(t, "shirt.jpg", outfit.Top)
	assert.Equal(t, "jeans.jpg", outfit.Bottom)
	assert.Equal(t, "jacket.jpg", outfit.Outerwear)
	assert.Equal(t, []string{"shirt.jpg", "jeans.jpg", "jacket.jpg"}, outfit.ItemFilenames())
}

func TestParseRecommendationSalvagesWrappedJSON(t *testing.T) {
	wrapped := "Here is your outfit:\n```json\n" + validRecommendation + "\n```"

	outfit, err := parseRecommendation(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "shirt.jpg", outfit.Top)
}

func TestParseRecommendationNullOuterwear(t *testing.T) {
	outfit, err := parseRecommendation(`{"top":"shirt.jpg","bottom":"jeans.jpg","outerwear":"null"}`)
	require.NoError(t, err)

	assert.Empty(t, outfit.Outerwear)
	assert.Equal(t, []string{"shirt.jpg", "jeans.jpg"}, outfit.ItemFilenames())
}

func TestParseRecommendationMissingMandatorySlots(t *testing.T) {
	_, err := parseRecommendation(`{"top":"shirt.jpg"}`)

	var invalid *attributor.InvalidResponseError
	require.True(t, errors.As(err, &invalid))
	assert.False(t, attributor.IsRetryable(err))
}

func TestParseRecommendationNonJSON(t *testing.T) {
	_, err := parseRecommendation("I would suggest something cozy.")

	var invalid *attributor.InvalidResponseError
	assert.True(t, errors.As(err, &invalid))
}

func TestBuildPromptIncludesContextAndItems(t *testing.T) {
	items := []models.StylingItem{
		{Image: "shirt.jpg", Identifier: "top", Category: "T-Shirt", PrimaryColor: "Navy"},
	}
	sc := models.StyleContext{City: "Toronto", Weather: "light rain", Occasion: "dinner date"}

	prompt, err := buildPrompt(items, sc)
	require.NoError(t, err)

	assert.Contains(t, prompt, "dinner date in Toronto")
	assert.Contains(t, prompt, "light rain")
	assert.Contains(t, prompt, `"shirt.jpg"`)
	assert.Contains(t, prompt, `"Navy"`)
}
