// Package styler holds the outfit-recommendation vendors. They share the
// attributor package's error taxonomy, so the same retry policy governs both
// extraction and styling calls.
package styler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/models"
)

// Styler defines the interface for all outfit-recommendation vendors
type Styler interface {
	// Style selects a compatible outfit from the given closet items
	Style(ctx context.Context, items []models.StylingItem, sc models.StyleContext) (models.OutfitRecommendation, error)
}

const promptTemplate = `You are an expert AI fashion stylist with deep knowledge of color theory, seasonal trends, and style coordination. I will provide you with a JSON list of clothing items available in my digital closet.

Your task is to create a stylish, modern, and coherent outfit suitable for a '%s in %s'. The weather conditions are: %s.

Here is my closet (JSON format):
---
%s
---

SELECTION RULES:
1. MANDATORY: Select exactly one 'top' and one 'bottom' from the provided list
2. OPTIONAL: Include an 'outerwear' piece if it enhances the outfit or suits the weather
3. STRICT REQUIREMENT: Only use items that exist in the provided JSON list
4. IMAGE PRECISION: Use the EXACT "image" field value from selected items
5. NO SHOES: The list contains no footwear, so don't include shoes in selections
6. JSON ONLY: Your response must be pure JSON with no additional text

Required output format (valid JSON only):
{
    "top": "exact_image_filename_from_top_item",
    "bottom": "exact_image_filename_from_bottom_item",
    "outerwear": "exact_image_filename_from_outerwear_item_or_null",
    "justification": "Short explanation of why this outfit works together (color theory, fit, occasion suitability)",
    "style_notes": "Short Professional styling tips about why this combination works (textures, proportions, versatility)",
    "other_accessories": "Specific accessory recommendations (jewelry, bags, scarves) that would complete this look",
    "weather_consideration": "How this outfit addresses the specified weather conditions"
}

CRITICAL REMINDER: Use exact "image" field values from the JSON items. For example, if selecting an item with "image": "top_1_shirt.jpg", use exactly "top_1_shirt.jpg" in your response.

Generate ONLY the JSON response now:`

// buildPrompt renders the shared styling prompt for all vendors.
func buildPrompt(items []models.StylingItem, sc models.StyleContext) (string, error) {
	clothesJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode closet items: %w", err)
	}
	return fmt.Sprintf(promptTemplate, sc.Occasion, sc.City, sc.Weather, clothesJSON), nil
}

// parseRecommendation decodes a vendor response into an outfit, salvaging the
// first {...} block when the model wraps it in prose. A recommendation
// without both top and bottom fails structural validation.
func parseRecommendation(responseText string) (models.OutfitRecommendation, error) {
	raw := strings.TrimSpace(responseText)

	jsonStr := raw
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		jsonStr = raw[start : end+1]
	}

	var outfit models.OutfitRecommendation
	if err := json.Unmarshal([]byte(jsonStr), &outfit); err != nil {
		return models.OutfitRecommendation{}, &attributor.InvalidResponseError{Raw: raw, Err: err}
	}
	if outfit.Top == "" || outfit.Bottom == "" {
		return models.OutfitRecommendation{}, &attributor.InvalidResponseError{
			Raw: raw,
			Err: fmt.Errorf("recommendation missing top or bottom"),
		}
	}
	// Models follow the template literally and emit the string "null" for no
	// outerwear.
	if strings.EqualFold(outfit.Outerwear, "null") || strings.EqualFold(outfit.Outerwear, "none") {
		outfit.Outerwear = ""
	}
	return outfit, nil
}
