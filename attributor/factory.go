package attributor

import (
	"context"
	"fmt"
	"strings"
)

// New returns the attributor for the configured vendor name. Gemini is the
// default when vendor is empty.
func New(ctx context.Context, vendor string) (Attributor, error) {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case "", "gemini":
		return NewGeminiAttributor(ctx)
	case "openai":
		return NewOpenAIAttributor()
	default:
		return nil, fmt.Errorf("unsupported attribution vendor: %s", vendor)
	}
}
