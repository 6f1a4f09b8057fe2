package styler

import (
	"context"
	"fmt"
	"strings"
)

// New returns the styler for the configured vendor name. Gemini is the
// default when vendor is empty.
func New(ctx context.Context, vendor string) (Styler, error) {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case "", "gemini":
		return NewGeminiStyler(ctx)
	case "openai":
		return NewOpenAIStyler()
	default:
		return nil, fmt.Errorf("unsupported styler vendor: %s", vendor)
	}
}
