package llm

import (
	"context"
	"fmt"
	"strings"

	"ustad/internal/config"
)

// NewClient builds the provider named in config. OpenAI-compatible
// providers share the OpenAIClient; Gemini goes through the official
// SDK.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "openrouter", "groq", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key not configured for provider %q", cfg.Provider)
		}
		return NewOpenAIClient(cfg), nil
	case "gemini", "google":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
