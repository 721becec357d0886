package config

import "time"

// LLMConfig configures the text-generation capability.
type LLMConfig struct {
	Provider       string `json:"provider"` // openai, gemini
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model"`
	BaseURL        string `json:"base_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// MaxTokens caps each perspective statement. The dialogue asks for
	// 2-3 sentence statements, so this stays small.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature for dialogue generation. Higher than typical so the
	// perspectives actually diverge.
	Temperature float64 `json:"temperature,omitempty"`
}

// DefaultLLMConfig returns sensible defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		BaseURL:        "https://api.openai.com/v1",
		TimeoutSeconds: 120,
		MaxTokens:      400,
		Temperature:    0.8,
	}
}

// Timeout returns the request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func defaultModelFor(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}

// SearchConfig configures the search/verification capability.
type SearchConfig struct {
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// DefaultSearchConfig returns sensible defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		BaseURL:    "https://api.tavily.com",
		MaxResults: 3,
	}
}
