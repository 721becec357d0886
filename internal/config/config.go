// Package config loads ustad configuration from .ustad/config.json.
// Missing config falls back to defaults; environment variables override
// file values (USTAD_* first, provider-native names second).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig holds all ustad configuration.
type UserConfig struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	LLM      LLMConfig      `json:"llm"`
	Search   SearchConfig   `json:"search"`
	Dialogue DialogueConfig `json:"dialogue"`
	Logging  LoggingConfig  `json:"logging"`
}

// Default returns a UserConfig with sensible defaults.
func Default() *UserConfig {
	return &UserConfig{
		Name:     "ustad",
		Version:  "1.0.0",
		LLM:      DefaultLLMConfig(),
		Search:   DefaultSearchConfig(),
		Dialogue: DefaultDialogueConfig(),
		Logging:  DefaultLoggingConfig(),
	}
}

// Load reads .ustad/config.json from the workspace, applies defaults for
// missing sections, then applies environment overrides. A missing file is
// not an error; defaults plus env are returned.
func Load(workspace string) (*UserConfig, error) {
	cfg := Default()

	path := filepath.Join(workspace, ".ustad", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config back to .ustad/config.json.
func (c *UserConfig) Save(workspace string) error {
	dir := filepath.Join(workspace, ".ustad")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// fillDefaults patches zero values left by a partial config file.
func (c *UserConfig) fillDefaults() {
	if c.Name == "" {
		c.Name = "ustad"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMConfig().Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModelFor(c.LLM.Provider)
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMConfig().BaseURL
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = DefaultLLMConfig().TimeoutSeconds
	}
	if c.Dialogue.ConvergenceThreshold <= 0 {
		c.Dialogue.ConvergenceThreshold = DefaultDialogueConfig().ConvergenceThreshold
	}
	if c.Dialogue.RoundTimeoutSeconds <= 0 {
		c.Dialogue.RoundTimeoutSeconds = DefaultDialogueConfig().RoundTimeoutSeconds
	}
	if c.Dialogue.MaxPerspectives <= 0 {
		c.Dialogue.MaxPerspectives = DefaultDialogueConfig().MaxPerspectives
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = DefaultSearchConfig().BaseURL
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = DefaultSearchConfig().MaxResults
	}
}

// applyEnvOverrides lets environment variables win over file values.
func (c *UserConfig) applyEnvOverrides() {
	if v := os.Getenv("USTAD_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("USTAD_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("USTAD_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("USTAD_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}

	// Provider-native key names as fallback
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if v := os.Getenv("USTAD_TAVILY_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	}
}
