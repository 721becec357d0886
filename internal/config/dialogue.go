package config

import "time"

// DialogueConfig configures round orchestration.
type DialogueConfig struct {
	// ConvergenceThreshold is the consensus confidence at or above which
	// the final synthesis round is skipped. Range (0, 1].
	ConvergenceThreshold float64 `json:"convergence_threshold"`

	// RoundTimeoutSeconds bounds each round's generation calls.
	RoundTimeoutSeconds int `json:"round_timeout_seconds"`

	// MaxPerspectives caps the selector's output (1-8).
	MaxPerspectives int `json:"max_perspectives"`
}

// DefaultDialogueConfig returns sensible defaults.
func DefaultDialogueConfig() DialogueConfig {
	return DialogueConfig{
		ConvergenceThreshold: 0.75,
		RoundTimeoutSeconds:  90,
		MaxPerspectives:      8,
	}
}

// RoundTimeout returns the per-round timeout as a duration.
func (c DialogueConfig) RoundTimeout() time.Duration {
	if c.RoundTimeoutSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(c.RoundTimeoutSeconds) * time.Second
}

// LoggingConfig mirrors the logging package's file config.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories,omitempty"`
	Level      string          `json:"level,omitempty"`
}

// DefaultLoggingConfig returns production defaults (logging off).
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		DebugMode: false,
		Level:     "info",
	}
}
