// Package config loads the session configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the session configuration. It is read once at session start;
// nothing here is persisted back.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	// MaxIterations bounds provider round-trips per utterance.
	MaxIterations int `yaml:"max_iterations"`

	// HistoryBudget bounds the conversation window, in turns.
	HistoryBudget int `yaml:"history_budget"`

	SystemPrompt string `yaml:"system_prompt"`

	Retry RetryConfig `yaml:"retry"`

	DJ DJConfig `yaml:"dj"`

	Lyrics LyricsConfig `yaml:"lyrics"`
}

// RetryConfig tunes the transient-failure retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// DJConfig tunes the commentary scheduler.
type DJConfig struct {
	Enabled   bool   `yaml:"enabled"`
	WindowMin int    `yaml:"window_min"`
	WindowMax int    `yaml:"window_max"`
	PersonaA  string `yaml:"persona_a"`
	PersonaB  string `yaml:"persona_b"`
}

// LyricsConfig tunes the lyrics cache.
type LyricsConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	NegativeTTL time.Duration `yaml:"negative_ttl"`
}

// Default returns the configuration used when a field is absent.
func Default() Config {
	return Config{
		Provider:      "openai",
		MaxIterations: 4,
		HistoryBudget: 40,
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    8 * time.Second,
		},
		DJ: DJConfig{
			WindowMin: 4,
			WindowMax: 5,
			PersonaA:  "Rex",
			PersonaB:  "Luna",
		},
		Lyrics: LyricsConfig{
			TTL:         time.Hour,
			NegativeTTL: 5 * time.Minute,
		},
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, filling absent fields with defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must be set")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.HistoryBudget < 2 {
		return fmt.Errorf("history_budget must be at least 2, got %d", c.HistoryBudget)
	}
	if c.DJ.WindowMin < 1 {
		return fmt.Errorf("dj.window_min must be at least 1, got %d", c.DJ.WindowMin)
	}
	if c.DJ.WindowMax < c.DJ.WindowMin {
		return fmt.Errorf("dj.window_max (%d) must not be below dj.window_min (%d)",
			c.DJ.WindowMax, c.DJ.WindowMin)
	}
	return nil
}
