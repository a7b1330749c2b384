// Package config provides configuration types and helpers for soudan.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Config holds the application-wide configuration.
type Config struct {
	Format   string       `mapstructure:"format"`
	Verbose  bool         `mapstructure:"verbose"`
	LogLevel string       `mapstructure:"log_level"`
	LLM      LLMConfig    `mapstructure:"llm"`
	Server   ServerConfig `mapstructure:"server"`
}

// LLMConfig holds configuration for LLM providers.
type LLMConfig struct {
	// Provider selects which LLM to use: "openai", "anthropic", "ollama"
	Provider string `mapstructure:"provider"`

	// Global settings applied to all providers
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Provider-specific configuration
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`  // API endpoint
	Model string `mapstructure:"model"` // Default model name
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`  // Optional: read from OPENAI_API_KEY if empty
	Model   string `mapstructure:"model"`    // e.g., "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional: for compatible endpoints
	OrgID   string `mapstructure:"org_id"`   // Optional: organization ID
}

// AnthropicConfig holds Anthropic/Claude-specific settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"` // Optional: read from ANTHROPIC_API_KEY if empty
	Model  string `mapstructure:"model"`
}

// ServerConfig holds settings for the web form server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Defaults for the consultation model. The answer style relies on a low
// temperature, so keep these in sync with the viper defaults in cmd/root.go.
const (
	DefaultProvider    = "openai"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultServerAddr  = ":8501"
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the settings that cannot be corrected later.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be between 0 and 2, got %v", ErrInvalidConfig, c.LLM.Temperature)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Model returns the model name configured for the selected provider.
func (c *Config) Model() string {
	switch strings.ToLower(c.LLM.Provider) {
	case "ollama":
		return c.LLM.Ollama.Model
	case "anthropic":
		return c.LLM.Anthropic.Model
	default:
		return c.LLM.OpenAI.Model
	}
}

// ParseLogLevel converts a level name to a slog.Level, defaulting to Info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
