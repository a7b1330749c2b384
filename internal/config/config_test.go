package config

import (
	"errors"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug lowercase", "debug", slog.LevelDebug},
		{"dbg abbrev", "dbg", slog.LevelDebug},
		{"warn lowercase", "warn", slog.LevelWarn},
		{"WARNING uppercase", "WARNING", slog.LevelWarn},
		{"error lowercase", "error", slog.LevelError},
		{"err abbrev", "err", slog.LevelError},
		{"info lowercase", "info", slog.LevelInfo},
		{"padded", "  Debug ", slog.LevelDebug},

		{"empty string", "", slog.LevelInfo},
		{"invalid", "loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "defaults",
			cfg: Config{
				LLM:    LLMConfig{Provider: DefaultProvider, Temperature: DefaultTemperature},
				Server: ServerConfig{Addr: DefaultServerAddr},
			},
		},
		{
			name: "zero temperature is allowed",
			cfg: Config{
				LLM:    LLMConfig{Temperature: 0},
				Server: ServerConfig{Addr: ":8080"},
			},
		},
		{
			name: "negative temperature",
			cfg: Config{
				LLM:    LLMConfig{Temperature: -0.1},
				Server: ServerConfig{Addr: ":8080"},
			},
			wantErr: true,
		},
		{
			name: "temperature too high",
			cfg: Config{
				LLM:    LLMConfig{Temperature: 2.5},
				Server: ServerConfig{Addr: ":8080"},
			},
			wantErr: true,
		},
		{
			name: "blank server address",
			cfg: Config{
				LLM:    LLMConfig{Temperature: 0.3},
				Server: ServerConfig{Addr: "  "},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_Model(t *testing.T) {
	cfg := Config{
		LLM: LLMConfig{
			OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
			Anthropic: AnthropicConfig{Model: "claude-3-5-haiku-latest"},
			Ollama:    OllamaConfig{Model: "llama3.2"},
		},
	}

	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "gpt-4o-mini"},
		{"OpenAI", "gpt-4o-mini"},
		{"anthropic", "claude-3-5-haiku-latest"},
		{"ollama", "llama3.2"},
		{"", "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg.LLM.Provider = tt.provider
			if got := cfg.Model(); got != tt.want {
				t.Errorf("Model() = %q, want %q", got, tt.want)
			}
		})
	}
}
