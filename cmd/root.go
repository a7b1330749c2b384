package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/bimmerbailey/soudan/internal/config"
	"github.com/bimmerbailey/soudan/internal/consult"
	"github.com/bimmerbailey/soudan/internal/llm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// logLevel is shared by every logger the CLI creates so that a config reload
// can change verbosity without rebuilding handlers.
var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:   "soudan",
	Short: "Ask an LLM expert persona for advice",
	Long: `Soudan answers a question in the voice of a chosen expert persona,
in Japanese, using a large language model.

It can serve a single-page web form or answer one question from the terminal.

Examples:
  soudan serve --addr :8501
  soudan ask --persona financial_planner "老後資金はいくら必要?"
  soudan personas --format table`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.soudan.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto, always, never)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// OPENAI_API_KEY and friends usually come from a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".soudan")
		viper.SetConfigType("yaml")
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// configureViper sets up environment binding and defaults on v.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("SOUDAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("color", "auto")
	v.SetDefault("log_level", "info")

	v.SetDefault("llm.provider", config.DefaultProvider)
	v.SetDefault("llm.temperature", config.DefaultTemperature)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.openai.model", config.DefaultOpenAIModel)
	v.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama3.2")

	v.SetDefault("server.addr", config.DefaultServerAddr)

	// Keys without a default are invisible to Unmarshal unless bound.
	for _, key := range []string{
		"llm.openai.api_key",
		"llm.openai.base_url",
		"llm.openai.org_id",
		"llm.anthropic.api_key",
	} {
		_ = v.BindEnv(key)
	}
}

// loadConfig decodes and validates the configuration held by v.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := &config.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLogLevel sets the shared log level from cfg. --verbose wins over log_level.
func applyLogLevel(cfg *config.Config) {
	if cfg.Verbose {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(config.ParseLogLevel(cfg.LogLevel))
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// newService builds the consultation service for the configured provider.
func newService(cfg *config.Config, logger *slog.Logger) (*consult.Service, llm.Provider, error) {
	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM provider: %w\n\nTroubleshooting:\n- Set OPENAI_API_KEY in the environment or a .env file\n- Check provider config in ~/.soudan.yaml\n- For Ollama, ensure it is running: ollama serve", err)
	}

	requester := consult.NewRequester(provider, llm.ChatOptions{
		Model:       cfg.Model(),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	return consult.NewService(requester, logger), provider, nil
}
