package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bimmerbailey/soudan/internal/config"
	"github.com/bimmerbailey/soudan/internal/llm"
	"github.com/bimmerbailey/soudan/internal/web"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the consultation web form",
	Long: `Serve runs the single-page consultation form, a small JSON API and a
Prometheus metrics endpoint.

Routes:
  GET  /              the form
  POST /              submit the form
  POST /api/consult   {"persona": "...", "question": "..."}
  GET  /api/personas  selectable personas
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics

Changes to log_level in the config file apply immediately. LLM settings
require a restart.

Examples:
  soudan serve
  soudan serve --addr 127.0.0.1:8080 --check-provider`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultServerAddr, "address to listen on")
	serveCmd.Flags().Bool("check-provider", false, "verify the LLM provider is reachable before serving")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	checkProvider, _ := cmd.Flags().GetBool("check-provider")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyLogLevel(cfg)
	logger := newLogger(cmd.ErrOrStderr())

	svc, provider, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if checkProvider {
		if err := verifyProvider(ctx, provider, cfg); err != nil {
			return err
		}
		logger.Info("provider reachable", "provider", cfg.LLM.Provider, "model", cfg.Model())
	}

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(reloadHandler(viper.GetViper(), logger))
		viper.WatchConfig()
	}

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"provider", cfg.LLM.Provider,
		"model", cfg.Model(),
	)
	return web.NewServer(svc, web.NewMetrics(), logger).ListenAndServe(ctx, cfg.Server.Addr)
}

// verifyProvider checks that the provider answers and that the configured
// model can be used.
func verifyProvider(ctx context.Context, provider llm.Provider, cfg *config.Config) error {
	if err := provider.Heartbeat(ctx); err != nil {
		if cfg.LLM.Provider == "ollama" {
			return fmt.Errorf("cannot connect to Ollama at %s: %w\n\nStart Ollama with: ollama serve",
				cfg.LLM.Ollama.Host, err)
		}
		return fmt.Errorf("LLM provider %s unavailable: %w", cfg.LLM.Provider, err)
	}

	model := cfg.Model()
	ok, err := provider.ModelAvailable(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to check model %s: %w", model, err)
	}
	if !ok {
		if cfg.LLM.Provider == "ollama" {
			return fmt.Errorf("%w: %s\n\nPull it with: ollama pull %s", llm.ErrModelNotFound, model, model)
		}
		return fmt.Errorf("%w: %s", llm.ErrModelNotFound, model)
	}
	return nil
}

// reloadHandler applies live-reloadable settings when the config file changes.
func reloadHandler(v *viper.Viper, logger *slog.Logger) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		level := config.ParseLogLevel(v.GetString("log_level"))
		if v.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logLevel.Set(level)

		logger.Info("config reloaded",
			"file", e.Name,
			"log_level", level.String(),
		)
		logger.Debug("llm settings take effect after restart")
	}
}
