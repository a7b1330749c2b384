// Package ollama answers consultations with a locally hosted model.
//
// It is selected with llm.provider=ollama and is mostly useful for working on
// the persona instructions offline. Each consultation is one non-streaming
// /api/chat call carrying the system instruction and the user's question.
//
// The package declares its own message and option types so that the llm
// package can import it without a cycle; llm adapts between the two.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama3.2"

// Config selects the Ollama server and model.
type Config struct {
	// Host overrides OLLAMA_HOST, e.g. "http://localhost:11434".
	Host string

	// Model is used for every consultation unless ChatOptions.Model is set.
	Model string
}

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// ChatOptions carries the per-request sampling settings.
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Response is a complete answer with token accounting.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
)

// Provider talks to one Ollama server.
type Provider struct {
	client *api.Client
	config Config
	logger *slog.Logger
}

// New returns a Provider. An empty cfg.Host falls back to OLLAMA_HOST and
// then to the client's default address.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client, err := newClient(cfg.Host)
	if err != nil {
		logger.Error("failed to create ollama client", "host", cfg.Host, "error", err)
		return nil, err
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	logger.Debug("ollama provider ready", "host", cfg.Host, "model", cfg.Model)

	return &Provider{client: client, config: cfg, logger: logger}, nil
}

func newClient(host string) (*api.Client, error) {
	if host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return client, nil
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	return api.NewClient(u, http.DefaultClient), nil
}

// chatRequest builds a single, non-streaming chat request.
func (p *Provider) chatRequest(messages []Message, opts *ChatOptions) *api.ChatRequest {
	req := &api.ChatRequest{
		Model:    p.config.Model,
		Messages: make([]api.Message, len(messages)),
		Options:  map[string]any{"temperature": 0.0},
		Stream:   new(bool),
	}
	for i, m := range messages {
		req.Messages[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	if opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		req.Options["temperature"] = opts.Temperature
		if opts.MaxTokens > 0 {
			req.Options["num_predict"] = opts.MaxTokens
		}
	}
	return req
}

// Chat sends the exchange and waits for the whole answer.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	req := p.chatRequest(messages, opts)
	p.logger.Debug("sending chat request", "model", req.Model, "messages", len(req.Messages))

	var final api.ChatResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		p.logger.Error("chat request failed", "model", req.Model, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	p.logger.Debug("chat request completed",
		"model", final.Model,
		"prompt_tokens", final.PromptEvalCount,
		"eval_tokens", final.EvalCount,
	)

	return &Response{
		Content:      final.Message.Content,
		Model:        final.Model,
		TokensPrompt: final.PromptEvalCount,
		TokensTotal:  final.PromptEvalCount + final.EvalCount,
	}, nil
}

// Heartbeat reports whether the server answers at all.
func (p *Provider) Heartbeat(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		p.logger.Error("ollama heartbeat failed", "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// ModelAvailable reports whether model has been pulled on the server.
// A name without a tag matches its ":latest" tag.
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	listResp, err := p.client.List(ctx)
	if err != nil {
		p.logger.Error("failed to list models", "error", err)
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	want := withTag(model)
	for _, m := range listResp.Models {
		if withTag(m.Name) == want || withTag(m.Model) == want {
			return true, nil
		}
	}

	p.logger.Debug("model not pulled", "model", model, "pulled", len(listResp.Models))
	return false, nil
}

func withTag(name string) string {
	if name == "" || strings.Contains(name, ":") {
		return name
	}
	return name + ":latest"
}
