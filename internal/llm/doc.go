// Package llm wraps the external chat-completion service behind a small
// Provider interface.
//
// # Providers
//
// NewProvider selects an implementation from configuration:
//
//   - openai:    langchaingo llms/openai (default, model gpt-4o-mini)
//   - anthropic: langchaingo llms/anthropic
//   - ollama:    the llm/ollama subpackage, talking to a local Ollama server
//
// The ollama subpackage defines its own Message/Response types so that it
// does not import this package; ollamaProviderAdapter bridges the two.
//
// # Usage
//
//	provider, err := llm.NewProvider(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := provider.Chat(ctx, []llm.Message{
//	    {Role: llm.RoleSystem, Content: instruction},
//	    {Role: llm.RoleUser, Content: question},
//	}, &llm.ChatOptions{Model: "gpt-4o-mini", Temperature: 0.3})
//
// Requests are single-shot: there is no streaming and no retry. Failures from
// the remote service come back as returned errors. Cancellation is tagged with
// ErrContextCanceled, and the original error remains reachable through
// errors.Is / errors.As.
//
// # Credentials
//
// API keys are read from config (llm.openai.api_key, llm.anthropic.api_key)
// and fall back to OPENAI_API_KEY / ANTHROPIC_API_KEY. cmd/root.go loads a
// .env file into the environment before any provider is built.
package llm
