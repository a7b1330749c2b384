// Package consult answers one question as a chosen expert persona.
//
// A consultation is a single synchronous round-trip: the persona resolves to
// a system instruction, the instruction and the question go to the provider
// as one system+user exchange, and the provider's text comes back unchanged.
// There is no retry, no history and no streaming.
package consult

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bimmerbailey/soudan/internal/llm"
	"github.com/bimmerbailey/soudan/internal/prompt"
	"github.com/oklog/ulid/v2"
)

// ErrEmptyInput is returned by Service.Ask when the question is empty or
// whitespace-only. No request is made in that case.
var ErrEmptyInput = errors.New("consult: question is empty")

// Requester issues one chat-completion request per call.
type Requester struct {
	provider llm.Provider
	opts     llm.ChatOptions
}

// NewRequester returns a Requester bound to provider. opts carries the fixed
// model and sampling temperature used for every request.
func NewRequester(provider llm.Provider, opts llm.ChatOptions) *Requester {
	return &Requester{provider: provider, opts: opts}
}

// Model returns the configured model name.
func (r *Requester) Model() string {
	return r.opts.Model
}

// Complete sends instruction and userText as a system+user pair and returns
// the response text verbatim. Provider errors are returned as-is.
func (r *Requester) Complete(ctx context.Context, instruction, userText string) (string, error) {
	messages, err := prompt.Build(instruction, userText)
	if err != nil {
		return "", err
	}

	opts := r.opts
	resp, err := r.provider.Chat(ctx, messages, &opts)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Answer is the result of a successful consultation.
type Answer struct {
	ID          string         `json:"id"`
	Persona     prompt.Persona `json:"persona"`
	Instruction string         `json:"-"`
	Text        string         `json:"answer"`
	Model       string         `json:"model,omitempty"`
	Elapsed     time.Duration  `json:"-"`
}

// Asker answers a single question as a persona. *Service implements it.
type Asker interface {
	Ask(ctx context.Context, persona prompt.Persona, userText string) (*Answer, error)
}

var _ Asker = (*Service)(nil)

// Service is the entry point used by the web form and the CLI.
type Service struct {
	requester *Requester
	logger    *slog.Logger
}

// NewService returns a Service. A nil logger discards log output.
func NewService(requester *Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{requester: requester, logger: logger}
}

// Ask answers userText in the voice of persona.
//
// Whitespace-only input fails with ErrEmptyInput before anything is sent.
// Unrecognized personas use the generic expert instruction. Any provider
// failure is returned unchanged.
func (s *Service) Ask(ctx context.Context, persona prompt.Persona, userText string) (*Answer, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyInput
	}

	if !persona.Known() {
		s.logger.Debug("unrecognized persona, using fallback instruction", "persona", string(persona))
	}

	id := ulid.Make().String()
	instruction := prompt.Instruction(persona)
	start := time.Now()

	text, err := s.requester.Complete(ctx, instruction, userText)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("consultation failed",
			"id", id,
			"persona", string(persona),
			"elapsed", elapsed,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("consultation answered",
		"id", id,
		"persona", string(persona),
		"model", s.requester.Model(),
		"elapsed", elapsed,
		"answer_chars", len([]rune(text)),
	)

	return &Answer{
		ID:          id,
		Persona:     persona,
		Instruction: instruction,
		Text:        text,
		Model:       s.requester.Model(),
		Elapsed:     elapsed,
	}, nil
}
