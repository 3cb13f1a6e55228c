// Package summarize turns transcript chunks into short summaries using the
// configured LLM provider.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubecron/internal/config"
	"tubecron/internal/pipeline"
	"tubecron/internal/services"
	"tubecron/internal/services/anthropic"
	"tubecron/internal/services/llm"
)

const (
	// SystemPrompt frames every chunk request.
	SystemPrompt     = "You are a helpful assistant that creates concise summaries of YouTube video transcripts."
	userPromptPrefix = "Please summarize this video transcript section. Focus on the key points and main ideas:\n\n"
)

// Completer sends one system/user prompt pair and returns the reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Summarizer adapts a Completer to pipeline.Summarizer.
type Summarizer struct {
	provider  string
	model     string
	completer Completer
}

// NewWithCompleter wraps an existing Completer.
func NewWithCompleter(provider, model string, completer Completer) *Summarizer {
	return &Summarizer{provider: provider, model: model, completer: completer}
}

// New builds the summarizer for the resolved provider settings.
func New(settings config.LLMSettings) (*Summarizer, error) {
	switch settings.Provider {
	case config.ProviderOpenAI, config.ProviderOpenRouter, config.ProviderOllama:
		client := llm.NewClient(llm.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			Referer:        settings.Referer,
			Title:          settings.Title,
			TimeoutSeconds: settings.TimeoutSeconds,
			MaxTokens:      settings.MaxTokens,
			Temperature:    settings.Temperature,
			RequireAPIKey:  settings.Provider != config.ProviderOllama,
		})
		return NewWithCompleter(settings.Provider, settings.Model, client), nil
	case config.ProviderAnthropic:
		client := anthropic.NewClient(anthropic.Config{
			APIKey:      settings.APIKey,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})
		return NewWithCompleter(settings.Provider, settings.Model, client), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "summary", "select provider",
			fmt.Sprintf("unsupported llm provider %q", settings.Provider), nil)
	}
}

// Provider returns the provider name.
func (s *Summarizer) Provider() string { return s.provider }

// Model returns the model name.
func (s *Summarizer) Model() string { return s.model }

// HealthCheck asks the provider for a trivial completion so misconfigured
// keys, endpoints, or models surface before a pass.
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if checker, ok := s.completer.(interface{ HealthCheck(context.Context) error }); ok {
		return checker.HealthCheck(ctx)
	}
	if _, err := s.completer.Complete(ctx, "Reply with the single word ok.", "ping"); err != nil {
		return fmt.Errorf("%s health: %w", s.provider, err)
	}
	return nil
}

// Summarize condenses one transcript chunk. A whitespace-only chunk has
// nothing to summarize and yields an empty summary without a provider call.
func (s *Summarizer) Summarize(ctx context.Context, chunk string) pipeline.Result {
	if strings.TrimSpace(chunk) == "" {
		return pipeline.Ok("")
	}
	text, err := s.completer.Complete(ctx, SystemPrompt, UserPrompt(chunk))
	if err != nil {
		return pipeline.FromError("", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return pipeline.TransientFailure(errors.New("summarize: provider returned no text"))
	}
	return pipeline.Ok(text)
}

// UserPrompt builds the per-chunk request.
func UserPrompt(chunk string) string {
	return userPromptPrefix + chunk
}
