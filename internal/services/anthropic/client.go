// Package anthropic adapts the llmkit Anthropic client to the completion
// interface used by the summarizer.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"tubecron/internal/services"
)

const stageName = "summary"

// Config holds the model settings sent with every prompt.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type promptFunc func(system, user, apiKey string, settings types.RequestSettings) (string, error)

// Client sends prompts to the Anthropic Messages API.
type Client struct {
	cfg    Config
	prompt promptFunc
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &Client{cfg: cfg, prompt: llmkitPrompt}
}

func llmkitPrompt(system, user, apiKey string, settings types.RequestSettings) (string, error) {
	response, err := anthropic.PromptWithSettings(system, user, "", apiKey, settings)
	if err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", errors.New("no content in response")
	}
	return response.Content[0].Text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one prompt and returns the reply text. llmkit does not take a
// context, so cancellation is checked before the request and while it runs.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "anthropic complete", "api key required", nil)
	}
	if strings.TrimSpace(userPrompt) == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "anthropic complete", "user prompt required", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	settings := types.RequestSettings{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := c.prompt(systemPrompt, userPrompt, c.cfg.APIKey, settings)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-done:
		if out.err != nil {
			return "", classify(out.err)
		}
		text := strings.TrimSpace(out.text)
		if text == "" {
			return "", services.Wrap(services.ErrTransient, stageName, "anthropic complete", "empty content", nil)
		}
		return text, nil
	}
}

// HealthCheck sends a one-word prompt to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Complete(ctx, healthSystemPrompt, "ping"); err != nil {
		return fmt.Errorf("anthropic health: %w", err)
	}
	return nil
}

const healthSystemPrompt = "You are a health check. Reply with the single word ok."

// Status codes llmkit reports in its error text that will not succeed on retry.
var permanentMarkers = []string{"400", "401", "403", "404", "invalid_request_error", "authentication_error", "permission_error"}

func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return services.Wrap(services.ErrPermanent, stageName, "anthropic complete", "", err)
		}
	}
	return services.Wrap(services.ErrTransient, stageName, "anthropic complete", "", err)
}
