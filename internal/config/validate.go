package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderOpenRouter, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider %q is not supported (use openai, ollama, openrouter, or anthropic)", c.LLM.Provider)
	}
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"transcripts.timeout_seconds":   c.Transcripts.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.BatchSize < 0 {
		return errors.New("pipeline.batch_size must be >= 0")
	}
	return nil
}

func (c *Config) validateSummary() error {
	if err := ensurePositiveMap(map[string]int{
		"summary.chunk_size":               c.Summary.ChunkSize,
		"summary.retry_attempts":           c.Summary.RetryAttempts,
		"summary.retry_base_delay_seconds": c.Summary.RetryBaseDelaySeconds,
		"summary.retry_max_delay_seconds":  c.Summary.RetryMaxDelaySeconds,
		"summary.max_tokens":               c.Summary.MaxTokens,
	}); err != nil {
		return err
	}
	if c.Summary.RetryMaxDelaySeconds < c.Summary.RetryBaseDelaySeconds {
		return errors.New("summary.retry_max_delay_seconds must be >= summary.retry_base_delay_seconds")
	}
	if c.Summary.Temperature < 0 || c.Summary.Temperature > 2 {
		return errors.New("summary.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.PageSize <= 0 || c.YouTube.PageSize > 50 {
		return errors.New("youtube.page_size must be between 1 and 50")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
