package config

import (
	"os"
	"strings"
)

// LLMSettings is the resolved connection information for the selected
// summarization provider.
type LLMSettings struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxTokens      int
	Temperature    float64
}

// GetLLM resolves provider-specific defaults: the model, the endpoint, and the
// API key (falling back to the provider's conventional environment variable).
func (c *Config) GetLLM() LLMSettings {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if provider == "" {
		provider = defaultLLMProvider
	}
	settings := LLMSettings{
		Provider:       provider,
		Model:          strings.TrimSpace(c.LLM.Model),
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Referer:        c.LLM.Referer,
		Title:          c.LLM.Title,
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		MaxTokens:      c.Summary.MaxTokens,
		Temperature:    c.Summary.Temperature,
	}
	if settings.Model == "" {
		settings.Model = defaultModels[provider]
	}
	if settings.BaseURL == "" {
		if provider == ProviderOllama {
			host := strings.TrimRight(c.LLM.OllamaHost, "/")
			if host == "" {
				host = defaultOllamaHost
			}
			settings.BaseURL = host + "/v1/chat/completions"
		} else {
			settings.BaseURL = defaultBaseURLs[provider]
		}
	}
	if settings.APIKey == "" {
		if name, ok := apiKeyEnv[provider]; ok {
			if value, ok := os.LookupEnv(name); ok {
				settings.APIKey = strings.TrimSpace(value)
			}
		}
	}
	return settings
}

// APIKeyEnv returns the environment variable consulted for a provider's API key.
func APIKeyEnv(provider string) string {
	return apiKeyEnv[provider]
}
