// Package llm provides a chat completion client for OpenAI-compatible
// endpoints (OpenAI, OpenRouter, and Ollama's /v1 API).
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the reply text.
// Client.HealthCheck: verify the endpoint, key, and model answer a ping.
//
// # Failure Classification
//
// Each call issues exactly one request; retries belong to the caller. Errors
// carry a services marker so callers can tell the two kinds apart:
// HTTP 408/429/5xx, network failures, and empty replies are marked
// services.ErrTransient; other 4xx replies, missing prompts, and a missing
// API key are marked services.ErrPermanent or services.ErrConfiguration.
//
// Ollama accepts requests without an API key, so Config.RequireAPIKey is
// false for it.
package llm
