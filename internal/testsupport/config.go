package testsupport

import (
	"path/filepath"
	"testing"

	"tubecron/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.TranscriptsDir = filepath.Join(base, "transcripts")
	cfgVal.Paths.VaultDir = filepath.Join(base, "vault")
	cfgVal.Paths.CredentialsFile = filepath.Join(base, "credentials", "client_secret.json")
	cfgVal.Paths.TokenFile = filepath.Join(base, "tokens", "token.json")
	cfgVal.LLM.APIKey = "test-key"
	cfgVal.Transcripts.APIURL = "http://127.0.0.1:0/transcript"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBatchSize overrides the discovery cap.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.BatchSize = n
	}
}

// WithProvider selects the summarization provider and model.
func WithProvider(provider, model string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Provider = provider
		b.cfg.LLM.Model = model
	}
}

// WithLLMBaseURL points the summarizer at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithTranscriptAPI points the transcript fetcher at a test server.
func WithTranscriptAPI(url, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcripts.APIURL = url
		b.cfg.Transcripts.APIKey = key
	}
}

// WithYouTubeAPI points liked-video discovery at a test server.
func WithYouTubeAPI(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.APIBaseURL = url
	}
}
