package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tubecron/internal/config"
	"tubecron/internal/pipeline"
	"tubecron/internal/services"
	"tubecron/internal/testsupport"
)

type stubCompleter struct {
	system, user string
	reply        string
	err          error
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.reply, s.err
}

func TestSummarizeBuildsPrompts(t *testing.T) {
	stub := &stubCompleter{reply: "key points"}
	s := NewWithCompleter("openai", "m", stub)

	res := s.Summarize(context.Background(), "chunk text")
	if res.Kind != pipeline.Success || res.Value != "key points" {
		t.Fatalf("unexpected result %+v", res)
	}
	if stub.system != SystemPrompt {
		t.Fatalf("unexpected system prompt %q", stub.system)
	}
	if !strings.HasSuffix(stub.user, "main ideas:\n\nchunk text") {
		t.Fatalf("unexpected user prompt %q", stub.user)
	}
}

func TestSummarizeClassifiesErrors(t *testing.T) {
	transient := NewWithCompleter("openai", "m", &stubCompleter{err: services.Wrap(services.ErrTransient, "summary", "llm", "429", nil)})
	if res := transient.Summarize(context.Background(), "x"); res.Kind != pipeline.Transient {
		t.Fatalf("expected transient, got %s", res.Kind)
	}
	permanent := NewWithCompleter("openai", "m", &stubCompleter{err: services.Wrap(services.ErrPermanent, "summary", "llm", "401", nil)})
	if res := permanent.Summarize(context.Background(), "x"); res.Kind != pipeline.Permanent {
		t.Fatalf("expected permanent, got %s", res.Kind)
	}
	blank := NewWithCompleter("openai", "m", &stubCompleter{reply: "  "})
	if res := blank.Summarize(context.Background(), "x"); res.Kind != pipeline.Transient {
		t.Fatalf("expected transient for blank reply, got %s", res.Kind)
	}
}

func TestSummarizeBlankChunkSkipsProvider(t *testing.T) {
	stub := &stubCompleter{err: errors.New("should not be called")}
	s := NewWithCompleter("openai", "m", stub)

	res := s.Summarize(context.Background(), " \n\t")
	if res.Kind != pipeline.Success || res.Value != "" {
		t.Fatalf("expected empty success for blank chunk, got %+v", res)
	}
	if stub.user != "" {
		t.Fatalf("provider called for blank chunk with %q", stub.user)
	}
}

func TestHealthCheckFallsBackToPing(t *testing.T) {
	stub := &stubCompleter{reply: "ok"}
	if err := NewWithCompleter("openai", "m", stub).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if stub.user != "ping" {
		t.Fatalf("unexpected health prompt %q", stub.user)
	}

	failing := &stubCompleter{err: services.Wrap(services.ErrPermanent, "summary", "llm", "401", nil)}
	err := NewWithCompleter("openai", "m", failing).HealthCheck(context.Background())
	if !errors.Is(err, services.ErrPermanent) || !strings.Contains(err.Error(), "openai health") {
		t.Fatalf("expected wrapped provider failure, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	for _, provider := range []string{config.ProviderOpenAI, config.ProviderOllama, config.ProviderOpenRouter, config.ProviderAnthropic} {
		cfg := testsupport.NewConfig(t, testsupport.WithProvider(provider, ""))
		s, err := New(cfg.GetLLM())
		if err != nil {
			t.Fatalf("%s: New: %v", provider, err)
		}
		if s.Provider() != provider || s.Model() == "" {
			t.Fatalf("%s: unexpected summarizer %s/%s", provider, s.Provider(), s.Model())
		}
	}
	if _, err := New(config.LLMSettings{Provider: "bard"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOllamaSummarizerTalksToLocalServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "local summary"}}},
		})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithProvider(config.ProviderOllama, ""))
	cfg.LLM.APIKey = ""
	cfg.LLM.OllamaHost = server.URL
	s, err := New(cfg.GetLLM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Model() != "mistral" {
		t.Fatalf("unexpected default model %q", s.Model())
	}
	res := s.Summarize(context.Background(), "some transcript")
	if res.Kind != pipeline.Success || res.Value != "local summary" {
		t.Fatalf("unexpected result %+v", res)
	}
}
