package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/oauth2"

	"tubecron/internal/config"
	"tubecron/internal/testsupport"
	"tubecron/internal/youtube"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TUBECRON_NTFY_TOPIC", "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "tubecron", "config.toml")
	env := &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, e.configPath, string(data))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type fakeServices struct {
	youtube     *httptest.Server
	transcripts *httptest.Server
	llm         *httptest.Server
}

// startFakeServices serves liked videos, transcripts, and chat completions,
// and points env's config at them.
func startFakeServices(t *testing.T, env *cliTestEnv, liked []string) *fakeServices {
	t.Helper()

	yt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			http.Error(w, `{"error":{"code":401,"message":"bad token"}}`, http.StatusUnauthorized)
			return
		}
		items := make([]map[string]any, 0, len(liked))
		for _, id := range liked {
			items = append(items, map[string]any{"id": id, "snippet": map[string]any{"title": "Video " + id}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(yt.Close)

	tr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "transcript for %s", r.URL.Query().Get("url"))
	}))
	t.Cleanup(tr.Close)

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "a tidy summary"}}},
		})
	}))
	t.Cleanup(llm.Close)

	testsupport.WriteFile(t, env.cfg.Paths.CredentialsFile, `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`)
	token := &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	if err := youtube.SaveToken(env.cfg.Paths.TokenFile, token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	env.cfg.YouTube.APIBaseURL = yt.URL
	env.cfg.Transcripts.APIURL = tr.URL
	env.cfg.LLM.Provider = config.ProviderOpenAI
	env.cfg.LLM.BaseURL = llm.URL
	env.writeConfig(t)
	return &fakeServices{youtube: yt, transcripts: tr, llm: llm}
}
