package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tubecron/internal/testsupport"
)

func writeClientSecrets(t *testing.T, path, tokenURL string) {
	t.Helper()
	testsupport.WriteFile(t, path, fmt.Sprintf(`{
  "installed": {
    "client_id": "client-123.apps.googleusercontent.com",
    "client_secret": "shh",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": %q,
    "redirect_uris": ["http://localhost"]
  }
}`, tokenURL))
}

func TestAuthCodeURLRequestsReadOnlyScope(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeClientSecrets(t, cfg.Paths.CredentialsFile, "https://oauth2.googleapis.com/token")
	auth, err := NewAuth(cfg)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	link, err := url.Parse(auth.AuthCodeURL("state-1"))
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := link.Query()
	if q.Get("scope") != ReadOnlyScope || q.Get("access_type") != "offline" || q.Get("state") != "state-1" {
		t.Fatalf("unexpected auth url %s", link)
	}
}

func TestClientRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeClientSecrets(t, cfg.Paths.CredentialsFile, "https://oauth2.googleapis.com/token")
	auth, err := NewAuth(cfg)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	if _, err := auth.Client(context.Background()); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestClientRefreshesAndPersistsToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "refresh-1" {
			t.Errorf("unexpected token request %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer apiServer.Close()

	cfg := testsupport.NewConfig(t)
	writeClientSecrets(t, cfg.Paths.CredentialsFile, tokenServer.URL)
	stale := &oauth2.Token{AccessToken: "stale", RefreshToken: "refresh-1", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
	if err := SaveToken(cfg.Paths.TokenFile, stale); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	auth, err := NewAuth(cfg)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	client, err := auth.Client(context.Background())
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	cfg.YouTube.APIBaseURL = apiServer.URL
	source, err := NewLikedVideos(context.Background(), client, cfg.YouTube)
	if err != nil {
		t.Fatalf("NewLikedVideos: %v", err)
	}
	if _, err := source.LikedPage(context.Background(), ""); err != nil {
		t.Fatalf("LikedPage: %v", err)
	}

	saved, err := LoadToken(cfg.Paths.TokenFile)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if saved.AccessToken != "fresh" {
		t.Fatalf("expected refreshed token to be saved, got %q", saved.AccessToken)
	}
	if saved.RefreshToken != "refresh-1" {
		t.Fatalf("refresh token lost: %+v", saved)
	}
}

func TestNewAuthReportsMissingSecrets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	_, err := NewAuth(cfg)
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("expected error naming the secrets file, got %v", err)
	}
}
