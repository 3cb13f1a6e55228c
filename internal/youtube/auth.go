package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tubecron/internal/config"
	"tubecron/internal/services"
)

// ReadOnlyScope grants read access to the account's YouTube data.
const ReadOnlyScope = "https://www.googleapis.com/auth/youtube.readonly"

const defaultRedirectURL = "http://localhost"

// ErrNotAuthorized reports a missing token file.
var ErrNotAuthorized = errors.New("youtube: not authorized; run `tubecron auth login`")

// Auth builds OAuth2 clients from client secrets and a token file.
type Auth struct {
	oauth     *oauth2.Config
	tokenFile string
}

// NewAuth reads the client secrets file named in cfg.
func NewAuth(cfg *config.Config) (*Auth, error) {
	data, err := os.ReadFile(cfg.Paths.CredentialsFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "load client secrets",
			cfg.Paths.CredentialsFile, err)
	}
	oauthCfg, err := google.ConfigFromJSON(data, ReadOnlyScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "parse client secrets",
			cfg.Paths.CredentialsFile, err)
	}
	if strings.TrimSpace(oauthCfg.RedirectURL) == "" {
		oauthCfg.RedirectURL = defaultRedirectURL
	}
	return &Auth{oauth: oauthCfg, tokenFile: cfg.Paths.TokenFile}, nil
}

// AuthCodeURL is the consent page the user opens to grant access.
func (a *Auth) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and saves it.
func (a *Auth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("youtube: authorization code is empty")
	}
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("youtube: exchange code: %w", err)
	}
	if err := SaveToken(a.tokenFile, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Client returns an HTTP client that refreshes the stored token as needed and
// writes refreshed tokens back to the token file.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	token, err := LoadToken(a.tokenFile)
	if err != nil {
		return nil, err
	}
	source := &persistingSource{
		base: a.oauth.TokenSource(ctx, token),
		path: a.tokenFile,
		last: token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("youtube: read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("youtube: decode token %s: %w", path, err)
	}
	return &token, nil
}

// SaveToken writes token atomically with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("youtube: nil token")
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("youtube: encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("youtube: create token dir: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("youtube: write token: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("youtube: chmod token: %w", err)
	}
	return nil
}

type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := SaveToken(s.path, token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}
	return token, nil
}
