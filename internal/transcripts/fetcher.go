package transcripts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"tubecron/internal/config"
	"tubecron/internal/pipeline"
	"tubecron/internal/services"
)

const (
	stageName      = "transcript"
	defaultTimeout = 30 * time.Second
	// Transcript bodies above this size are rejected.
	maxBodyBytes = 32 << 20
)

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPFetcher implements pipeline.TranscriptFetcher and pipeline.TranscriptReader.
type HTTPFetcher struct {
	apiURL     string
	apiKey     string
	dir        string
	httpClient *http.Client
}

// Option customizes the fetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// New constructs an HTTPFetcher from configuration.
func New(cfg *config.Config, opts ...Option) (*HTTPFetcher, error) {
	if cfg == nil {
		return nil, errors.New("transcripts: config is nil")
	}
	apiURL := strings.TrimSpace(cfg.Transcripts.APIURL)
	if apiURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "configure fetcher",
			"transcripts.api_url is not set (or TRANSCRIPT_API_URL)", nil)
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "configure fetcher", "invalid transcripts.api_url", err)
	}
	timeout := defaultTimeout
	if cfg.Transcripts.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Transcripts.TimeoutSeconds) * time.Second
	}
	f := &HTTPFetcher{
		apiURL:     apiURL,
		apiKey:     strings.TrimSpace(cfg.Transcripts.APIKey),
		dir:        cfg.Paths.TranscriptsDir,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the transcript file location for a video id.
func (f *HTTPFetcher) Path(id string) string {
	return filepath.Join(f.dir, id+".txt")
}

// FetchTranscript downloads the transcript for id and writes it to disk,
// replacing any earlier copy.
func (f *HTTPFetcher) FetchTranscript(ctx context.Context, id string) pipeline.Result {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return pipeline.PermanentFailure(fmt.Errorf("transcripts: invalid video id %q", id))
	}
	text, err := f.fetch(ctx, id)
	if err != nil {
		return classify(err)
	}
	path := f.Path(id)
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return pipeline.TransientFailure(fmt.Errorf("create transcripts dir: %w", err))
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return pipeline.TransientFailure(fmt.Errorf("write transcript %s: %w", path, err))
	}
	return pipeline.Ok(path)
}

// ReadTranscript loads a stored transcript. A missing file is not retryable.
func (f *HTTPFetcher) ReadTranscript(_ context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "summary", "read transcript", ref, err)
		}
		return "", fmt.Errorf("read transcript %s: %w", ref, err)
	}
	return string(data), nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL, nil)
	if err != nil {
		return "", err
	}

	q := req.URL.Query()
	q.Add("url", WatchURL(id))
	if f.apiKey != "" {
		q.Add("api_key", f.apiKey)
	}
	q.Add("text", "true")
	req.URL.RawQuery = q.Encode()

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("bad status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxBodyBytes {
		return "", services.Wrap(services.ErrPermanent, stageName, "fetch", "transcript body too large", nil)
	}
	return string(body), nil
}

// WatchURL is the canonical watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// classify maps fetch failures onto pipeline results. 404 and 422 mean no
// transcript exists; 408, 429, 5xx, and transport errors may clear up.
func classify(err error) pipeline.Result {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
			return pipeline.TransientFailure(services.Wrap(services.ErrTransient, stageName, "fetch", "", err))
		default:
			return pipeline.PermanentFailure(services.Wrap(services.ErrPermanent, stageName, "fetch", "", err))
		}
	}
	return pipeline.FromError("", err)
}
