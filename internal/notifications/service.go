package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubecron/internal/config"
)

const userAgent = "tubecron/0.1.0"

// PassSummary carries the counts reported when a pass finishes.
type PassSummary struct {
	Transcripts int
	Published   int
	Failed      int
	Registered  int
	Duration    time.Duration
}

// Service defines the notification surface exposed to the pipeline and CLI.
type Service interface {
	NotifyNotePublished(ctx context.Context, title, ref string) error
	NotifyPassCompleted(ctx context.Context, summary PassSummary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		passSummary:   cfg.Notifications.PassSummary,
		notePublished: cfg.Notifications.NotePublished,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	passSummary   bool
	notePublished bool
}

func (n *ntfyService) NotifyNotePublished(ctx context.Context, title, ref string) error {
	if !n.notePublished {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("📝 Note ready: %s", title)
	if ref = strings.TrimSpace(ref); ref != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, ref)
	}
	return n.send(ctx, payload{
		title:   "tubecron - Note Published",
		message: message,
		tags:    []string{"tubecron", "note", "published"},
	})
}

func (n *ntfyService) NotifyPassCompleted(ctx context.Context, summary PassSummary) error {
	if !n.passSummary {
		return nil
	}
	if summary.Transcripts == 0 && summary.Published == 0 && summary.Failed == 0 && summary.Registered == 0 {
		return nil
	}
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "tubecron - Pass Complete"
	if summary.Failed > 0 {
		title = "tubecron - Pass Complete (with errors)"
	}
	message := fmt.Sprintf(
		"%d transcripts fetched, %d notes published, %d new videos, %d failed in %s",
		summary.Transcripts, summary.Published, summary.Registered, summary.Failed, duration,
	)
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"tubecron", "pass", "completed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "tubecron - Error",
		message:  builder.String(),
		tags:     []string{"tubecron", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "tubecron - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"tubecron", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyNotePublished(context.Context, string, string) error { return nil }
func (noopService) NotifyPassCompleted(context.Context, PassSummary) error    { return nil }
func (noopService) NotifyError(context.Context, error, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
