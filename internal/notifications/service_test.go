package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tubecron/internal/config"
	"tubecron/internal/notifications"
)

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func ntfyServer(t *testing.T) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyNotePublished(context.Background(), "Example", "/vault/x.md"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyPassCompletedFormatsSummary(t *testing.T) {
	server, got := ntfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.NotifyPassCompleted(context.Background(), notifications.PassSummary{
		Transcripts: 2, Published: 1, Failed: 1, Registered: 3, Duration: 1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NotifyPassCompleted: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "tubecron - Pass Complete (with errors)" {
		t.Fatalf("unexpected title %q", req.title)
	}
	if req.message != "2 transcripts fetched, 1 notes published, 3 new videos, 1 failed in 2s" {
		t.Fatalf("unexpected message %q", req.message)
	}
	if req.tags != "tubecron,pass,completed" {
		t.Fatalf("unexpected tags %q", req.tags)
	}
}

func TestNotifyPassCompletedSkipsIdlePasses(t *testing.T) {
	server, got := ntfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	if err := notifications.NewService(&cfg).NotifyPassCompleted(context.Background(), notifications.PassSummary{}); err != nil {
		t.Fatalf("NotifyPassCompleted: %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("expected no request for an idle pass, got %d", len(*got))
	}
}

func TestNotifyNotePublishedHonoursToggle(t *testing.T) {
	server, got := ntfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.NotePublished = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyNotePublished(context.Background(), "Talk", "/vault/Talk-v1.md"); err != nil {
		t.Fatalf("NotifyNotePublished: %v", err)
	}
	if len(*got) != 0 {
		t.Fatal("disabled note notifications should not send")
	}

	cfg.Notifications.NotePublished = true
	svc = notifications.NewService(&cfg)
	if err := svc.NotifyNotePublished(context.Background(), "Talk", "/vault/Talk-v1.md"); err != nil {
		t.Fatalf("NotifyNotePublished: %v", err)
	}
	if len(*got) != 1 || !strings.Contains((*got)[0].message, "Talk") || !strings.Contains((*got)[0].message, "/vault/Talk-v1.md") {
		t.Fatalf("unexpected requests %+v", *got)
	}
}

func TestNotifyErrorUsesHighPriority(t *testing.T) {
	server, got := ntfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	if err := notifications.NewService(&cfg).NotifyError(context.Background(), errors.New("disk full"), "pass"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	req := (*got)[0]
	if req.priority != "high" || !strings.HasSuffix(req.message, "with pass: disk full") {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	defer server.Close()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
