package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tubecron/internal/services"
)

func TestDefaultRetryPolicyDelays(t *testing.T) {
	p := DefaultRetryPolicy()
	want := []time.Duration{4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("Delay(%d) = %s, want %s", i+1, got, w)
		}
	}
}

func TestRetryPolicyAttemptsFloor(t *testing.T) {
	if got := (RetryPolicy{}).attempts(); got != 1 {
		t.Fatalf("expected at least one attempt, got %d", got)
	}
}

func TestContextSleepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := contextSleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChunkSplitsByRunes(t *testing.T) {
	text := strings.Repeat("é", 25)
	chunks := Chunk(text, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks must concatenate back to the input")
	}
	if n := len([]rune(chunks[2])); n != 5 {
		t.Fatalf("expected trailing chunk of 5 runes, got %d", n)
	}
}

func TestChunkEmptyText(t *testing.T) {
	if chunks := Chunk(" \n\t", DefaultChunkSize); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}

func TestFromErrorClassifies(t *testing.T) {
	if res := FromError("ref", nil); res.Kind != Success || res.Value != "ref" {
		t.Fatalf("unexpected success %+v", res)
	}
	if res := FromError("", errors.New("connection reset")); res.Kind != Transient {
		t.Fatalf("expected transient, got %s", res.Kind)
	}
	perm := services.Wrap(services.ErrPermanent, "transcript", "fetch", "transcripts disabled", nil)
	if res := FromError("", perm); res.Kind != Permanent {
		t.Fatalf("expected permanent, got %s", res.Kind)
	}
	if (Result{Kind: Transient}).Error() == nil {
		t.Fatal("failure results must carry an error")
	}
}
