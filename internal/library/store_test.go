package library_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"tubecron/internal/library"
	"tubecron/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected all columns, missing %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.SchemaVersion != "0004_failures" {
		t.Fatalf("unexpected schema version %q", health.SchemaVersion)
	}
}

func TestReopenPreservesState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ctx := context.Background()
	testsupport.Register(t, store, "a", "Alpha")
	testsupport.MarkTranscript(t, store, "a", "/t/a.txt")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	item, err := reopened.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !item.TranscriptReady || item.TranscriptRef != "/t/a.txt" || item.Title != "Alpha" {
		t.Fatalf("state lost across reopen: %+v", item)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	inserted, err := store.Register(ctx, "a", "Alpha")
	if err != nil || !inserted {
		t.Fatalf("first Register = %v, %v; want true, nil", inserted, err)
	}
	testsupport.MarkTranscript(t, store, "a", "/t/a.txt")
	before := testsupport.MustGet(t, store, "a")

	inserted, err = store.Register(ctx, "a", "Renamed")
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}
	if inserted {
		t.Fatal("expected re-registration to report no insert")
	}

	after := testsupport.MustGet(t, store, "a")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("re-registration changed state (-before +after):\n%s", diff)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single row, got %d", len(items))
	}
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if _, err := store.Register(context.Background(), "  ", "blank"); !errors.Is(err, library.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestHas(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if ok, err := store.Has(ctx, "a"); err != nil || ok {
		t.Fatalf("Has before register = %v, %v", ok, err)
	}
	testsupport.Register(t, store, "a", "Alpha")
	if ok, err := store.Has(ctx, "a"); err != nil || !ok {
		t.Fatalf("Has after register = %v, %v", ok, err)
	}
}

func TestMarkUnknownIDReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.MarkTranscript(ctx, "ghost", "/t/ghost.txt"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("MarkTranscript unknown: expected ErrNotFound, got %v", err)
	}
	if err := store.MarkSummary(ctx, "ghost", "/v/ghost.md"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("MarkSummary unknown: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "ghost"); !library.IsNotFound(err) {
		t.Fatalf("Get unknown: expected ErrNotFound, got %v", err)
	}
	if ok, _ := store.Has(ctx, "ghost"); ok {
		t.Fatal("failed mutation must not create the item")
	}
}

func TestPaddedIDsResolveToRegisteredItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Register(ctx, " v1 ", "A"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.MarkTranscript(ctx, " v1", "/t/v1.txt"); err != nil {
		t.Fatalf("MarkTranscript padded id: %v", err)
	}
	if err := store.RecordFailure(ctx, "v1 ", "summary", "rate limited", false); err != nil {
		t.Fatalf("RecordFailure padded id: %v", err)
	}
	if err := store.MarkSummary(ctx, "\tv1", "/v/v1.md"); err != nil {
		t.Fatalf("MarkSummary padded id: %v", err)
	}
	item := testsupport.MustGet(t, store, "v1")
	if !item.TranscriptReady || !item.SummaryReady || item.FailureCount != 1 {
		t.Fatalf("unexpected item %+v", item)
	}
	if err := store.MarkTranscript(ctx, "  ", "/t/x.txt"); !errors.Is(err, library.ErrInvalid) {
		t.Fatalf("blank id: expected ErrInvalid, got %v", err)
	}
}

func TestMarkSummaryRequiresTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Register(t, store, "a", "Alpha")
	before := testsupport.MustGet(t, store, "a")

	err := store.MarkSummary(ctx, "a", "/v/a.md")
	if !library.IsPrecondition(err) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}

	after := testsupport.MustGet(t, store, "a")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("failed MarkSummary changed state (-before +after):\n%s", diff)
	}
}

func TestMarkRejectsEmptyRefs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.Register(t, store, "a", "Alpha")

	if err := store.MarkTranscript(ctx, "a", ""); !errors.Is(err, library.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty transcript ref, got %v", err)
	}
	testsupport.MarkTranscript(t, store, "a", "/t/a.txt")
	if err := store.MarkSummary(ctx, "a", " "); !errors.Is(err, library.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty note ref, got %v", err)
	}
	if item := testsupport.MustGet(t, store, "a"); item.SummaryReady {
		t.Fatal("summary flag must stay false after rejected mark")
	}
}

func TestFlagsAreMonotonic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Register(t, store, "a", "Alpha")
	testsupport.MarkTranscript(t, store, "a", "/t/a.txt")
	if err := store.MarkSummary(ctx, "a", "/v/a.md"); err != nil {
		t.Fatalf("MarkSummary failed: %v", err)
	}

	// Repeating transitions and recording failures never clears a flag.
	testsupport.MarkTranscript(t, store, "a", "/t/other.txt")
	if err := store.MarkSummary(ctx, "a", "/v/other.md"); err != nil {
		t.Fatalf("repeat MarkSummary failed: %v", err)
	}
	if err := store.RecordFailure(ctx, "a", library.FailureStageSummary, "late failure", true); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if _, err := store.Register(ctx, "a", "Alpha"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	item := testsupport.MustGet(t, store, "a")
	if !item.TranscriptReady || !item.SummaryReady {
		t.Fatalf("flags reset: %+v", item)
	}
	if item.TranscriptRef != "/t/a.txt" || item.NoteRef != "/v/a.md" {
		t.Fatalf("refs changed after repeat marks: %+v", item)
	}
	if item.Stage() != library.StagePublished {
		t.Fatalf("unexpected stage %q", item.Stage())
	}
}

func TestPendingSetsFollowInsertionOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Ids deliberately sort differently from registration order.
	ids := []string{"zeta", "alpha", "mid", "beta"}
	for _, id := range ids {
		testsupport.Register(t, store, id, "Title "+id)
	}
	testsupport.MarkTranscript(t, store, "alpha", "/t/alpha.txt")
	testsupport.MarkTranscript(t, store, "zeta", "/t/zeta.txt")
	testsupport.MarkTranscript(t, store, "beta", "/t/beta.txt")
	if err := store.MarkSummary(ctx, "alpha", "/v/alpha.md"); err != nil {
		t.Fatalf("MarkSummary failed: %v", err)
	}

	transcripts, err := store.PendingTranscripts(ctx)
	if err != nil {
		t.Fatalf("PendingTranscripts failed: %v", err)
	}
	wantTranscripts := []library.PendingTranscript{{ID: "mid", Title: "Title mid"}}
	if diff := cmp.Diff(wantTranscripts, transcripts); diff != "" {
		t.Fatalf("pending transcripts mismatch (-want +got):\n%s", diff)
	}

	summaries, err := store.PendingSummaries(ctx)
	if err != nil {
		t.Fatalf("PendingSummaries failed: %v", err)
	}
	wantSummaries := []library.PendingSummary{
		{ID: "zeta", Title: "Title zeta", TranscriptRef: "/t/zeta.txt"},
		{ID: "beta", Title: "Title beta", TranscriptRef: "/t/beta.txt"},
	}
	if diff := cmp.Diff(wantSummaries, summaries); diff != "" {
		t.Fatalf("pending summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestPendingSetsPartitionItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("v%d", i)
		testsupport.Register(t, store, id, id)
		if i%3 >= 1 {
			testsupport.MarkTranscript(t, store, id, "/t/"+id)
		}
		if i%3 == 2 {
			if err := store.MarkSummary(ctx, id, "/v/"+id); err != nil {
				t.Fatalf("MarkSummary failed: %v", err)
			}
		}
	}

	transcripts, err := store.PendingTranscripts(ctx)
	if err != nil {
		t.Fatalf("PendingTranscripts failed: %v", err)
	}
	summaries, err := store.PendingSummaries(ctx)
	if err != nil {
		t.Fatalf("PendingSummaries failed: %v", err)
	}
	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	seen := map[string]int{}
	for _, p := range transcripts {
		seen[p.ID]++
	}
	for _, p := range summaries {
		seen[p.ID]++
	}
	published := 0
	for _, item := range items {
		if item.SummaryReady {
			published++
			if seen[item.ID] != 0 {
				t.Fatalf("published item %s appears in a pending set", item.ID)
			}
			continue
		}
		if seen[item.ID] != 1 {
			t.Fatalf("item %s appears in %d pending sets, want exactly 1", item.ID, seen[item.ID])
		}
	}
	if published != 3 || len(transcripts) != 3 || len(summaries) != 3 {
		t.Fatalf("unexpected partition: published=%d transcripts=%d summaries=%d", published, len(transcripts), len(summaries))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := library.Stats{Total: 9, Discovered: 3, Transcribed: 3, Published: 3}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFailureKeepsItemPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Register(t, store, "a", "Alpha")
	for i := 0; i < 2; i++ {
		if err := store.RecordFailure(ctx, "a", library.FailureStageTranscript, "captions disabled", true); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	item := testsupport.MustGet(t, store, "a")
	if item.FailureCount != 2 || item.LastError != "captions disabled" || !item.LastErrorPermanent {
		t.Fatalf("unexpected failure bookkeeping: %+v", item)
	}
	pending, err := store.PendingTranscripts(ctx)
	if err != nil {
		t.Fatalf("PendingTranscripts failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a" {
		t.Fatalf("failed item must stay pending, got %+v", pending)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Failing != 1 || stats.Permanent != 1 {
		t.Fatalf("unexpected failure stats: %+v", stats)
	}

	testsupport.MarkTranscript(t, store, "a", "/t/a.txt")
	item = testsupport.MustGet(t, store, "a")
	if item.LastError != "" {
		t.Fatalf("expected transcript failure cleared after success, got %q", item.LastError)
	}

	if err := store.RecordFailure(ctx, "ghost", library.FailureStageTranscript, "x", false); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestOpenImportsLegacyPostedVideos(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	legacy, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	if _, err := legacy.Exec(`CREATE TABLE posted_videos (video_id TEXT PRIMARY KEY, title TEXT, posted_at TEXT)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	for _, row := range [][3]string{
		{"old2", "Second", "2024-01-02T10:00:00.123456"},
		{"old1", "First", "2024-01-01T09:00:00"},
	} {
		if _, err := legacy.Exec(`INSERT INTO posted_videos VALUES (?, ?, ?)`, row[0], row[1], row[2]); err != nil {
			t.Fatalf("insert legacy row: %v", err)
		}
	}
	if err := legacy.Close(); err != nil {
		t.Fatalf("close legacy db: %v", err)
	}

	store, err := library.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pending, err := store.PendingTranscripts(context.Background())
	if err != nil {
		t.Fatalf("PendingTranscripts failed: %v", err)
	}
	want := []library.PendingTranscript{{ID: "old2", Title: "Second"}, {ID: "old1", Title: "First"}}
	if diff := cmp.Diff(want, pending); diff != "" {
		t.Fatalf("legacy import mismatch (-want +got):\n%s", diff)
	}
	item := testsupport.MustGet(t, store, "old2")
	if item.DiscoveredAt.Year() != 2024 {
		t.Fatalf("expected legacy timestamp to parse, got %v", item.DiscoveredAt)
	}
}
