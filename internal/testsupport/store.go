package testsupport

import (
	"context"
	"testing"

	"tubecron/internal/config"
	"tubecron/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Register adds a video to the store, failing the test on error.
func Register(t testing.TB, store *library.Store, id, title string) {
	t.Helper()

	if _, err := store.Register(context.Background(), id, title); err != nil {
		t.Fatalf("store.Register(%s): %v", id, err)
	}
}

// MarkTranscript records a transcript ref, failing the test on error.
func MarkTranscript(t testing.TB, store *library.Store, id, ref string) {
	t.Helper()

	if err := store.MarkTranscript(context.Background(), id, ref); err != nil {
		t.Fatalf("store.MarkTranscript(%s): %v", id, err)
	}
}

// MustGet fetches an item, failing the test if it is missing.
func MustGet(t testing.TB, store *library.Store, id string) *library.Item {
	t.Helper()

	item, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("store.Get(%s): %v", id, err)
	}
	return item
}
