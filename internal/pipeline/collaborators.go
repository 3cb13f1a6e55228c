package pipeline

import (
	"context"

	"tubecron/internal/library"
)

// Store is the subset of the state store the pipeline drives.
type Store interface {
	Register(ctx context.Context, id, title string) (bool, error)
	MarkTranscript(ctx context.Context, id, ref string) error
	MarkSummary(ctx context.Context, id, ref string) error
	RecordFailure(ctx context.Context, id, stage, reason string, permanent bool) error
	PendingTranscripts(ctx context.Context) ([]library.PendingTranscript, error)
	PendingSummaries(ctx context.Context) ([]library.PendingSummary, error)
}

// Candidate is one video reported by the discovery source.
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Page is one page of discovery results. An empty NextPageToken marks the
// last page.
type Page struct {
	Candidates    []Candidate
	NextPageToken string
}

// Source lists liked videos one page at a time.
type Source interface {
	LikedPage(ctx context.Context, pageToken string) (Page, error)
}

// TranscriptFetcher obtains and stores a transcript, returning its reference.
// Fetching the same id twice must be harmless.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, id string) Result
}

// TranscriptReader loads transcript text from a reference produced by a
// TranscriptFetcher.
type TranscriptReader interface {
	ReadTranscript(ctx context.Context, ref string) (string, error)
}

// Summarizer condenses one chunk of transcript text. Transient results are
// retried; permanent ones are not.
type Summarizer interface {
	Summarize(ctx context.Context, chunk string) Result
}

// Note is everything a publisher needs to render a video's note.
type Note struct {
	ID            string
	Title         string
	TranscriptRef string
	Transcript    string
	Summary       string
}

// NotePublisher writes a note and returns its reference.
type NotePublisher interface {
	PublishNote(ctx context.Context, note Note) Result
}

// Notifier receives best-effort notices about published notes.
type Notifier interface {
	NotifyNotePublished(ctx context.Context, title, ref string) error
}
