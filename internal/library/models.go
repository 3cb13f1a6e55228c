package library

import "time"

// Stage is the lifecycle position derived from an item's flags.
type Stage string

const (
	StageDiscovered  Stage = "discovered"
	StageTranscribed Stage = "transcribed"
	StagePublished   Stage = "published"
)

// Failure stage names recorded for operator visibility.
const (
	FailureStageTranscript = "transcript"
	FailureStageSummary    = "summary"
)

// Item is one discovered video and its pipeline state.
type Item struct {
	ID                 string
	Title              string
	DiscoveredAt       time.Time
	TranscriptReady    bool
	TranscriptRef      string
	SummaryReady       bool
	NoteRef            string
	LastError          string
	LastErrorStage     string
	LastErrorPermanent bool
	FailureCount       int
	UpdatedAt          time.Time
}

// Stage derives the lifecycle position from the two flags.
func (i Item) Stage() Stage {
	switch {
	case i.SummaryReady:
		return StagePublished
	case i.TranscriptReady:
		return StageTranscribed
	default:
		return StageDiscovered
	}
}

// PendingTranscript is an item still waiting for a transcript.
type PendingTranscript struct {
	ID    string
	Title string
}

// PendingSummary is an item with a transcript that still needs its note.
type PendingSummary struct {
	ID            string
	Title         string
	TranscriptRef string
}

// Stats aggregates item counts per derived stage.
type Stats struct {
	Total       int
	Discovered  int
	Transcribed int
	Published   int
	Failing     int
	Permanent   int
}

// DatabaseHealth captures diagnostic information about the state database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
