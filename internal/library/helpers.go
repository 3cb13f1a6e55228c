package library

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const itemColumns = "id, title, discovered_at, transcript_ready, transcript_ref, summary_ready, note_ref, last_error, last_error_stage, last_error_permanent, failure_count, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id                 string
		title              sql.NullString
		discoveredRaw      sql.NullString
		transcriptReady    sql.NullInt64
		transcriptRef      sql.NullString
		summaryReady       sql.NullInt64
		noteRef            sql.NullString
		lastError          sql.NullString
		lastErrorStage     sql.NullString
		lastErrorPermanent sql.NullInt64
		failureCount       sql.NullInt64
		updatedRaw         sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&discoveredRaw,
		&transcriptReady,
		&transcriptRef,
		&summaryReady,
		&noteRef,
		&lastError,
		&lastErrorStage,
		&lastErrorPermanent,
		&failureCount,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:                 id,
		Title:              title.String,
		TranscriptReady:    transcriptReady.Int64 != 0,
		TranscriptRef:      transcriptRef.String,
		SummaryReady:       summaryReady.Int64 != 0,
		NoteRef:            noteRef.String,
		LastError:          lastError.String,
		LastErrorStage:     lastErrorStage.String,
		LastErrorPermanent: lastErrorPermanent.Int64 != 0,
		FailureCount:       int(failureCount.Int64),
	}
	if discovered, err := parseTimeString(discoveredRaw.String); err == nil {
		item.DiscoveredAt = discovered
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	// Legacy rows carry timestamps without a zone.
	if t, err := time.Parse("2006-01-02T15:04:05.999999", value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// normalizeID trims surrounding whitespace so every method agrees on the key
// Register stored.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
