package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MarkTranscript records a successful transcript fetch. Marking an item that
// already has a transcript keeps the original reference.
func (s *Store) MarkTranscript(ctx context.Context, id, ref string) error {
	id = normalizeID(id)
	if id == "" {
		return fmt.Errorf("mark transcript: %w: empty id", ErrInvalid)
	}
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("mark transcript %s: %w: empty transcript ref", id, ErrInvalid)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE items SET
			transcript_ref = CASE WHEN transcript_ready = 1 THEN transcript_ref ELSE ? END,
			transcript_ready = 1,
			last_error = CASE WHEN last_error_stage = ? THEN NULL ELSE last_error END,
			last_error_stage = CASE WHEN last_error_stage = ? THEN NULL ELSE last_error_stage END,
			updated_at = ?
		 WHERE id = ?`,
		ref, FailureStageTranscript, FailureStageTranscript, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("mark transcript %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark transcript %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("mark transcript %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkSummary records a published note. The item must already have a
// transcript; otherwise ErrPrecondition is returned and nothing changes.
func (s *Store) MarkSummary(ctx context.Context, id, ref string) error {
	ctx = ensureContext(ctx)
	id = normalizeID(id)
	if id == "" {
		return fmt.Errorf("mark summary: %w: empty id", ErrInvalid)
	}
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("mark summary %s: %w: empty note ref", id, ErrInvalid)
	}
	return retryOnBusy(ctx, func() error {
		return s.markSummaryTx(ctx, id, ref)
	})
}

func (s *Store) markSummaryTx(ctx context.Context, id, ref string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark summary %s: begin: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var transcriptReady int
	row := tx.QueryRowContext(ctx, "SELECT transcript_ready FROM items WHERE id = ?", id)
	if err := row.Scan(&transcriptReady); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("mark summary %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("mark summary %s: %w", id, err)
	}
	if transcriptReady == 0 {
		return fmt.Errorf("mark summary %s: %w: transcript not recorded", id, ErrPrecondition)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET
			note_ref = CASE WHEN summary_ready = 1 THEN note_ref ELSE ? END,
			summary_ready = 1,
			last_error = NULL,
			last_error_stage = NULL,
			last_error_permanent = 0,
			updated_at = ?
		 WHERE id = ?`,
		ref, s.timestamp(), id,
	); err != nil {
		return fmt.Errorf("mark summary %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark summary %s: commit: %w", id, err)
	}
	return nil
}

// RecordFailure notes the most recent stage failure for an item. It never
// touches the stage flags, so the item stays pending.
func (s *Store) RecordFailure(ctx context.Context, id, stage, reason string, permanent bool) error {
	id = normalizeID(id)
	if id == "" {
		return fmt.Errorf("record failure: %w: empty id", ErrInvalid)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE items SET
			last_error = ?,
			last_error_stage = ?,
			last_error_permanent = ?,
			failure_count = failure_count + 1,
			updated_at = ?
		 WHERE id = ?`,
		nullableString(strings.TrimSpace(reason)), nullableString(stage), boolToInt(permanent), s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("record failure %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record failure %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("record failure %s: %w", id, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err represents an unknown item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPrecondition reports whether err represents an out-of-order transition.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
