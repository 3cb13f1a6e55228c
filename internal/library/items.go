package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Register records a newly discovered video. It returns true when the id was
// unknown and a row was inserted; re-registering a known id changes nothing.
func (s *Store) Register(ctx context.Context, id, title string) (bool, error) {
	id = normalizeID(id)
	if id == "" {
		return false, fmt.Errorf("register: %w: empty id", ErrInvalid)
	}
	now := s.timestamp()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO items (id, title, discovered_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, title, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("register %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("register %s: rows affected: %w", id, err)
	}
	return affected > 0, nil
}

// Has reports whether the id has been registered.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	id = normalizeID(id)
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM items WHERE id = ?", id)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("has %s: %w", id, err)
	}
	return count > 0, nil
}

// Get fetches a single item. Unknown ids return an error wrapping ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	ctx = ensureContext(ctx)
	id = normalizeID(id)
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return item, nil
}

// List returns every item in discovery order.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM items ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PendingTranscripts returns items whose transcript has not been recorded, in
// insertion order.
func (s *Store) PendingTranscripts(ctx context.Context) ([]PendingTranscript, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM items WHERE transcript_ready = 0 ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("pending transcripts: %w", err)
	}
	defer rows.Close()

	var pending []PendingTranscript
	for rows.Next() {
		var (
			p     PendingTranscript
			title sql.NullString
		)
		if err := rows.Scan(&p.ID, &title); err != nil {
			return nil, fmt.Errorf("scan pending transcript: %w", err)
		}
		p.Title = title.String
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// PendingSummaries returns items that have a transcript but no published
// note, in insertion order.
func (s *Store) PendingSummaries(ctx context.Context) ([]PendingSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, transcript_ref FROM items WHERE transcript_ready = 1 AND summary_ready = 0 ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("pending summaries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSummary
	for rows.Next() {
		var (
			p     PendingSummary
			title sql.NullString
			ref   sql.NullString
		)
		if err := rows.Scan(&p.ID, &title, &ref); err != nil {
			return nil, fmt.Errorf("scan pending summary: %w", err)
		}
		p.Title = title.String
		p.TranscriptRef = ref.String
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
