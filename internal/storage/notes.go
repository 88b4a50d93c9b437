// Package storage persists notes the classification pipeline could not
// place, so their vocabulary can be promoted into the keyword
// dictionaries later.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS unclassified_notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	note       TEXT NOT NULL UNIQUE,
	category   TEXT NOT NULL,
	source     TEXT NOT NULL,
	seen_count INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_unclassified_notes_seen
	ON unclassified_notes(seen_count DESC);
`

// Note is one recorded unclassified note.
type Note struct {
	CreatedAt time.Time
	Note      string
	Category  string
	Source    string
	ID        int64
	SeenCount int64
}

// NoteStore is a SQLite-backed store of unclassified notes.
type NoteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the note database at path and runs
// the schema migration.
func Open(path string) (*NoteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening note database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating note database: %w", err)
	}
	return &NoteStore{db: db}, nil
}

// Record stores one unclassified note. Repeats of the same note bump
// its seen count instead of inserting a duplicate.
func (s *NoteStore) Record(ctx context.Context, note, category, source string) error {
	if note == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unclassified_notes (note, category, source)
		VALUES (?, ?, ?)
		ON CONFLICT(note) DO UPDATE SET
			seen_count = seen_count + 1,
			category   = excluded.category,
			source     = excluded.source`,
		note, category, source)
	if err != nil {
		return fmt.Errorf("recording note: %w", err)
	}
	return nil
}

// List returns up to limit notes, most frequently seen first.
func (s *NoteStore) List(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, note, category, source, seen_count, created_at
		FROM unclassified_notes
		ORDER BY seen_count DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Note, &n.Category, &n.Source, &n.SeenCount, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Close closes the underlying database.
func (s *NoteStore) Close() error {
	return s.db.Close()
}

// NopNoteStore discards every note. For callers that want the pipeline
// without persistence.
type NopNoteStore struct{}

// Record implements the note-store contract and drops the note.
func (NopNoteStore) Record(context.Context, string, string, string) error { return nil }
