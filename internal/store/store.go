// Package store provides SQLite-backed persistence for notes and flashcards.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	cover_image TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT 'personal',
	status      TEXT NOT NULL DEFAULT 'active',
	created     INTEGER NOT NULL,
	updated     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated);
CREATE INDEX IF NOT EXISTS idx_notes_user_status ON notes(user_id, status);

CREATE TABLE IF NOT EXISTS flashcards (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	question      TEXT NOT NULL,
	answer        TEXT NOT NULL,
	category      TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'active',
	review_count  INTEGER NOT NULL DEFAULT 0,
	last_reviewed INTEGER,
	created       INTEGER NOT NULL,
	updated       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flashcards_user_updated ON flashcards(user_id, updated);

CREATE TABLE IF NOT EXISTS flashcard_images (
	id           TEXT PRIMARY KEY,
	flashcard_id TEXT NOT NULL,
	file_url     TEXT NOT NULL,
	created      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flashcard_images_card ON flashcard_images(flashcard_id);
`

var (
	// ErrNotFound is returned when no record matches the id and user.
	ErrNotFound = errors.New("not found")
	// ErrInvalid wraps validation failures on record fields.
	ErrInvalid = errors.New("invalid input")
)

// Store is a SQLite-backed note and flashcard repository.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a note database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open note db: %w", err)
	}

	// SQLite pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping() error {
	if s == nil {
		return errors.New("store not open")
	}
	return s.db.Ping()
}
