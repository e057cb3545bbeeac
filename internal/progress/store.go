// Package progress persists per-lesson completion state in a local SQLite
// database so learners can track where they are in the curriculum.
package progress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Current schema version
const SchemaVersion = "1"

// Record is one completed lesson.
type Record struct {
	Lesson      string
	CompletedAt time.Time
}

// Store is a SQLite-backed progress store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a progress store at the given path. Parent
// directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating progress directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS completions (
			lesson TEXT PRIMARY KEY,
			completed_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}

	version, err := s.getMetadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadata("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Mark records a lesson as completed. Marking twice updates the timestamp.
func (s *Store) Mark(lesson string) error {
	_, err := s.db.Exec(`
		INSERT INTO completions (lesson, completed_at) VALUES (?, ?)
		ON CONFLICT(lesson) DO UPDATE SET completed_at = excluded.completed_at
	`, lesson, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Reset removes a lesson's completion mark. Resetting an unmarked lesson is
// not an error.
func (s *Store) Reset(lesson string) error {
	_, err := s.db.Exec("DELETE FROM completions WHERE lesson = ?", lesson)
	return err
}

// ResetAll clears all completion marks.
func (s *Store) ResetAll() error {
	_, err := s.db.Exec("DELETE FROM completions")
	return err
}

// Done reports whether a lesson is marked completed.
func (s *Store) Done(lesson string) (bool, error) {
	var l string
	err := s.db.QueryRow("SELECT lesson FROM completions WHERE lesson = ?", lesson).Scan(&l)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all completion records ordered by lesson key.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query("SELECT lesson, completed_at FROM completions ORDER BY lesson")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			lesson string
			when   string
		)
		if err := rows.Scan(&lesson, &when); err != nil {
			return nil, err
		}
		completedAt, err := time.Parse(time.RFC3339, when)
		if err != nil {
			return nil, fmt.Errorf("corrupt completed_at for %s: %w", lesson, err)
		}
		records = append(records, Record{Lesson: lesson, CompletedAt: completedAt})
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
