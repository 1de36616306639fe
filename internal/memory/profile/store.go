// Package profile provides a durable, SQLite-backed store for the
// single-user profile spec.md:200 names ("local user-profile store"):
// a name, a flat preferences map, and a deduplicated list of notes.
// Grounded on original_source/services/memory_service.py's
// name/preferences/notes profile shape, moved from that file's JSON-file
// persistence onto modernc.org/sqlite - the same pure-Go driver
// internal/memory/backend/sqlitevec already uses for the knowledge store,
// so the profile survives a process restart the way the original's
// data/user_profile.json did.
package profile

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// nameKey is the profile_fields row that holds the root "name" field;
// every other key is a preference, mirroring memory_service.py's
// update_profile split between self.profile["name"] and
// self.profile["preferences"][key].
const nameKey = "name"

// Profile is a snapshot of the stored name, preferences, and notes.
type Profile struct {
	Name        string
	Preferences map[string]string
	Notes       []string
}

// Store is a SQLite-backed profile store.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the profile database at path. Pass
// ":memory:" for a non-persistent store.
func New(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profile: open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profile_fields (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("profile: create profile_fields: %w", err)
	}
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profile_notes (
			content TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("profile: create profile_notes: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// AddNote appends content to the notes list if it is not already present,
// matching memory_service.py's add_note dedupe ("if content not in
// self.profile['notes']"). Returns whether a row was actually inserted.
func (s *Store) AddNote(ctx context.Context, content string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO profile_notes(content) VALUES (?)`, content)
	if err != nil {
		return false, fmt.Errorf("profile: add note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("profile: add note: %w", err)
	}
	return n > 0, nil
}

// UpdateField upserts key=value, matching memory_service.py's
// update_profile (root "name" field or a preferences entry, depending on
// key).
func (s *Store) UpdateField(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_fields(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("profile: update field %q: %w", key, err)
	}
	return nil
}

// IsRootField reports whether key is stored on the profile's root (just
// "name") rather than folded into Preferences.
func IsRootField(key string) bool { return key == nameKey }

// Snapshot returns the full stored profile.
func (s *Store) Snapshot(ctx context.Context) (Profile, error) {
	profile := Profile{Preferences: map[string]string{}}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM profile_fields`)
	if err != nil {
		return profile, fmt.Errorf("profile: read fields: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return profile, fmt.Errorf("profile: scan field: %w", err)
		}
		if IsRootField(key) {
			profile.Name = value
		} else {
			profile.Preferences[key] = value
		}
	}
	if err := rows.Err(); err != nil {
		return profile, fmt.Errorf("profile: read fields: %w", err)
	}

	noteRows, err := s.db.QueryContext(ctx, `SELECT content FROM profile_notes ORDER BY created_at ASC`)
	if err != nil {
		return profile, fmt.Errorf("profile: read notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var content string
		if err := noteRows.Scan(&content); err != nil {
			return profile, fmt.Errorf("profile: scan note: %w", err)
		}
		profile.Notes = append(profile.Notes, content)
	}
	if err := noteRows.Err(); err != nil {
		return profile, fmt.Errorf("profile: read notes: %w", err)
	}

	return profile, nil
}
