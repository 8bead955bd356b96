package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/eleph/internal/apperr"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID           string
	Key          string
	Title        string
	Checksum     string
	Tags         []string
	Preview      string
	LastModified time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// TagCount is one entry of the tag vocabulary.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// UpsertNote inserts or replaces a note and its FTS entry within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	// A file whose id changed, or an id that moved to another file, leaves
	// a row that would collide with this one.
	stale, err := staleIDs(tx, n.ID, n.Key)
	if err != nil {
		return err
	}
	for _, id := range stale {
		if err := ftsDelete(tx, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE (file_key = ? AND id <> ?) OR (id = ? AND file_key <> ?)`,
		n.Key, n.ID, n.ID, n.Key); err != nil {
		return fmt.Errorf("index: clear stale rows: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO notes (id, file_key, title, checksum, tags, preview, body, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_key      = excluded.file_key,
			title         = excluded.title,
			checksum      = excluded.checksum,
			tags          = excluded.tags,
			preview       = excluded.preview,
			body          = excluded.body,
			last_modified = excluded.last_modified
	`, n.ID, n.Key, n.Title, n.Checksum, string(tagsJSON), n.Preview, body, n.LastModified.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.ID, n.Title, body, tags); err != nil {
		return err
	}

	return tx.Commit()
}

func staleIDs(tx *sql.Tx, id, key string) ([]string, error) {
	rows, err := tx.Query(`SELECT id FROM notes WHERE (file_key = ? AND id <> ?) OR (id = ? AND file_key <> ?)`,
		key, id, id, key)
	if err != nil {
		return nil, fmt.Errorf("index: stale rows: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteNote removes the note stored under the given file key and its FTS entry.
func (db *DB) DeleteNote(key string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	err = tx.QueryRow(`SELECT id FROM notes WHERE file_key = ?`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("index: delete lookup: %w", err)
	}

	if err := ftsDelete(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file key, or empty string if not found.
func (db *DB) GetChecksum(key string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE file_key = ?`, key).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns file key → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT file_key, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, cs string
		if err := rows.Scan(&k, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// GetNote returns the indexed row for a note id.
func (db *DB) GetNote(id string) (*NoteRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, file_key, title, checksum, tags, preview, last_modified
		FROM notes WHERE id = ?`, id)
	n, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: note %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return &n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (NoteRow, error) {
	var (
		n        NoteRow
		tagsJSON string
	)
	if err := s.Scan(&n.ID, &n.Key, &n.Title, &n.Checksum, &tagsJSON, &n.Preview, &n.LastModified); err != nil {
		return NoteRow{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	return n, nil
}
