package index

import (
	"fmt"
)

// Sort orders accepted by ListNotes.
const (
	SortModified = "modified"
	SortTitle    = "title"
)

// ListNotes returns one page of notes and the total match count. An empty
// tag matches every note; sort is SortModified (newest first, default) or
// SortTitle.
func (db *DB) ListNotes(limit, offset int, tag, sort string) ([]NoteRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if tag != "" {
		where = `WHERE EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	order := `last_modified DESC, title COLLATE NOCASE ASC`
	if sort == SortTitle {
		order = `title COLLATE NOCASE ASC, last_modified DESC`
	}

	rows, err := db.conn.Query(`
		SELECT id, file_key, title, checksum, tags, preview, last_modified
		FROM notes `+where+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	out := []NoteRow{}
	for rows.Next() {
		n, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// Tags returns every tag used by an indexed note with its usage count,
// most used first.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT json_each.value AS tag, count(*) AS n
		FROM notes, json_each(notes.tags)
		GROUP BY tag
		ORDER BY n DESC, tag ASC`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	out := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
