//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

const snippetRadius = 60

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Without FTS5 the body column in notes is searched directly.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// Search matches query as a case-insensitive substring of the title, body
// or tags. The snippet is cut from the body around the first hit, or is the
// preview when only the title or tags matched.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, preview, body
		FROM notes
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value LIKE ? ESCAPE '\')
		ORDER BY last_modified DESC
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var (
			r             SearchResult
			preview, body string
		)
		if err := rows.Scan(&r.ID, &r.Title, &preview, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippet(body, query)
		if r.Snippet == "" {
			r.Snippet = preview
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// snippet returns the text around the first case-insensitive occurrence of
// query in body, with the hit wrapped in <b> tags like FTS5's snippet().
func snippet(body, query string) string {
	lb, lq := strings.ToLower(body), strings.ToLower(query)
	if query == "" || len(lb) != len(body) || len(lq) != len(query) {
		return ""
	}
	i := strings.Index(lb, lq)
	if i < 0 {
		return ""
	}
	start, end := max(i-snippetRadius, 0), min(i+len(query)+snippetRadius, len(body))
	for start > 0 && !isRuneStart(body[start]) {
		start--
	}
	for end < len(body) && !isRuneStart(body[end]) {
		end++
	}
	s := body[start:i] + "<b>" + body[i:i+len(query)] + "</b>" + body[i+len(query):end]
	s = strings.Join(strings.Fields(s), " ")
	if start > 0 {
		s = "..." + s
	}
	if end < len(body) {
		s += "..."
	}
	return s
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
