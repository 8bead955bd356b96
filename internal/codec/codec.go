// Package codec converts notes to and from their on-disk text form: a
// front-matter block delimited by "---" lines followed by the markdown body.
package codec

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/eleph/internal/markdown"
	"github.com/starford/eleph/internal/models"
)

const (
	delim = "---"

	// DefaultTitle is used when the front-matter has no title line.
	DefaultTitle = "Untitled"
)

// Encode renders n in the file format. Fields are written in a fixed order
// and the body follows verbatim after a blank line.
func Encode(n models.Note) []byte {
	var sb strings.Builder
	sb.Grow(len(n.Content) + 128)

	sb.WriteString(delim + "\n")
	sb.WriteString("id: " + n.ID + "\n")
	sb.WriteString("title: " + n.Title + "\n")
	sb.WriteString("lastModified: " + FormatTime(n.LastModified) + "\n")
	sb.WriteString("tags: " + formatTags(n.Tags) + "\n")
	sb.WriteString(delim + "\n\n")
	sb.WriteString(n.Content)

	return []byte(sb.String())
}

// Stamp prepares n for persistence: LastModified becomes now and a note
// still carrying the starter title takes the title of its first heading.
// It returns the encoded bytes together with the stamped note.
func Stamp(n models.Note, now time.Time) ([]byte, models.Note) {
	n = n.Touch(now)
	if n.Title == models.UntitledTitle {
		n.Title = markdown.ExtractTitle(n.Content, n.Title)
	}
	return Encode(n), n
}

// Decoder parses note files. Now supplies the timestamp used when a file
// has no usable lastModified.
type Decoder struct {
	Now func() time.Time
}

var std = Decoder{Now: time.Now}

// Decode parses data with the current wall clock. See Decoder.Decode.
func Decode(data []byte, fallbackID string) models.Note {
	return std.Decode(data, fallbackID)
}

// Decode parses data into a note. It never fails: missing or malformed
// fields fall back to defaults (id → fallbackID, title → "Untitled",
// lastModified → now, tags → empty). Text without a leading delimiter is
// treated as a plain markdown file whose identity is fallbackID.
func (d Decoder) Decode(data []byte, fallbackID string) models.Note {
	text := string(data)
	now := d.now()

	if strings.HasPrefix(text, delim) {
		// The closing delimiter is positional: segment 1 is the front-matter
		// and everything after segment 2 is the body, re-joined so horizontal
		// rules in the markdown survive.
		parts := strings.Split(text, delim)
		if len(parts) >= 3 {
			n := models.Note{
				ID:           fallbackID,
				Title:        DefaultTitle,
				Content:      strings.TrimSpace(strings.Join(parts[2:], delim)),
				LastModified: now,
				Tags:         []string{},
			}
			applyFrontmatter(&n, parts[1])
			if n.ID == "" {
				n.ID = uuid.NewString()
			}
			return n
		}
	}

	id, title := fallbackID, fallbackID
	if id == "" {
		id, title = uuid.NewString(), DefaultTitle
	}
	return models.Note{
		ID:           id,
		Title:        title,
		Content:      text,
		LastModified: now,
		Tags:         []string{},
	}
}

func (d Decoder) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// applyFrontmatter reads "key: value" lines into n. Unknown keys and lines
// without a colon are skipped.
func applyFrontmatter(n *models.Note, block string) {
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "id":
			if value != "" {
				n.ID = value
			}
		case "title":
			n.Title = value
		case "lastModified":
			if t, err := ParseTime(value); err == nil {
				n.LastModified = t
			}
		case "tags":
			n.Tags = parseTags(value)
		}
	}
}

// FormatTime renders t as an ISO-8601 timestamp in UTC, second precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime parses an ISO-8601 timestamp. Fractional seconds are accepted.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = `"` + t + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// parseTags reads a bracketed list. Elements are trimmed of whitespace and
// quote characters; empty elements are dropped so "[]" is an empty list.
func parseTags(value string) []string {
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	out := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FallbackID derives a note identity from a storage key or file name:
// "notes/abc.md" → "abc".
func FallbackID(key string) string {
	base := filepath.Base(key)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
