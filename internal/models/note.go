// Package models defines the domain types for Eleph.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Defaults assigned to a freshly created note.
const (
	UntitledTitle   = "Untitled Document"
	UntitledContent = "# Untitled Document\n\nStart writing here..."
)

// Note is one markdown document in the library.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	LastModified time.Time `json:"last_modified"`
	Tags         []string  `json:"tags"`
}

// NewNote returns a fresh note with a generated id and the starter content.
func NewNote(now time.Time) Note {
	return Note{
		ID:           uuid.NewString(),
		Title:        UntitledTitle,
		Content:      UntitledContent,
		LastModified: now,
		Tags:         []string{},
	}
}

// Update lists the fields to replace on a note. Nil fields are left alone.
type Update struct {
	Title   *string
	Content *string
	Tags    []string
	// SetTags distinguishes "clear the tags" from "leave the tags alone".
	SetTags bool
}

// With returns a copy of n with u applied. The id is never changed.
func (n Note) With(u Update) Note {
	out := n
	if u.Title != nil {
		out.Title = *u.Title
	}
	if u.Content != nil {
		out.Content = *u.Content
	}
	if u.SetTags {
		out.Tags = append([]string{}, u.Tags...)
	} else {
		out.Tags = append([]string{}, n.Tags...)
	}
	return out
}

// Touch returns a copy of n with LastModified set to t.
func (n Note) Touch(t time.Time) Note {
	n.Tags = append([]string{}, n.Tags...)
	n.LastModified = t
	return n
}

// SameTags reports whether a and b hold the same tags, ignoring order and
// repetition.
func SameTags(a, b []string) bool {
	set := func(s []string) map[string]struct{} {
		m := make(map[string]struct{}, len(s))
		for _, v := range s {
			m[v] = struct{}{}
		}
		return m
	}
	sa, sb := set(a), set(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

// NoteMeta is a lightweight representation returned by list operations.
type NoteMeta struct {
	Key       string    `json:"key"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
