package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/starford/eleph/internal/codec"
	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/markdown"
	"github.com/starford/eleph/internal/models"
)

// Render output formats.
const (
	RenderHTML    = "html"
	RenderPreview = "preview"
	RenderJSON    = "json"
)

// RenderFile decodes a note file outside any library and writes one of its
// derived views to w.
func RenderFile(w io.Writer, path, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	n := codec.Decode(data, codec.FallbackID(path))

	switch format {
	case RenderHTML, "":
		_, err = io.WriteString(w, markdown.ToHTML(n.Content)+"\n")
	case RenderPreview:
		_, err = io.WriteString(w, markdown.PreviewText(n.Content)+"\n")
	case RenderJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(library.Rendered{
			ID:      n.ID,
			Title:   markdown.ExtractTitle(n.Content, n.Title),
			Preview: markdown.PreviewText(n.Content),
			HTML:    markdown.ToHTML(n.Content),
		})
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return err
}

// NewNote creates a note in the configured library and returns it.
func NewNote(ctx context.Context, title string, tags []string, opts ...Option) (*library.NoteDetail, error) {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return nil, err
	}
	rt, err := open(ctx, app)
	if err != nil {
		return nil, err
	}
	defer rt.db.Close()

	var upd models.Update
	if title != "" {
		content := "# " + title + "\n\n"
		upd.Title = &title
		upd.Content = &content
	}
	if len(tags) > 0 {
		upd.Tags = tags
		upd.SetTags = true
	}
	return rt.svc.Create(ctx, upd)
}
