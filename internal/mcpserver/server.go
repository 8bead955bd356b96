// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Eleph tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/eleph/internal/codec"
	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/models"
)

const noteFormatURI = "eleph://note-format"

// Server wraps the MCP server with Eleph tools.
type Server struct {
	mcp *server.MCPServer
	svc *library.Service
}

// New creates a new MCP server with all Eleph tools registered.
func New(svc *library.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Eleph",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note in its on-disk format: front-matter block followed by the Markdown body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The server assigns the id and timestamp and writes the "+
			"front-matter; pass only the Markdown body. Read the contract first via the "+
			"get_note_contract tool or the "+noteFormatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body; its first heading becomes the title")),
		mcp.WithString("title", mcp.Description("Explicit title (defaults to the first heading)")),
		mcp.WithArray("tags", mcp.Description("Tags for the note"), mcp.WithStringItems()),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Write a whole note in its on-disk format (front-matter block plus Markdown "+
			"body), as returned by read_note. The note is stored under its front-matter id; "+
			"lastModified is set by the server."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Full note text")),
		mcp.WithString("id", mcp.Description("Id to use when the document has no id field")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first, optionally filtered by tag."),
		mcp.WithString("tag", mcp.Description("Only list notes carrying this tag")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of notes (default 50)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("render_note",
		mcp.WithDescription("Render a note as a minimal HTML document, or return its title and preview text."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("format", mcp.Description("html (default) or preview"), mcp.Enum("html", "preview")),
	), s.renderNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Eleph note format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("On-disk format of an Eleph note."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	n := models.Note{ID: d.ID, Title: d.Title, Content: d.Content, LastModified: d.LastModified, Tags: d.Tags}
	return mcp.NewToolResultText(string(codec.Encode(n))), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	upd := models.Update{Content: &content}
	if title := req.GetString("title", ""); title != "" {
		upd.Title = &title
	}
	if tags := req.GetStringSlice("tags", nil); tags != nil {
		upd.Tags, upd.SetTags = tags, true
	}
	if err := upd.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid note: %v", err)), nil
	}

	d, err := s.svc.Create(ctx, upd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.ID)), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := codec.Decode([]byte(doc), req.GetString("id", ""))
	if err := n.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid note: %v", err)), nil
	}
	d, err := s.svc.Save(ctx, n)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (%s)", d.ID, d.Checksum)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.List(ctx, req.GetInt("limit", 50), 0, req.GetString("tag", ""), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"notes": items, "total": total}), nil
}

func (s *Server) renderNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Render(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	switch format := req.GetString("format", "html"); format {
	case "html":
		return mcp.NewToolResultText(out.HTML), nil
	case "preview":
		return jsonResult(map[string]string{"title": out.Title, "preview": out.Preview}), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format: %s", format)), nil
	}
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
