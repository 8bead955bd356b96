package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/eleph/internal/library"
)

const maxBodyBytes = 10 << 20

// Handler holds note route handlers.
type Handler struct {
	svc *library.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *library.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeNoteRequest reads and validates a NoteRequest. It writes the 400
// response itself and reports false on failure.
func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (NoteRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return req, false
	}
	return req, true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional pagination and filtering
//	@Tags			notes
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			sort	query		string	false	"Sort field"	Enums(modified, title)
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), limit, offset, q.Get("tag"), q.Get("sort"))
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Description	Omitted fields take the new-note defaults.
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	false	"Initial fields"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if r.ContentLength != 0 {
		var ok bool
		if req, ok = decodeNoteRequest(w, r); !ok {
			return
		}
	}
	note, err := h.svc.Create(r.Context(), req.Update())
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string		true	"Note id"
//	@Param			If-Match	header		string		false	"Checksum for optimistic concurrency"
//	@Param			body		body		NoteRequest	true	"Fields to replace"
//	@Success		200			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	note, err := h.svc.Update(r.Context(), id, req.Update(), r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update note", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete note", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NoteHTML handles GET /api/notes/{id}/html.
//
//	@Summary		Render a note as an HTML document
//	@Tags			notes
//	@Produce		html
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/html [get]
func (h *Handler) NoteHTML(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	out, err := h.svc.Render(r.Context(), id)
	if err != nil {
		writeError(w, "render note", err, slog.String("id", id))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.HTML))
}

// NotePreview handles GET /api/notes/{id}/preview.
//
//	@Summary		Get the effective title and preview of a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	PreviewResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/preview [get]
func (h *Handler) NotePreview(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	out, err := h.svc.Render(r.Context(), id)
	if err != nil {
		writeError(w, "preview note", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{ID: out.ID, Title: out.Title, Preview: out.Preview})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Tags handles GET /api/tags.
//
//	@Summary		List tags in use with their note counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Export handles GET /api/export.
//
//	@Summary		Decode and return every note file, newest first
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	ExportResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.LoadAll(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Notes: notes})
}
