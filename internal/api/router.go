package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/metadata"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *library.Service, meta *metadata.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	sh := NewSidebarHandler(meta)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD and derived views.
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
		r.Get("/{id}/html", h.NoteHTML)
		r.Get("/{id}/preview", h.NotePreview)
	})

	// Search and tag vocabulary.
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)
	r.Get("/export", h.Export)

	// Sidebar folders and tags.
	r.Route("/sidebar", func(r chi.Router) {
		r.Get("/", sh.Get)
		r.Post("/folders", sh.AddFolder)
		r.Delete("/folders/{name}", sh.RemoveFolder)
		r.Post("/tags", sh.AddTag)
		r.Delete("/tags/{name}", sh.RemoveTag)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
