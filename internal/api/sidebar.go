package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/eleph/internal/metadata"
	"github.com/starford/eleph/internal/models"
)

// SidebarHandler serves the folders and tags shown in the sidebar.
type SidebarHandler struct {
	meta *metadata.Store
}

// NewSidebarHandler creates a handler backed by the metadata store.
func NewSidebarHandler(meta *metadata.Store) *SidebarHandler {
	return &SidebarHandler{meta: meta}
}

// Get handles GET /api/sidebar.
//
//	@Summary		Get sidebar folders and tags
//	@Tags			sidebar
//	@Produce		json
//	@Success		200	{object}	SidebarResponse
//	@Security		BearerAuth
//	@Router			/sidebar [get]
func (h *SidebarHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.meta.Load())
}

// AddFolder handles POST /api/sidebar/folders.
//
//	@Summary		Add a sidebar folder
//	@Tags			sidebar
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SidebarEntryRequest	true	"Folder name"
//	@Success		200		{object}	SidebarResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sidebar/folders [post]
func (h *SidebarHandler) AddFolder(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.meta.AddFolder)
}

// RemoveFolder handles DELETE /api/sidebar/folders/{name}.
//
//	@Summary		Remove a sidebar folder
//	@Tags			sidebar
//	@Param			name	path		string	true	"Folder name"
//	@Success		200		{object}	SidebarResponse
//	@Security		BearerAuth
//	@Router			/sidebar/folders/{name} [delete]
func (h *SidebarHandler) RemoveFolder(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.meta.RemoveFolder)
}

// AddTag handles POST /api/sidebar/tags.
//
//	@Summary		Add a sidebar tag
//	@Tags			sidebar
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SidebarEntryRequest	true	"Tag name"
//	@Success		200		{object}	SidebarResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sidebar/tags [post]
func (h *SidebarHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.meta.AddTag)
}

// RemoveTag handles DELETE /api/sidebar/tags/{name}.
//
//	@Summary		Remove a sidebar tag
//	@Tags			sidebar
//	@Param			name	path		string	true	"Tag name"
//	@Success		200		{object}	SidebarResponse
//	@Security		BearerAuth
//	@Router			/sidebar/tags/{name} [delete]
func (h *SidebarHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.meta.RemoveTag)
}

type sidebarOp func(name string) (models.TagsAndFolders, error)

func (h *SidebarHandler) add(w http.ResponseWriter, r *http.Request, op sidebarOp) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req SidebarEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	tf, err := op(req.Name)
	if err != nil {
		writeError(w, "sidebar update", err)
		return
	}
	writeJSON(w, http.StatusOK, tf)
}

func (h *SidebarHandler) remove(w http.ResponseWriter, r *http.Request, op sidebarOp) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	tf, err := op(name)
	if err != nil {
		writeError(w, "sidebar update", err)
		return
	}
	writeJSON(w, http.StatusOK, tf)
}
