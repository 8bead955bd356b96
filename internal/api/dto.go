package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/eleph/internal/index"
	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/models"
)

// Sidebar names are stored one per YAML list entry.
var singleLine = regexp.MustCompile(`^[^\r\n]*$`)

// NoteRequest is the request body for creating or updating a note. Omitted
// fields keep their current (or default) values.
type NoteRequest struct {
	Title   *string  `json:"title,omitempty" example:"Groceries"`
	Content *string  `json:"content,omitempty" example:"# Groceries\n\n- milk"`
	Tags    []string `json:"tags,omitempty" example:"home,errands"`
}

// Validate implements validation.Validatable.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, models.TitleRules...),
		validation.Field(&r.Tags, models.TagsRule),
	)
}

// Update converts the request into a note update.
func (r NoteRequest) Update() models.Update {
	return models.Update{
		Title:   r.Title,
		Content: r.Content,
		Tags:    r.Tags,
		SetTags: r.Tags != nil,
	}
}

// SidebarEntryRequest names a folder or tag to add to the sidebar.
type SidebarEntryRequest struct {
	Name string `json:"name" example:"Work" validate:"required"`
}

// Validate implements validation.Validatable.
func (r SidebarEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128), validation.Match(singleLine)),
	)
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = library.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = library.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// PreviewResponse carries the derived title and preview of a note.
type PreviewResponse struct {
	ID      string `json:"id" example:"0b6f..." validate:"required"`
	Title   string `json:"title" example:"Groceries" validate:"required"`
	Preview string `json:"preview" example:"milk, eggs" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// TagsResponse lists the tags in use with their counts.
type TagsResponse struct {
	Tags []index.TagCount `json:"tags" validate:"required"`
}

// SidebarResponse is the folders and tags shown in the sidebar.
type SidebarResponse = models.TagsAndFolders

// ExportResponse holds every note in the library, newest first.
type ExportResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
}
