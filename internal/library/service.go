// Package library coordinates note files, the codec and the index: it is
// the single writer of the note library.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/starford/eleph/internal/apperr"
	"github.com/starford/eleph/internal/checksum"
	"github.com/starford/eleph/internal/codec"
	"github.com/starford/eleph/internal/index"
	"github.com/starford/eleph/internal/markdown"
	"github.com/starford/eleph/internal/models"
	"github.com/starford/eleph/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ExtractedTitle string    `json:"extracted_title"`
	Content        string    `json:"content"`
	Preview        string    `json:"preview"`
	Checksum       string    `json:"checksum"`
	Tags           []string  `json:"tags"`
	LastModified   time.Time `json:"last_modified"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Preview      string    `json:"preview"`
	Checksum     string    `json:"checksum"`
	Tags         []string  `json:"tags"`
	LastModified time.Time `json:"last_modified"`
}

// Rendered holds the derived views of a note.
type Rendered struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	HTML    string `json:"html"`
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	renderer markdown.Renderer
	logger   *slog.Logger
	now      func() time.Time

	// mu serializes writes so a read-check-write cycle is atomic
	// within the process.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRenderer replaces the default line renderer.
func WithRenderer(r markdown.Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// NewService creates a new library service.
func NewService(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{
		store:    store,
		db:       db,
		renderer: markdown.LineRenderer{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a fresh note. Fields set in init replace the defaults.
func (s *Service) Create(_ context.Context, init models.Update) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.NewNote(s.now()).With(init)
	exists, err := s.store.Exists(n.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("library: note %s: %w", n.ID, apperr.ErrAlreadyExists)
	}
	return s.write(n.ID, n)
}

// Get reads and decodes the note with the given id.
func (s *Service) Get(_ context.Context, id string) (*NoteDetail, error) {
	key, err := s.keyFor(id)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(key)
	if err != nil {
		return nil, err
	}
	return detail(codec.Decode(data, key), data), nil
}

// Save stamps n and writes it over whatever is stored under its id.
func (s *Service) Save(_ context.Context, n models.Note) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.keyFor(n.ID)
	if err != nil {
		return nil, err
	}
	return s.write(key, n)
}

// Update applies upd to the stored note. A non-empty ifMatch must match
// the checksum of the stored file or ErrConflict is returned.
func (s *Service) Update(_ context.Context, id string, upd models.Update, ifMatch string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.keyFor(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(key)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(ifMatch, existing) {
		return nil, fmt.Errorf("library: note %s: %w", id, apperr.ErrConflict)
	}
	return s.write(key, codec.Decode(existing, key).With(upd))
}

// Delete removes a note from storage and index.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.keyFor(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(key); err != nil {
		return err
	}
	return s.db.DeleteNote(key)
}

// List returns paginated notes with optional tag filter.
func (s *Service) List(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			ID:           r.ID,
			Title:        r.Title,
			Preview:      r.Preview,
			Checksum:     r.Checksum,
			Tags:         nonNilSlice(r.Tags),
			LastModified: r.LastModified,
		}
	}
	return items, total, nil
}

// LoadAll decodes every note file in the library, newest first. Files
// that cannot be read are logged and skipped.
func (s *Service) LoadAll(_ context.Context) ([]models.Note, error) {
	metas, err := s.store.List()
	if err != nil {
		return nil, err
	}
	notes := make([]models.Note, 0, len(metas))
	for _, m := range metas {
		data, err := s.store.Read(m.Key)
		if err != nil {
			s.logger.Warn("library: read failed", slog.String("key", m.Key), slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, codec.Decode(data, m.Key))
	}
	sortNewestFirst(notes)
	return notes, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns the tag vocabulary of the indexed notes.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.Tags()
}

// Render returns the effective title, preview and HTML of a note.
func (s *Service) Render(ctx context.Context, id string) (*Rendered, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		ID:      d.ID,
		Title:   d.ExtractedTitle,
		Preview: d.Preview,
		HTML:    s.renderer.Render(d.Content),
	}, nil
}

// SeedSamples writes the sample documents when the library holds no notes.
// It reports whether anything was written.
func (s *Service) SeedSamples(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas, err := s.store.List()
	if err != nil {
		return false, err
	}
	if len(metas) > 0 {
		return false, nil
	}
	for _, n := range Samples(s.now()) {
		// Samples carry their own timestamps, so they bypass Stamp.
		data := codec.Encode(n)
		if err := s.store.Write(n.ID, data); err != nil {
			return false, err
		}
		if _, err := index.IndexFile(s.db, n.ID, data); err != nil {
			return false, err
		}
		s.logger.Info("library: seeded sample", slog.String("id", n.ID), slog.String("title", n.Title))
	}
	return true, nil
}

// write stamps n, stores it under key and refreshes its index row.
// Callers hold s.mu.
func (s *Service) write(key string, n models.Note) (*NoteDetail, error) {
	data, _ := codec.Stamp(n, s.now())
	if err := s.store.Write(key, data); err != nil {
		return nil, err
	}
	stored, err := index.IndexFile(s.db, key, data)
	if err != nil {
		return nil, err
	}
	return detail(stored, data), nil
}

// keyFor resolves the storage key of a note id. Notes not yet indexed are
// stored under their id.
func (s *Service) keyFor(id string) (string, error) {
	row, err := s.db.GetNote(id)
	switch {
	case err == nil:
		return row.Key, nil
	case errors.Is(err, apperr.ErrNotFound):
		return id, nil
	default:
		return "", err
	}
}

func detail(n models.Note, data []byte) *NoteDetail {
	return &NoteDetail{
		ID:             n.ID,
		Title:          n.Title,
		ExtractedTitle: markdown.ExtractTitle(n.Content, n.Title),
		Content:        n.Content,
		Preview:        markdown.PreviewText(n.Content),
		Checksum:       checksum.Sum(data),
		Tags:           nonNilSlice(n.Tags),
		LastModified:   n.LastModified,
	}
}

func sortNewestFirst(notes []models.Note) {
	slices.SortStableFunc(notes, func(a, b models.Note) int {
		return b.LastModified.Compare(a.LastModified)
	})
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
