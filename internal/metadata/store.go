// Package metadata persists the sidebar's folders and tag vocabulary as a
// small YAML file next to the notes.
package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/eleph/internal/apperr"
	"github.com/starford/eleph/internal/models"
)

const (
	dirName  = ".eleph_metadata"
	fileName = "tags_and_folders.yaml"
)

// Store reads and writes models.TagsAndFolders. Every mutation is a
// load-modify-save cycle under one mutex.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore returns a store that keeps its file under libraryRoot.
func NewStore(libraryRoot string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   filepath.Join(libraryRoot, dirName, fileName),
		logger: logger,
	}
}

// Path returns the metadata file location.
func (s *Store) Path() string { return s.path }

// Initialize writes the defaults when no metadata file exists yet.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("metadata: stat: %w", apperr.Classify(err))
	}
	return s.save(models.DefaultTagsAndFolders())
}

// Load returns the stored folders and tags. A missing or unreadable file
// yields the defaults.
func (s *Store) Load() models.TagsAndFolders {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the stored folders and tags.
func (s *Store) Save(tf models.TagsAndFolders) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(tf)
}

// AddFolder adds folder unless it is already present.
func (s *Store) AddFolder(folder string) (models.TagsAndFolders, error) {
	return s.mutate(func(tf *models.TagsAndFolders) bool { return tf.AddFolder(folder) })
}

// RemoveFolder removes every entry named folder.
func (s *Store) RemoveFolder(folder string) (models.TagsAndFolders, error) {
	return s.mutate(func(tf *models.TagsAndFolders) bool { return tf.RemoveFolder(folder) })
}

// AddTag adds tag unless it is already present.
func (s *Store) AddTag(tag string) (models.TagsAndFolders, error) {
	return s.mutate(func(tf *models.TagsAndFolders) bool { return tf.AddTag(tag) })
}

// RemoveTag removes every entry named tag.
func (s *Store) RemoveTag(tag string) (models.TagsAndFolders, error) {
	return s.mutate(func(tf *models.TagsAndFolders) bool { return tf.RemoveTag(tag) })
}

func (s *Store) mutate(fn func(*models.TagsAndFolders) bool) (models.TagsAndFolders, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf := s.load()
	if !fn(&tf) {
		return tf, nil
	}
	if err := s.save(tf); err != nil {
		return tf, err
	}
	return tf, nil
}

func (s *Store) load() models.TagsAndFolders {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("metadata: read failed, using defaults",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return models.DefaultTagsAndFolders()
	}
	var tf models.TagsAndFolders
	if err := yaml.Unmarshal(data, &tf); err != nil {
		s.logger.Warn("metadata: decode failed, using defaults",
			slog.String("path", s.path), slog.String("error", err.Error()))
		return models.DefaultTagsAndFolders()
	}
	if tf.Folders == nil {
		tf.Folders = []string{}
	}
	if tf.Tags == nil {
		tf.Tags = []string{}
	}
	return tf
}

func (s *Store) save(tf models.TagsAndFolders) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("metadata: mkdir: %w", apperr.Classify(err))
	}
	data, err := yaml.Marshal(tf)
	if err != nil {
		return fmt.Errorf("metadata: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("metadata: write: %w", apperr.Classify(err))
	}
	return nil
}
