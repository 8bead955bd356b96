package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/eleph/internal/apperr"
	"github.com/starford/eleph/internal/checksum"
	"github.com/starford/eleph/internal/models"
)

// ErrInvalidKey is returned for keys that cannot name a file in the library.
var ErrInvalidKey = errors.New("storage: invalid key")

// FS implements Provider as a flat directory of "<key>.md" files.
type FS struct {
	root string // absolute path to the library directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", apperr.Classify(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute library directory.
func (f *FS) Root() string { return f.root }

// KeyForFile returns the note key for a file name or path inside the
// library, and false for anything that is not a note file.
func KeyForFile(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, Ext) || strings.HasPrefix(base, ".") {
		return "", false
	}
	key := strings.TrimSuffix(base, Ext)
	if key == "" {
		return "", false
	}
	return key, true
}

// pathFor maps a key to its file and rejects keys that would leave the
// library directory or hide the file.
func (f *FS) pathFor(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	abs := filepath.Join(f.root, key+Ext)
	if filepath.Dir(abs) != f.root {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return abs, nil
}

// List returns metadata for every note file directly under the root.
func (f *FS) List() ([]models.NoteMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", apperr.Classify(err))
	}
	var out []models.NoteMeta
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, ok := KeyForFile(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // removed while listing
			}
			return nil, fmt.Errorf("storage: list: %w", apperr.Classify(err))
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("storage: list: %w", apperr.Classify(err))
		}
		out = append(out, models.NoteMeta{
			Key:       key,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(key string) ([]byte, error) {
	abs, err := f.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, apperr.Classify(err))
	}
	return data, nil
}

// Exists reports whether a note file is present for key.
func (f *FS) Exists(key string) (bool, error) {
	abs, err := f.pathFor(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %s: %w", key, apperr.Classify(err))
	}
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(key string, content []byte) error {
	abs, err := f.pathFor(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".eleph-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", apperr.Classify(err))
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", apperr.Classify(err))
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", apperr.Classify(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", apperr.Classify(err))
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", apperr.Classify(err))
	}
	success = true
	return nil
}

// Delete removes a note file.
func (f *FS) Delete(key string) error {
	abs, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, apperr.Classify(err))
	}
	return nil
}
