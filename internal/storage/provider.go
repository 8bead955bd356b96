// Package storage defines the library file-store abstraction.
package storage

import "github.com/starford/eleph/internal/models"

// Ext is the file extension of note files.
const Ext = ".md"

// Provider is the byte-level store the codec reads from and writes to.
// Keys are note identifiers; how they map to files is up to the provider.
type Provider interface {
	// List returns metadata for every note file in the library.
	List() ([]models.NoteMeta, error)
	// Read returns the raw bytes stored under key.
	Read(key string) ([]byte, error)
	// Write atomically replaces the bytes stored under key.
	Write(key string, content []byte) error
	// Delete removes key.
	Delete(key string) error
	// Exists reports whether key is present.
	Exists(key string) (bool, error)
}
