// Package testutil provides shared test helpers for setting up libraries and databases.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/eleph/internal/index"
	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "eleph-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory backed by storage.FS.
func TestLibrary(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestService wires a library service over a fresh library and database.
// Extra options are applied after the discard logger.
func TestService(t *testing.T, opts ...library.Option) (*library.Service, *storage.FS) {
	t.Helper()
	store := TestLibrary(t)
	db := TestDB(t)
	svc := library.NewService(store, db, append([]library.Option{library.WithLogger(Logger())}, opts...)...)
	return svc, store
}
