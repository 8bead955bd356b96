package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/eleph/internal/apperr"
	"github.com/starford/eleph/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "eleph-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func row(id, title, cs string, tags []string, at time.Time) NoteRow {
	return NoteRow{ID: id, Key: id, Title: title, Checksum: cs, Tags: tags, LastModified: at}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertNote(row("hello", "Hello World", "abc123", []string{"go", "test"}, time.Now()), "This is a hello world note."); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("hello")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetNote(t *testing.T) {
	db := testDB(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := row("n1", "Title", "c", []string{"a"}, at)
	r.Key = "file-one"
	r.Preview = "Preview text"
	_ = db.UpsertNote(r, "body")

	got, err := db.GetNote("n1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Key != "file-one" || got.Title != "Title" || got.Preview != "Preview text" {
		t.Errorf("row = %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "a" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.LastModified.Equal(at) {
		t.Errorf("last_modified = %v, want %v", got.LastModified, at)
	}

	if _, err := db.GetNote("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("del", "", "x", []string{}, time.Now()), "body")

	if err := db.DeleteNote("del"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.GetChecksum("del")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	if err := db.DeleteNote("del"); err != nil {
		t.Errorf("deleting a missing key should be a no-op: %v", err)
	}
}

func TestDeleteNote_ReportsFailure(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("keep", "", "x", []string{}, time.Now()), "body")

	if _, err := db.conn.Exec(`CREATE TRIGGER no_delete BEFORE DELETE ON notes
		BEGIN SELECT RAISE(ABORT, 'deletes disabled'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if err := db.DeleteNote("keep"); err == nil {
		t.Fatal("expected delete error")
	}
	if cs, _ := db.GetChecksum("keep"); cs != "x" {
		t.Errorf("row lost after failed delete, checksum = %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNote(row("up", "Old", "1", []string{}, now), "old body")
	_ = db.UpsertNote(row("up", "New", "2", []string{"new"}, now), "new body")

	cs, _ := db.GetChecksum("up")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	got, _ := db.GetNote("up")
	if got.Title != "New" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestUpsert_IDChangeReplacesRowForKey(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	first := row("old-id", "T", "1", nil, now)
	first.Key = "file"
	second := row("new-id", "T", "2", nil, now)
	second.Key = "file"
	_ = db.UpsertNote(first, "")
	if err := db.UpsertNote(second, ""); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	if _, err := db.GetNote("old-id"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old id still indexed: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 1 || all["file"] != "2" {
		t.Errorf("checksums = %v", all)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListNotes(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertNote(row("a", "Banana", "1", []string{"fruit"}, base), "")
	_ = db.UpsertNote(row("b", "apple", "2", []string{"fruit", "red"}, base.Add(time.Hour)), "")
	_ = db.UpsertNote(row("c", "Carrot", "3", []string{"veg"}, base.Add(2*time.Hour)), "")

	rows, total, err := db.ListNotes(10, 0, "", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 || len(rows) != 3 || rows[0].ID != "c" || rows[2].ID != "a" {
		t.Errorf("default order = %+v (total %d)", rows, total)
	}

	rows, _, _ = db.ListNotes(10, 0, "", SortTitle)
	if rows[0].Title != "apple" || rows[1].Title != "Banana" {
		t.Errorf("title order = %v, %v", rows[0].Title, rows[1].Title)
	}

	rows, total, _ = db.ListNotes(10, 0, "fruit", "")
	if total != 2 || len(rows) != 2 {
		t.Errorf("tag filter: total %d rows %d", total, len(rows))
	}

	rows, total, _ = db.ListNotes(1, 1, "", "")
	if total != 3 || len(rows) != 1 || rows[0].ID != "b" {
		t.Errorf("page = %+v (total %d)", rows, total)
	}
}

func TestTags(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNote(row("a", "", "1", []string{"go", "draft"}, now), "")
	_ = db.UpsertNote(row("b", "", "2", []string{"go"}, now), "")
	_ = db.UpsertNote(row("c", "", "3", []string{}, now), "")

	tags, err := db.Tags()
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != (TagCount{Tag: "go", Count: 2}) || tags[1] != (TagCount{Tag: "draft", Count: 1}) {
		t.Errorf("tags = %+v", tags)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("s", "Search Me", "1", []string{}, time.Now()), "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s" {
		t.Errorf("search results = %+v, want 1 hit for s", results)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("fm", []byte("---\nid: note-1\ntitle: Stored\nlastModified: 2024-01-15T10:30:00Z\ntags: [\"x\"]\n---\n\n# Heading\n\nFirst para."))
	_ = store.Write("plain", []byte("just text"))

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, err := db.GetNote("note-1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Key != "fm" || got.Title != "Heading" || got.Preview != "First para." {
		t.Errorf("row = %+v", got)
	}
	if p, err := db.GetNote("plain"); err != nil || p.Title != "plain" {
		t.Errorf("plain row = %+v, %v", p, err)
	}

	_ = store.Delete("plain")
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if _, err := db.GetNote("plain"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale row survived sync: %v", err)
	}
}
