package index

import (
	"log/slog"

	"github.com/starford/eleph/internal/checksum"
	"github.com/starford/eleph/internal/codec"
	"github.com/starford/eleph/internal/markdown"
	"github.com/starford/eleph/internal/models"
	"github.com/starford/eleph/internal/storage"
)

// PreviewLength caps the preview stored per row.
const PreviewLength = 200

// Sync walks the library and brings the index up to date:
//   - new/changed files are decoded and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Key] = struct{}{}

		if checksums[m.Key] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Key)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("key", m.Key), slog.String("error", err.Error()))
			continue
		}
		if _, err := IndexFile(db, m.Key, data); err != nil {
			logger.Warn("sync: index failed", slog.String("key", m.Key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("key", m.Key))
		}
	}

	// Remove stale entries.
	for k := range checksums {
		if _, ok := disk[k]; !ok {
			if err := db.DeleteNote(k); err != nil {
				logger.Warn("sync: delete failed", slog.String("key", k), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("key", k))
			}
		}
	}

	return nil
}

// IndexFile decodes data read from key and upserts it into the index.
// It returns the decoded note.
func IndexFile(db *DB, key string, data []byte) (models.Note, error) {
	n := codec.Decode(data, key)
	return n, db.UpsertNote(RowFor(n, key, checksum.Sum(data)), n.Content)
}

// RowFor derives the index row of a decoded note.
func RowFor(n models.Note, key, sum string) NoteRow {
	return NoteRow{
		ID:           n.ID,
		Key:          key,
		Title:        markdown.ExtractTitle(n.Content, n.Title),
		Checksum:     sum,
		Tags:         n.Tags,
		Preview:      markdown.Truncate(markdown.PreviewText(n.Content), PreviewLength),
		LastModified: n.LastModified,
	}
}
