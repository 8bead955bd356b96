package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/eleph/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change with the
// affected note id.
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// The library is flat, so only the root directory is watched. Rename events
// trigger a reconciliation pass that removes stale index entries whose files
// no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	notify := func(kind, id string) {
		if cb != nil {
			cb(kind, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			key, isNote := storage.KeyForFile(ev.Name)
			if !isNote {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(key)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("key", key), slog.String("error", readErr.Error()))
					continue
				}
				prev, _ := db.GetChecksum(key)
				n, idxErr := IndexFile(db, key, data)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("key", key), slog.String("error", idxErr.Error()))
					continue
				}
				kind := KindUpdated
				if prev == "" {
					kind = KindCreated
				}
				logger.Debug("watcher: indexed", slog.String("key", key), slog.String("op", kind))
				notify(kind, n.ID)

			case ev.Op&fsnotify.Remove != 0:
				id := db.idForKey(key)
				if delErr := db.DeleteNote(key); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("key", key), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("key", key))
				if id != "" {
					notify(KindDeleted, id)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within the library). We delete the old entry
				// immediately and schedule a short reconciliation pass
				// to catch any stragglers.
				id := db.idForKey(key)
				if delErr := db.DeleteNote(key); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("key", key), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("key", key))
					if id != "" {
						notify(KindDeleted, id)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile does a lightweight sync using batch lookups: it removes index
// entries without a file on disk and indexes files that are new or changed.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Key] = m.Checksum
	}

	for k := range checksums {
		if _, ok := disk[k]; ok {
			continue
		}
		id := db.idForKey(k)
		if delErr := db.DeleteNote(k); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("key", k))
			if cb != nil && id != "" {
				cb(KindDeleted, id)
			}
		}
	}

	for k, cs := range disk {
		prev, known := checksums[k]
		if known && prev == cs {
			continue
		}
		data, readErr := store.Read(k)
		if readErr != nil {
			continue
		}
		n, idxErr := IndexFile(db, k, data)
		if idxErr != nil {
			continue
		}
		kind := KindUpdated
		if !known {
			kind = KindCreated
		}
		logger.Debug("reconcile: indexed", slog.String("key", k), slog.String("op", kind))
		if cb != nil {
			cb(kind, n.ID)
		}
	}
}

// idForKey returns the note id stored under a file key, or "".
func (db *DB) idForKey(key string) string {
	var id string
	_ = db.conn.QueryRow(`SELECT id FROM notes WHERE file_key = ?`, key).Scan(&id)
	return id
}
