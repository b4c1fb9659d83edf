package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lotsawa/internal/checksum"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/models"
	"github.com/starford/lotsawa/internal/storage"
)

// Change kinds reported to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// rescanDelay debounces the library rescan that follows a rename.
const rescanDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change with one of
// the Event kinds and the library-relative path.
type EventCallback func(kind string, path string)

// isWatched reports whether a changed file belongs in the index. Hidden
// files, including in-flight atomic-write temp files, are ignored.
func isWatched(path string) bool {
	name := filepath.Base(path)
	return !strings.HasPrefix(name, ".") && models.IsDocument(name)
}

// libraryWatcher mirrors file changes under root into the index.
type libraryWatcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	notify EventCallback
	fs     *fsnotify.Watcher
}

// Watch keeps the index in step with the library directory until ctx is
// cancelled, calling cb (if non-nil) after each index change.
//
// A write whose content already matches the indexed checksum is skipped,
// so saves made through the service, which index on write, are not
// reported twice. Directories created at runtime are watched and indexed.
// fsnotify reports a rename on the old path only, so a rename removes the
// old entry and schedules a rescan that picks up the new one.
func Watch(ctx context.Context, db *DB, store storage.Provider, libraryRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	lw := &libraryWatcher{db: db, store: store, root: libraryRoot, logger: logger, notify: cb, fs: fw}
	if err := lw.watchTree(libraryRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", libraryRoot))
	return lw.run(ctx)
}

func (lw *libraryWatcher) run(ctx context.Context) error {
	rescan := time.NewTimer(rescanDelay)
	rescan.Stop()
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			lw.logger.Info("watcher: stopped")
			return nil

		case <-rescan.C:
			if err := reconcile(lw.db, lw.store, lw.logger, lw.notify); err != nil {
				lw.logger.Warn("watcher: rescan failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-lw.fs.Events:
			if !ok {
				return nil
			}
			if lw.handle(ev) {
				rescan.Reset(rescanDelay)
			}

		case err, ok := <-lw.fs.Errors:
			if !ok {
				return nil
			}
			lw.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// handle applies one file event and reports whether a rescan is due.
func (lw *libraryWatcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := lw.watchTree(ev.Name); err != nil {
				lw.logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			lw.indexTree(ev.Name)
			return false
		}
	}
	if !isWatched(ev.Name) {
		return false
	}
	rel, ok := lw.rel(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Has(fsnotify.Create):
		lw.refresh(rel, EventCreated)
	case ev.Has(fsnotify.Write):
		lw.refresh(rel, EventUpdated)
	case ev.Has(fsnotify.Remove):
		lw.forget(rel)
	case ev.Has(fsnotify.Rename):
		lw.forget(rel)
		return true
	}
	return false
}

// refresh re-indexes rel unless the file still carries the indexed content.
func (lw *libraryWatcher) refresh(rel, kind string) {
	data, err := lw.store.Read(rel)
	if err != nil {
		lw.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if cs, _ := lw.db.GetChecksum(rel); cs == checksum.Sum(data) {
		return
	}

	blocks, warnings := document.Parse(string(data))
	row, body, words := Extract(rel, data, blocks)
	if err := lw.db.UpsertDocument(row, body, words); err != nil {
		lw.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	lw.logger.Debug("watcher: indexed",
		slog.String("path", rel),
		slog.String("op", kind),
		slog.Int("blocks", len(blocks)),
		slog.Int("words", len(words)),
		slog.Int("warnings", len(warnings)))
	if lw.notify != nil {
		lw.notify(kind, rel)
	}
}

// forget drops rel from the index if it was indexed.
func (lw *libraryWatcher) forget(rel string) {
	if cs, _ := lw.db.GetChecksum(rel); cs == "" {
		return
	}
	if err := lw.db.DeleteDocument(rel); err != nil {
		lw.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	lw.logger.Debug("watcher: deleted", slog.String("path", rel))
	if lw.notify != nil {
		lw.notify(EventDeleted, rel)
	}
}

// indexTree indexes the documents already inside a new directory; files
// written before the directory was watched produce no events of their own.
func (lw *libraryWatcher) indexTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isWatched(path) {
			return nil
		}
		if rel, ok := lw.rel(path); ok {
			lw.refresh(rel, EventCreated)
		}
		return nil
	})
}

func (lw *libraryWatcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(lw.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// watchTree adds dir and all its subdirectories to the watcher.
func (lw *libraryWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return lw.fs.Add(path)
		}
		return nil
	})
}
