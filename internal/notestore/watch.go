package notestore

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven index refresh.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, hash string)

// Watch starts an fsnotify watcher on the notes root and keeps index.json in
// sync with note files changed underneath the server (another process, a
// hook invocation, a manual edit). Note mutations are debounced into a
// single Rebuild pass. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, s.dir.Root()); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", s.dir.Root()))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time
	pending := map[string]string{} // hash → kind

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(200 * time.Millisecond)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			if err := s.Rebuild(); err != nil {
				s.logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
			}
			for hash, kind := range pending {
				if cb != nil {
					cb(kind, hash)
				}
			}
			pending = map[string]string{}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New hash directories must join the watch list before their
			// note.json write event can be seen.
			if ev.Op&fsnotify.Create != 0 && filepath.Ext(ev.Name) == "" {
				if addErr := addDirsRecursive(w, ev.Name); addErr == nil {
					s.logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
				}
			}

			if filepath.Base(ev.Name) != noteFileName {
				continue
			}
			hash := filepath.Base(filepath.Dir(ev.Name))
			if strings.HasPrefix(hash, ".") {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				// Atomic writes land as a rename, which fsnotify reports as
				// Create; the index tells a first write apart from a rewrite.
				if pending[hash] == "" && s.indexHas(hash) {
					pending[hash] = "updated"
				} else if pending[hash] != "updated" {
					pending[hash] = "created"
				}
			case ev.Op&fsnotify.Write != 0:
				if pending[hash] != "created" {
					pending[hash] = "updated"
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[hash] = "deleted"
			default:
				continue
			}
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// indexHas reports whether the current index carries an entry for hash.
func (s *Store) indexHas(hash string) bool {
	for _, e := range s.loadIndex().Notes {
		if e.FilePathHash == hash {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
