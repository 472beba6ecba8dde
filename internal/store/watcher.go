package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/centavo-app/centavo/internal/checksum"
)

// durableChecksum is satisfied by gateways that track the checksum of the
// durable bytes they last read or wrote (the CSV backend).
type durableChecksum interface {
	LastChecksum() string
}

// WatchFile observes the durable data file and reloads the store when someone
// else modified it. Events are debounced, then compared by checksum against
// the gateway's own last write so the scheduler's saves do not trigger a
// reload. A dirty store is never overwritten by a reload; the external change
// is logged and the in-memory state wins.
//
// This is a convenience for hand-edited data files, not a locking protocol:
// the durable file is still assumed to have a single writer for correctness.
func WatchFile(ctx context.Context, st *Store, path string, sums durableChecksum, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors replace files via rename, which drops a
	// watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", path))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			reloadIfExternal(st, path, sums, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reloadIfExternal reloads the store when the on-disk bytes differ from what
// this process last wrote and no unsaved deltas would be lost.
func reloadIfExternal(st *Store, path string, sums durableChecksum, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if checksum.Sum(data) == sums.LastChecksum() {
		// Our own write landing on disk.
		return
	}
	if st.Dirty() {
		logger.Warn("watcher: data file changed externally but unsaved changes exist, keeping in-memory state",
			slog.String("path", path))
		return
	}
	logger.Info("watcher: data file changed externally, reloading", slog.String("path", path))
	st.Load()
}
