package localstore

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay coalesces bursts of file events into one reload.
const DefaultWatchDelay = 150 * time.Millisecond

// Watch reloads the storage file whenever another process rewrites it and
// calls onChange after each reload that changed the contents. Writes made
// through this FileStorage do not trigger onChange. Watch returns once the
// watcher is running; it stops when ctx is done.
func (s *FileStorage) Watch(ctx context.Context, delay time.Duration, onChange func()) error {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: atomic renames replace the file inode.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(s.path)
	debounced := debounce.New(delay)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				debounced(func() {
					if ctx.Err() != nil {
						return
					}
					changed, err := s.Reload()
					if err != nil {
						s.logger.Warn("Failed to reload local storage", "path", s.path, "error", err)
						return
					}
					if changed {
						onChange()
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Local storage watcher error", "error", err)
			}
		}
	}()

	return nil
}
