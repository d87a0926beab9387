package runtime

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchSyncInterval time.Duration = 2 * time.Second
	watchDebounce     time.Duration = 200 * time.Millisecond
)

// Watch refreshes the datasets of a loaded data or format file whenever it is written, until
// ctx is done. Events on one file arriving within watchDebounce of each other cause a single
// refresh. Directories of datasets loaded after Watch starts are picked up periodically.
func (r *Runtime) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error starting data file watcher: %w", err)
	}

	watched := make(map[string]bool)
	r.syncWatchedDirs(watcher, watched)

	go func() {
		defer watcher.Close()

		ticker := time.NewTicker(watchSyncInterval)
		defer ticker.Stop()

		debounce := time.NewTimer(watchDebounce)
		debounce.Stop()
		defer debounce.Stop()

		pending := make(map[string]bool)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.syncWatchedDirs(watcher, watched)
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if path, changed := r.changedFile(event); changed {
					pending[path] = true
					debounce.Reset(watchDebounce)
				}
			case <-debounce.C:
				for path := range pending {
					if _, err := r.refreshChangedFile(path); err != nil {
						zaplog.Sugar().Warn(err.Error())
					}
				}
				pending = make(map[string]bool)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zaplog.Sugar().Warnf("error from data file watcher: %s", err.Error())
			}
		}
	}()

	return nil
}

// processNotifyEvent refreshes the datasets of the loaded file touched by event.
// It reports whether a refresh ran.
func (r *Runtime) processNotifyEvent(event fsnotify.Event) (bool, error) {
	path, changed := r.changedFile(event)
	if !changed {
		return false, nil
	}

	_, err := r.refreshChangedFile(path)
	return true, err
}

// changedFile returns the absolute path written by event when a loaded dataset reads it
func (r *Runtime) changedFile(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}

	absPath, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ds := range r.store.Datasets() {
		if readsFile(ds, absPath) {
			return absPath, true
		}
	}
	return "", false
}

func (r *Runtime) refreshChangedFile(path string) ([]string, error) {
	zaplog.Sugar().Debugf("'%s' changed, refreshing", path)
	return r.RefreshFile(path, nil)
}

func (r *Runtime) watchedDirs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	var dirs []string
	for _, ds := range r.store.Datasets() {
		dir, err := filepath.Abs(filepath.Dir(ds.PathData()))
		if err != nil || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

func (r *Runtime) syncWatchedDirs(watcher *fsnotify.Watcher, watched map[string]bool) {
	for _, dir := range r.watchedDirs() {
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			zaplog.Sugar().Warnf("error watching '%s': %s", dir, err.Error())
			continue
		}
		watched[dir] = true
	}
}
