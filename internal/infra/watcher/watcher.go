// Package watcher invalidates a category's cached content when its data file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 500 * time.Millisecond

// Invalidator drops whatever is cached for a category.
type Invalidator interface {
	Invalidate(key string)
}

// DataFileWatcher watches the directories holding the category data files. Editors often replace a
// file rather than write it in place, so directories are watched instead of the files themselves.
type DataFileWatcher struct {
	fs       *fsnotify.Watcher
	files    map[string]string // absolute path -> category key
	target   Invalidator
	debounce time.Duration
	logger   *logrus.Entry

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New starts watching the given files (category key -> path). Call Run to process events.
func New(files map[string]string, target Invalidator, debounce time.Duration, logger *logrus.Entry) (*DataFileWatcher, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &DataFileWatcher{
		fs:       fsw,
		files:    make(map[string]string, len(files)),
		target:   target,
		debounce: debounce,
		logger:   logger.WithField("component", "data_file_watcher"),
		timers:   make(map[string]*time.Timer),
	}

	dirs := make(map[string]struct{})
	for key, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve data file for %s: %w", key, err)
		}
		w.files[abs] = key
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
		w.logger.WithField("dir", dir).Info("Watching data directory for changes")
	}
	return w, nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *DataFileWatcher) Run(ctx context.Context) {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("File watcher error")
		}
	}
}

func (w *DataFileWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	key, ok := w.files[abs]
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[key]; ok {
		t.Stop()
	}
	w.timers[key] = time.AfterFunc(w.debounce, func() {
		w.logger.WithFields(logrus.Fields{
			"category": key,
			"file":     abs,
			"op":       event.Op.String(),
		}).Info("Data file changed, reloading category")
		w.target.Invalidate(key)
	})
}

func (w *DataFileWatcher) close() {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	if err := w.fs.Close(); err != nil {
		w.logger.WithError(err).Warn("Closing file watcher failed")
	}
}
