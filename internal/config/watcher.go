package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/j-veylop/device-usage-dashboard/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// Watcher reloads a .env file into the process environment when it changes.
type Watcher struct {
	mu            sync.Mutex
	path          string
	watcher       *fsnotify.Watcher
	onReload      func(error)
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
}

// WatchEnvFile starts watching path. onReload, if non-nil, is called after
// each reload attempt with its error.
func WatchEnvFile(path string, onReload func(error)) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no .env file to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory (editors often replace the file)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		if closeErr := fw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		onReload: onReload,
		stopChan: make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.debounceTimer = time.AfterFunc(debounceInterval, w.reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("env watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) reload() {
	err := godotenv.Overload(w.path)
	if err != nil {
		logger.Warn("failed to reload env file", "path", w.path, "error", err)
	} else {
		logger.Info("reloaded env file", "path", w.path)
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
