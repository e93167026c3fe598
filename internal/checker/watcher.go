package checker

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// RunHandler receives the result of each re-check triggered by the watcher.
type RunHandler func(run *Run, err error)

// Watcher re-runs the checker when source files or spec documents change.
type Watcher struct {
	checker      *Checker
	roots        []string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	onRun        RunHandler
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a watcher over the checker's source and spec roots.
func NewWatcher(c *Checker, onRun RunHandler) (*Watcher, error) {
	opts := c.resolver.Options()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		checker:      c,
		roots:        []string{opts.SourceDir, opts.SpecDir},
		watcher:      fw,
		debounceTime: defaultDebounce,
		onRun:        onRun,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	for _, root := range w.roots {
		if err := w.addDirectoriesRecursively(root); err != nil {
			fw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	recheckCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New directories must be watched before their files change.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}
			changed[event.Name] = true

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case recheckCh <- struct{}{}:
				default:
				}
			})

		case <-recheckCh:
			if len(changed) == 0 {
				continue
			}
			log.Printf("Re-checking due to changes in %d file(s)...", len(changed))
			changed = make(map[string]bool)
			run, err := w.checker.Run(ctx)
			if w.onRun != nil {
				w.onRun(run, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// shouldProcessEvent checks if an event should trigger a re-check.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	opts := w.checker.resolver.Options()
	switch filepath.Ext(event.Name) {
	case opts.SourceExt:
		_, ok := w.checker.resolver.Pair(event.Name)
		return ok
	case opts.DocExt:
		return true
	}
	return false
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
