package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"label-resolver/internal/locator"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher invokes the public cache-clear operation when label resources
// under the root change. The cache itself stays explicit-clear-only; this
// is just another caller.
type Watcher struct {
	root     string
	clear    func()
	debounce time.Duration
}

// NewWatcher creates a watcher over root that calls clear after changes
// settle.
func NewWatcher(root string, clear func()) *Watcher {
	return &Watcher{
		root:     root,
		clear:    clear,
		debounce: 250 * time.Millisecond,
	}
}

// Run watches until ctx is cancelled. Bursts of events collapse into a
// single clear per debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, w.root); err != nil {
		return fmt.Errorf("watch label root: %w", err)
	}

	log.Info().Str("root", w.root).Msg("Watching label resources")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories need their own watches, e.g. a language
			// directory appearing under LabelResources.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDir(watcher, event.Name); err != nil {
						log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
					continue
				}
			}

			if !strings.HasSuffix(event.Name, locator.Suffix) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(w.debounce, func() {
				log.Info().Str("path", name).Msg("Label resources changed, clearing cache")
				w.clear()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// watchDir recursively adds dir and its subdirectories to the watcher,
// skipping hidden directories.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
