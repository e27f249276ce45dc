// Package watch reports changes under a directory tree, coalescing bursts
// of file system events into one notification.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-drift/webbridge/pkg/logging"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when New is given zero.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches a directory and every directory below it. Hidden
// directories are skipped.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *zap.Logger
}

// New starts watching root.
func New(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, debounce: debounce, fsw: fsw, log: logging.Named("watch")}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching. Run returns once its events channel closes.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange with the sorted paths changed in each burst of
// events, until ctx is done or the watcher is closed. onChange runs on the
// Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			w.log.Debug("change detected", zap.Strings("paths", paths))
			onChange(paths)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	// Editor swap and backup files.
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
