// Package watcher turns file-system events into debounced path batches and
// a long-lived stream of commands to re-run.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
)

// ErrWatchInit means a watch root does not exist or cannot be monitored.
// Reported once per root; the remaining roots keep working.
var ErrWatchInit = errors.New("watch init failed")

// Window is the debounce window: events arriving within it collapse into a
// single batch of distinct paths.
const Window = 500 * time.Millisecond

// suppressRules hides VCS bookkeeping and editor swap files from batches.
var suppressRules = ignore.CompileIgnoreLines(
	".git",
	".hg",
	".svn",
	"*.swp",
	"*.swx",
	"*~",
	"4913",
	".#*",
	".DS_Store",
)

// Debouncer watches a set of directory roots recursively and emits batches
// of changed paths, at most one batch per window.
type Debouncer struct {
	watcher *fsnotify.Watcher
	roots   []string
	window  time.Duration

	batches chan []string
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

// NewDebouncer starts watching the given roots. A root that cannot be
// watched is reported on Errors and skipped.
func NewDebouncer(roots []string, window time.Duration) (*Debouncer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if window <= 0 {
		window = Window
	}

	d := &Debouncer{
		watcher: w,
		roots:   roots,
		window:  window,
		batches: make(chan []string, 16),
		errs:    make(chan error, len(roots)+1),
		done:    make(chan struct{}),
	}

	for _, root := range roots {
		if err := d.addRecursive(root); err != nil {
			slog.Warn("cannot watch root", "root", root, "error", err)
			d.errs <- fmt.Errorf("%w: %s: %v", ErrWatchInit, root, err)
		} else {
			slog.Debug("watching root", "root", root)
		}
	}

	go d.run()
	return d, nil
}

// Batches yields sets of distinct changed absolute paths.
func (d *Debouncer) Batches() <-chan []string { return d.batches }

// Errors yields one ErrWatchInit per root that could not be established.
func (d *Debouncer) Errors() <-chan error { return d.errs }

// Close tears down the underlying watcher. Idempotent.
func (d *Debouncer) Close() error {
	var err error
	d.once.Do(func() {
		close(d.done)
		err = d.watcher.Close()
	})
	return err
}

// addRecursive registers root and every non-suppressed directory below it.
func (d *Debouncer) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subdirectory, keep going
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && d.suppressed(root, path) {
			return filepath.SkipDir
		}
		if err := d.watcher.Add(path); err != nil {
			slog.Debug("cannot watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

// suppressed reports whether a path should be hidden from batches.
func (d *Debouncer) suppressed(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return suppressRules.MatchesPath(rel)
}

// rootFor returns the watch root containing path, or "".
func (d *Debouncer) rootFor(path string) string {
	for _, root := range d.roots {
		if path == root {
			return root
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return root
	}
	return ""
}

func (d *Debouncer) run() {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]string, 0, len(pending))
		for p := range pending {
			batch = append(batch, p)
		}
		pending = make(map[string]struct{})
		select {
		case d.batches <- batch:
		case <-d.done:
		}
	}

	for {
		select {
		case <-d.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				flush()
				return
			}
			if !relevant(event) {
				continue
			}
			root := d.rootFor(event.Name)
			if root == "" || d.suppressed(root, event.Name) {
				continue
			}

			// Newly created directories join the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := d.addRecursive(event.Name); err != nil {
						slog.Debug("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(d.window)
				fire = timer.C
			}

		case <-fire:
			timer = nil
			fire = nil
			flush()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
