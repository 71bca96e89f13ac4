package livereload

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Change is one debounced batch of file events. Paths are slash separated
// and relative to the watched root.
type Change struct {
	Paths    []string
	Manifest bool
}

type WatchOptions struct {
	// Ignore holds doublestar patterns matched against relative paths.
	Ignore   []string
	Debounce time.Duration
	// Manifests lists the relative paths that hold manifests.
	Manifests []string
}

// Watcher watches a content directory tree, including directories created
// after it starts.
type Watcher struct {
	root      string
	ignore    []string
	debounce  time.Duration
	manifests map[string]bool
	fs        *fsnotify.Watcher
	log       *slog.Logger
}

func NewWatcher(root string, opts WatchOptions, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:      root,
		ignore:    opts.Ignore,
		debounce:  opts.Debounce,
		manifests: make(map[string]bool, len(opts.Manifests)),
		fs:        fw,
		log:       log,
	}
	if w.debounce <= 0 {
		w.debounce = 200 * time.Millisecond
	}
	for _, m := range opts.Manifests {
		w.manifests[filepath.ToSlash(filepath.Clean(m))] = true
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers changes to onChange until ctx is done. onChange runs on the
// watcher goroutine; events arriving meanwhile are batched into the next
// change.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, Change)) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			rel, ok := w.relevant(ev)
			if !ok {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("watch new directory failed", "path", rel, "error", err)
					}
				}
			}
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			change := Change{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				change.Paths = append(change.Paths, p)
				if w.manifests[p] {
					change.Manifest = true
				}
			}
			slices.Sort(change.Paths)
			clear(pending)
			w.log.Debug("content changed", "paths", change.Paths, "manifest", change.Manifest)
			onChange(ctx, change)
		}
	}
}

// relevant returns the event's relative path unless it is ignored or a
// bare chmod.
func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if ev.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, !w.ignored(rel)
}

func (w *Watcher) ignored(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if rel, err := filepath.Rel(w.root, path); err == nil && w.ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
