// Package watch re-runs processing when source files change.
package watch

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/mpyw/ifcollapse/pkg/processor"
)

// Handler receives a batch of changed file paths.
type Handler func(changed []string)

// Filter reports whether a changed file is of interest.
type Filter func(path string) bool

// Root is a directory to watch. Subdirectories are watched only when
// Recursive is set.
type Root struct {
	Dir       string
	Recursive bool
}

// Watcher monitors directories using fsnotify.
type Watcher struct {
	watcher   *fsnotify.Watcher
	roots     []Root
	trees     map[string]bool // directories whose new subdirectories are watched
	filter    Filter
	handler   Handler
	debouncer *Debouncer
	logger    *log.Logger
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithInterval overrides the debounce interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.debouncer = NewDebouncer(d)
	}
}

// New creates a watcher over roots. Only files accepted by filter are
// passed to handler.
func New(roots []Root, filter Filter, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fsw,
		roots:     roots,
		trees:     make(map[string]bool),
		filter:    filter,
		handler:   handler,
		debouncer: NewDebouncer(DefaultInterval),
		logger:    log.New(io.Discard),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the roots, and every directory below the recursive ones,
// and begins delivering events in the background.
func (w *Watcher) Start() error {
	for _, root := range w.roots {
		if !root.Recursive {
			w.add(root.Dir)
			continue
		}
		err := filepath.WalkDir(root.Dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root.Dir && processor.IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			w.add(path)
			w.trees[path] = true
			return nil
		})
		if err != nil {
			return err
		}
	}

	go w.eventLoop()

	w.logger.Debug("watching", "roots", w.roots)
	return nil
}

func (w *Watcher) add(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch directory", "dir", dir, "err", err)
	}
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if w.trees[filepath.Dir(path)] && !processor.IsIgnoredDir(filepath.Base(path)) {
				w.add(path)
				w.trees[path] = true
			}
			return
		}
	}

	if !w.filter(path) {
		return
	}

	w.debouncer.Add(path, event.Op)
	w.debouncer.Flush(func(changed []string) {
		w.logger.Debug("files changed", "count", len(changed))
		w.handler(changed)
	})
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}

// Roots returns the directories to watch for the given path patterns.
// A recursive pattern "dir/..." watches the tree below dir. A directory, a
// file or a glob watches only the directory holding the matched files. A
// directory named both ways is watched recursively.
func Roots(patterns []string) []Root {
	recursive := make(map[string]bool)
	for _, p := range patterns {
		var dir string
		var rec bool
		switch {
		case strings.HasSuffix(p, "..."):
			dir = strings.TrimSuffix(strings.TrimSuffix(p, "..."), "/")
			if dir == "" {
				dir = "."
			}
			rec = true
		default:
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				dir = p
			} else {
				dir = filepath.Dir(p)
			}
		}
		dir = filepath.Clean(dir)
		recursive[dir] = recursive[dir] || rec
	}

	roots := make([]Root, 0, len(recursive))
	for dir, rec := range recursive {
		roots = append(roots, Root{Dir: dir, Recursive: rec})
	}
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Dir < roots[j].Dir
	})
	return roots
}
