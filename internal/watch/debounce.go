package watch

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch of changes is delivered.
const DefaultInterval = 100 * time.Millisecond

// Debouncer batches file change events so a burst of writes to the same
// files results in a single callback.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	interval time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]fsnotify.Op),
		interval: interval,
	}
}

// Add records a change event for path.
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] |= op
}

// Flush (re)arms the timer. When it fires, callback receives the sorted
// paths that were written or created; removed and renamed paths are dropped.
func (d *Debouncer) Flush(callback func(changed []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		var changed []string
		for path, op := range d.pending {
			if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
				continue
			}
			if op.Has(fsnotify.Write) || op.Has(fsnotify.Create) {
				changed = append(changed, path)
			}
		}
		d.pending = make(map[string]fsnotify.Op)
		d.mu.Unlock()

		if len(changed) > 0 {
			sort.Strings(changed)
			callback(changed)
		}
	})
}

// Stop cancels a pending flush.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
