// Package watcher implements the ports.CorpusWatcher interface using
// github.com/fsnotify/fsnotify. It watches a drop directory for newly
// arrived corpus files and debounces the burst of write events an uploader
// produces while a file lands.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a file must stay quiet before it is reported:
// a corpus file is only useful once fully written.
const settleDelay = 500 * time.Millisecond

// corpusFile reports whether path looks like a corpus file worth searching.
func corpusFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".csv") || strings.HasSuffix(base, ".csv.gz")
}

// Watcher implements ports.CorpusWatcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new corpus drop-directory watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring dir (non-recursive). onFile is called with the
// absolute path of each new corpus file once writes to it settle.
func (w *Watcher) Watch(dir string, onFile func(path string)) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.fw.Add(absDir); err != nil {
		return fmt.Errorf("watch %s: %w", absDir, err)
	}

	// Settle state: reset each file's timer on every write, fire when quiet.
	var smu sync.Mutex
	settle := make(map[string]*time.Timer)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name
				if !corpusFile(path) {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				smu.Lock()
				if t, exists := settle[path]; exists {
					t.Reset(settleDelay)
					smu.Unlock()
					continue
				}
				settle[path] = time.AfterFunc(settleDelay, func() {
					smu.Lock()
					delete(settle, path)
					smu.Unlock()
					select {
					case <-w.done:
					default:
						onFile(path)
					}
				})
				smu.Unlock()

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers from transient errors on its own

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
