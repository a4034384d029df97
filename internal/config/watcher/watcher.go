// Package watcher provides file watching for configuration live reload.
//
// The watcher monitors the directory holding a configuration file, so that
// editors which save by writing a temporary file and renaming it over the
// original are seen as a change. Bursts of events are coalesced into one
// callback after the file has been quiet for the debounce delay.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Event represents a change to the watched file.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the combined operation of all coalesced events.
	Op Operation

	// Time is when the last coalesced event occurred.
	Time time.Time
}

// Operation is a set of file operations.
type Operation uint8

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = 1 << iota

	// OpCreate indicates the file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// Has reports whether op includes other.
func (op Operation) Has(other Operation) bool {
	return op&other != 0
}

// String returns the operation name. Combined operations return the name of
// the most significant one.
func (op Operation) String() string {
	switch {
	case op.Has(OpRemove):
		return "remove"
	case op.Has(OpRename):
		return "rename"
	case op.Has(OpCreate):
		return "create"
	case op.Has(OpWrite):
		return "write"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// ErrorHandler is called for errors reported by the file system watcher.
type ErrorHandler func(err error)

// Watcher monitors one file for changes.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration

	handler Handler
	onError ErrorHandler

	pending Operation
	last    time.Time
	timer   *time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the handler for watcher errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = h
	}
}

// New starts watching path and calls handler after each burst of changes.
// The file need not exist yet, but its directory must.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     absPath,
		debounce: 100 * time.Millisecond,
		handler:  handler,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if op := convertOp(ev.Op); op != 0 {
				w.queue(op)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// queue merges op into the pending event and restarts the debounce timer.
func (w *Watcher) queue(op Operation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.pending |= op
	w.last = time.Now()
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

// fire delivers the coalesced event.
func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed || w.pending == 0 {
		w.mu.Unlock()
		return
	}
	event := Event{Path: w.path, Op: w.pending, Time: w.last}
	w.pending = 0
	w.mu.Unlock()

	w.safeCallHandler(event)
}

// safeCallHandler calls the handler with panic recovery.
func (w *Watcher) safeCallHandler(event Event) {
	defer func() {
		_ = recover()
	}()
	w.handler(event)
}

// convertOp converts fsnotify.Op to Operation. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Operation {
	var op Operation
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}

// Exists reports whether the watched file currently exists.
func (w *Watcher) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}
