// Package watcher reports file changes under a project directory. Bursts of
// events on the same path are coalesced into one event after a quiet period.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 150 * time.Millisecond

// ErrRunning is returned by Run when the watcher loop is already active.
var ErrRunning = errors.New("watcher already running")

// Op is the kind of change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Event is a single coalesced change.
type Event struct {
	Op   Op
	Path string
	Time time.Time
}

// Subscriber receives events. Calls are made from the watcher's timer
// goroutines, one at a time per path.
type Subscriber interface {
	OnFileEvent(event Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnFileEvent(event Event) { f(event) }

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Match limits events to paths it accepts. Nil accepts every path that is
	// not ignored.
	Match func(path string) bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher watches directory trees and fans events out to subscribers.
type Watcher struct {
	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	subscribers []Subscriber
	roots       map[string]bool
	pending     map[string]*pendingEvent
	debounce    time.Duration
	match       func(string) bool
	log         *slog.Logger
	running     bool
	closeOnce   sync.Once
}

type pendingEvent struct {
	op    Op
	timer *time.Timer
}

var ignorePatterns = []string{
	".git",
	"node_modules",
	"*.swp",
	"*.swo",
	"*~",
	".DS_Store",
	"4913", // vim's write probe
}

// Ignored reports whether a file or directory name is never watched.
func Ignored(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range ignorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// New creates a watcher. Call AddRoot and then Run.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		roots:    make(map[string]bool),
		pending:  make(map[string]*pendingEvent),
		debounce: opts.Debounce,
		match:    opts.Match,
		log:      opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w, nil
}

// Subscribe adds an event listener.
func (w *Watcher) Subscribe(s Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, s)
}

// SubscribeFunc adds a function as an event listener.
func (w *Watcher) SubscribeFunc(f func(Event)) {
	w.Subscribe(SubscriberFunc(f))
}

// AddRoot watches path and every directory below it.
func (w *Watcher) AddRoot(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.roots[abs] = true
	w.mu.Unlock()

	return w.addRecursive(abs)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && Ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.mu.Unlock()

	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(raw)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher and drops any pending events. It is safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		for path, p := range w.pending {
			p.timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) handle(raw fsnotify.Event) {
	if Ignored(raw.Name) {
		return
	}

	var op Op
	switch {
	case raw.Op&fsnotify.Create != 0:
		op = OpCreate
		if err := w.addRecursive(raw.Name); err != nil {
			w.log.Debug("not watching new path", "path", raw.Name, "error", err)
		}
	case raw.Op&fsnotify.Write != 0:
		op = OpWrite
	case raw.Op&fsnotify.Remove != 0:
		op = OpRemove
	case raw.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	if w.match != nil && !w.match(raw.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[raw.Name]; ok {
		p.op = op
		p.timer.Reset(w.debounce)
		return
	}
	path := raw.Name
	w.pending[path] = &pendingEvent{
		op:    op,
		timer: time.AfterFunc(w.debounce, func() { w.emit(path) }),
	}
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	subs := make([]Subscriber, len(w.subscribers))
	copy(subs, w.subscribers)
	w.mu.Unlock()

	evt := Event{Op: p.op, Path: path, Time: time.Now()}
	w.log.Debug("file event", "op", evt.Op, "path", path)
	for _, s := range subs {
		s.OnFileEvent(evt)
	}
}
