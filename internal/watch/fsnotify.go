package watch

import (
	"path/filepath"
	"sync"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/ignore"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FSNotify is a Watcher backed by fsnotify.
type FSNotify struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dirs    *fspath.Set
	ignore  *ignore.Matcher
	log     *zap.Logger

	events chan Event
	errors chan error

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures an FSNotify watcher.
type Option func(*FSNotify)

// WithIgnore drops events whose file name matches patterns.
func WithIgnore(patterns ...string) Option {
	return func(w *FSNotify) {
		w.ignore = ignore.New(patterns...)
	}
}

// WithLogger sets the watcher logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *FSNotify) {
		w.log = log
	}
}

// NewFSNotify creates a watcher with no watched directories.
func NewFSNotify(opts ...Option) (*FSNotify, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotify{
		watcher: fsw,
		dirs:    fspath.NewSet(),
		log:     zap.NewNop(),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts watching dir.
func (w *FSNotify) Add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	p := fspath.Create(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.dirs.Contains(p) {
		return ErrAlreadyWatching
	}
	if err := w.watcher.Add(abs); err != nil {
		return err
	}
	w.dirs.Add(p)
	w.log.Debug("watching", zap.String("dir", abs))
	return nil
}

// Remove stops watching dir.
func (w *FSNotify) Remove(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	p := fspath.Create(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !w.dirs.Contains(p) {
		return ErrNotWatching
	}
	if err := w.watcher.Remove(abs); err != nil {
		return err
	}
	w.dirs.Remove(p)
	return nil
}

// Events returns the event channel.
func (w *FSNotify) Events() <-chan Event { return w.events }

// Errors returns the error channel.
func (w *FSNotify) Errors() <-chan error { return w.errors }

// Close stops the watcher. It is safe to call more than once.
func (w *FSNotify) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.watcher.Close()
}

func (w *FSNotify) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			op := convertOp(ev.Op)
			if op == 0 || w.ignore.Match(filepath.Base(ev.Name), false) {
				continue
			}
			w.send(Event{Path: fspath.Create(ev.Name), Op: op})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *FSNotify) send(ev Event) {
	select {
	case w.events <- ev:
	case <-w.closeCh:
	default:
		w.log.Warn("event channel full, dropping event", zap.Stringer("path", ev.Path))
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
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
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

var _ Watcher = (*FSNotify)(nil)
