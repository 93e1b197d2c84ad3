package watch

import (
	"sync"

	"github.com/dshills/workbench/internal/fspath"
)

// Manual is a Watcher whose events come from Emit. It backs in-memory
// file systems, where nothing external can change a file.
type Manual struct {
	mu     sync.Mutex
	dirs   *fspath.Set
	events chan Event
	errors chan error
	closed bool
}

// NewManual creates a Manual watcher.
func NewManual() *Manual {
	return &Manual{
		dirs:   fspath.NewSet(),
		events: make(chan Event, 100),
		errors: make(chan error, 10),
	}
}

// Add records dir as watched.
func (m *Manual) Add(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.dirs.Add(fspath.Create(dir)) {
		return ErrAlreadyWatching
	}
	return nil
}

// Remove forgets dir.
func (m *Manual) Remove(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.dirs.Remove(fspath.Create(dir)) {
		return ErrNotWatching
	}
	return nil
}

// IsWatching reports whether dir was added.
func (m *Manual) IsWatching(dir string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs.Contains(fspath.Create(dir))
}

// Emit delivers ev when its directory is watched and reports whether it
// was delivered.
func (m *Manual) Emit(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	dir, ok := ev.Path.Parent()
	if !ok || !m.dirs.Contains(dir) {
		return false
	}
	m.events <- ev
	return true
}

// Events returns the event channel.
func (m *Manual) Events() <-chan Event { return m.events }

// Errors returns the error channel.
func (m *Manual) Errors() <-chan error { return m.errors }

// Close closes the channels.
func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
		close(m.errors)
	}
	return nil
}

var _ Watcher = (*Manual)(nil)
