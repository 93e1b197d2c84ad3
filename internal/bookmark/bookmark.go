// Package bookmark manages the entries shown in an editor's icon bar
// margin.
//
// A Margin owns an ordered list of bookmarks. Several views of the same
// document (split panes) may share one Margin; they subscribe with
// OnRedrawRequested and repaint whenever the list changes.
package bookmark

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/workbench/internal/notify"
	"github.com/dshills/workbench/internal/typesys"
	"go.uber.org/zap"
)

// ErrIndex is returned for an insert or remove position outside the list.
var ErrIndex = errors.New("bookmark index out of range")

// Bookmark is an entry in the margin.
type Bookmark interface {
	// Line is the 1-based line the bookmark is drawn at, or 0 if unknown.
	Line() int
	Label() string
}

// LineBookmark is a user-placed bookmark.
type LineBookmark struct {
	File string
	At   int
	Text string
}

func (b *LineBookmark) Line() int { return b.At }

// Label returns the bookmark text, or file:line when it has none.
func (b *LineBookmark) Label() string {
	if b.Text != "" {
		return b.Text
	}
	return fmt.Sprintf("%s:%d", b.File, b.At)
}

// EntityBookmark marks the declaration of a type or member.
type EntityBookmark struct {
	Entity typesys.Entity
}

func (b *EntityBookmark) Line() int { return b.Entity.Region().BeginLine }

func (b *EntityBookmark) Label() string {
	return b.Entity.Kind().String() + " " + b.Entity.FullName()
}

// Margin is the shared bookmark list behind one or more icon bar margins.
type Margin struct {
	mu        sync.Mutex
	bookmarks []Bookmark
	redraw    *notify.Notifier[*Margin]
	log       *zap.Logger
}

// Option configures a Margin.
type Option func(*Margin)

// WithLogger sets the margin's logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Margin) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMargin creates an empty margin.
func NewMargin(opts ...Option) *Margin {
	m := &Margin{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.redraw = notify.New[*Margin](notify.WithLogger(m.log))
	return m
}

// Close drops every redraw subscriber.
func (m *Margin) Close() {
	m.redraw.Close()
}

// Bookmarks returns a copy of the bookmark list.
func (m *Margin) Bookmarks() []Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bookmark, len(m.bookmarks))
	copy(out, m.bookmarks)
	return out
}

// Len returns the number of bookmarks.
func (m *Margin) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookmarks)
}

// Add appends b.
func (m *Margin) Add(b Bookmark) {
	m.mu.Lock()
	m.bookmarks = append(m.bookmarks, b)
	m.mu.Unlock()
	m.Redraw()
}

// Insert places b at index i, shifting later bookmarks.
func (m *Margin) Insert(i int, b Bookmark) error {
	m.mu.Lock()
	if i < 0 || i > len(m.bookmarks) {
		n := len(m.bookmarks)
		m.mu.Unlock()
		return fmt.Errorf("insert at %d of %d: %w", i, n, ErrIndex)
	}
	m.bookmarks = append(m.bookmarks, nil)
	copy(m.bookmarks[i+1:], m.bookmarks[i:])
	m.bookmarks[i] = b
	m.mu.Unlock()
	m.Redraw()
	return nil
}

// Remove removes the first occurrence of b and reports whether it was
// present.
func (m *Margin) Remove(b Bookmark) bool {
	m.mu.Lock()
	idx := -1
	for i, x := range m.bookmarks {
		if x == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	m.bookmarks = append(m.bookmarks[:idx], m.bookmarks[idx+1:]...)
	m.mu.Unlock()
	m.Redraw()
	return true
}

// RemoveAt removes the bookmark at index i.
func (m *Margin) RemoveAt(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.bookmarks) {
		n := len(m.bookmarks)
		m.mu.Unlock()
		return fmt.Errorf("remove at %d of %d: %w", i, n, ErrIndex)
	}
	m.bookmarks = append(m.bookmarks[:i], m.bookmarks[i+1:]...)
	m.mu.Unlock()
	m.Redraw()
	return nil
}

// Clear removes every bookmark.
func (m *Margin) Clear() {
	m.mu.Lock()
	m.bookmarks = nil
	m.mu.Unlock()
	m.Redraw()
}

// Redraw asks every view of the margin to repaint.
func (m *Margin) Redraw() {
	m.redraw.Notify(m)
}

// OnRedrawRequested subscribes fn to redraw requests.
func (m *Margin) OnRedrawRequested(fn func(*Margin)) *notify.Subscription {
	return m.redraw.Subscribe(fn)
}

// UpdateClassMemberBookmarks replaces the entity bookmarks with ones for
// the types and members of file. Other bookmarks keep their positions in
// the list. A nil file only removes entity bookmarks.
//
// The whole update requests a single redraw.
func (m *Margin) UpdateClassMemberBookmarks(file typesys.ParsedFile) {
	m.mu.Lock()
	kept := m.bookmarks[:0]
	removed := 0
	for _, b := range m.bookmarks {
		if _, ok := b.(*EntityBookmark); ok {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(m.bookmarks); i++ {
		m.bookmarks[i] = nil
	}
	m.bookmarks = kept

	added := 0
	if file != nil {
		for _, t := range file.TopLevelTypeDefinitions() {
			added += m.addEntityBookmarks(t)
		}
	}
	m.mu.Unlock()

	m.log.Debug("updated entity bookmarks", zap.Int("removed", removed), zap.Int("added", added))
	m.Redraw()
}

// addEntityBookmarks appends bookmarks for t, its nested types and its
// members. Callers hold mu.
func (m *Margin) addEntityBookmarks(t typesys.TypeDefinition) int {
	if t.IsSynthetic() {
		return 0
	}
	n := 0
	if !t.Region().IsEmpty() {
		m.bookmarks = append(m.bookmarks, &EntityBookmark{Entity: t})
		n++
	}
	for _, nested := range t.NestedTypes() {
		n += m.addEntityBookmarks(nested)
	}
	for _, member := range t.Members() {
		if member.Region().IsEmpty() || member.IsSynthetic() {
			continue
		}
		m.bookmarks = append(m.bookmarks, &EntityBookmark{Entity: member})
		n++
	}
	return n
}
