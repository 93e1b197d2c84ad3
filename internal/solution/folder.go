package solution

import (
	"github.com/dshills/workbench/internal/fspath"
	"github.com/google/uuid"
)

// Folder is a solution folder: a named, ordered container of items.
// The solution root is also a Folder.
type Folder struct {
	itemBase
	items []Item
}

// Kind returns KindFolder.
func (f *Folder) Kind() Kind { return KindFolder }

// Items returns the folder contents in insertion order.
func (f *Folder) Items() []Item {
	f.sln.mu.RLock()
	defer f.sln.mu.RUnlock()

	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

// Len returns the number of direct children.
func (f *Folder) Len() int {
	f.sln.mu.RLock()
	defer f.sln.mu.RUnlock()
	return len(f.items)
}

// Contains reports whether item is a direct child of f.
func (f *Folder) Contains(item Item) bool {
	if item == nil {
		return false
	}
	f.sln.mu.RLock()
	defer f.sln.mu.RUnlock()
	return item.base().parent == f
}

// SetName renames the folder. The name must be a valid file name.
func (f *Folder) SetName(name string) error {
	return f.rename(f, name)
}

// IsAncestorOf reports whether item is f itself or lies anywhere below f.
func (f *Folder) IsAncestorOf(item Item) bool {
	if item == nil {
		return false
	}
	f.sln.mu.RLock()
	defer f.sln.mu.RUnlock()
	return f.isAncestorOfLocked(item)
}

func (f *Folder) isAncestorOfLocked(item Item) bool {
	for cur := item.base(); cur != nil; {
		if cur == &f.itemBase {
			return true
		}
		if cur.parent == nil {
			return false
		}
		cur = &cur.parent.itemBase
	}
	return false
}

// Add appends item to the folder. An item that already lives in another
// folder is moved; adding an item to its current folder does nothing.
func (f *Folder) Add(item Item) error {
	return f.insert(-1, item)
}

// Insert places item at index i of the folder, clamped to the valid range.
// Moving an item within the same folder reorders it.
func (f *Folder) Insert(i int, item Item) error {
	if i < 0 {
		i = 0
	}
	return f.insert(i, item)
}

func (f *Folder) insert(at int, item Item) error {
	if item == nil {
		return &ItemError{Op: "add", Name: f.Name(), ID: f.id, Err: ErrInvalidItem}
	}

	s := f.sln
	b := item.base()
	if b.sln != s {
		return &ItemError{Op: "add", ID: b.id, Name: item.Name(), Err: ErrForeignItem}
	}

	s.mu.Lock()
	switch {
	case b == &s.root.itemBase:
		s.mu.Unlock()
		return &ItemError{Op: "add", ID: b.id, Name: b.name, Err: ErrRootItem}
	case item.Kind() == KindFolder && item.(*Folder).isAncestorOfLocked(f):
		s.mu.Unlock()
		return &ItemError{Op: "add", ID: b.id, Name: b.name, Err: ErrCycle}
	case b.parent == f && at < 0:
		s.mu.Unlock()
		return nil
	}

	old := b.parent
	if old != nil {
		old.removeLocked(item)
	}
	if at < 0 || at > len(f.items) {
		at = len(f.items)
	}
	f.items = append(f.items, nil)
	copy(f.items[at+1:], f.items[at:])
	f.items[at] = item
	b.parent = f
	s.gen++
	s.mu.Unlock()

	change := Change{Type: ChangeAdded, Item: item, NewParent: f}
	if old != nil {
		change.Type = ChangeMoved
		change.OldParent = old
	}
	s.changes.Notify(change)
	return nil
}

// Remove detaches item from the folder and reports whether it was there.
// The detached item keeps its id and may be added again later.
func (f *Folder) Remove(item Item) bool {
	if item == nil {
		return false
	}

	s := f.sln
	s.mu.Lock()
	if item.base().parent != f {
		s.mu.Unlock()
		return false
	}
	f.removeLocked(item)
	item.base().parent = nil
	s.gen++
	s.mu.Unlock()

	s.changes.Notify(Change{Type: ChangeRemoved, Item: item, OldParent: f})
	return true
}

func (f *Folder) removeLocked(item Item) {
	for i, it := range f.items {
		if it == item {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

// AddFolder creates a solution folder and appends it to f.
func (f *Folder) AddFolder(name string) (*Folder, error) {
	if err := fspath.CheckFileName(name); err != nil {
		return nil, &ItemError{Op: "add", ID: f.id, Name: name, Err: err}
	}
	child := f.sln.NewFolder(name)
	if err := f.Add(child); err != nil {
		return nil, err
	}
	return child, nil
}

// AddFile creates a solution item for the file at location and appends it
// to f. A relative location is resolved against the solution directory.
func (f *Folder) AddFile(location fspath.Path) (*FileItem, error) {
	if location.IsZero() {
		return nil, &ItemError{Op: "add", ID: f.id, Name: f.Name(), Err: ErrInvalidItem}
	}
	item := f.sln.NewFileItem(location)
	if err := f.Add(item); err != nil {
		return nil, err
	}
	return item, nil
}

// AddProject creates a project for the project file at fileName and
// appends it to f. An empty name defaults to the file name without its
// extension.
func (f *Folder) AddProject(fileName fspath.Path, name string, typeID uuid.UUID) (*BaseProject, error) {
	if fileName.IsZero() {
		return nil, &ItemError{Op: "add", ID: f.id, Name: f.Name(), Err: ErrInvalidItem}
	}
	p := f.sln.NewProject(fileName, name, typeID)
	if err := fspath.CheckFileName(p.name); err != nil {
		return nil, &ItemError{Op: "add", ID: p.id, Name: p.name, Err: err}
	}
	if err := f.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}
