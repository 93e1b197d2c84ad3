package solution

import (
	"github.com/dshills/workbench/internal/fspath"
	"github.com/google/uuid"
)

// Kind identifies the concrete type of an item.
type Kind int

const (
	// KindFolder is a solution folder.
	KindFolder Kind = iota
	// KindProject is a project.
	KindProject
	// KindFile is a solution item file.
	KindFile
)

// String returns the kind name as stored in solution files.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindProject:
		return "project"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Item is an element of the solution tree.
//
// Items are created by a Solution and can only be attached to folders of
// that solution. Implementations outside this package embed *BaseProject.
type Item interface {
	// ID returns the item's stable identifier.
	ID() uuid.UUID

	// Name returns the display name.
	Name() string

	// Kind returns the item kind.
	Kind() Kind

	// ParentFolder returns the containing folder, or nil when the item is
	// the solution root or is detached.
	ParentFolder() *Folder

	// Solution returns the solution that created the item.
	Solution() *Solution

	base() *itemBase
}

// itemBase holds the state shared by all items. id and sln never change;
// name and parent are guarded by sln.mu.
type itemBase struct {
	id     uuid.UUID
	sln    *Solution
	name   string
	parent *Folder
}

func (b *itemBase) ID() uuid.UUID { return b.id }

func (b *itemBase) Solution() *Solution { return b.sln }

func (b *itemBase) base() *itemBase { return b }

func (b *itemBase) Name() string {
	b.sln.mu.RLock()
	defer b.sln.mu.RUnlock()
	return b.name
}

func (b *itemBase) ParentFolder() *Folder {
	b.sln.mu.RLock()
	defer b.sln.mu.RUnlock()
	return b.parent
}

// rename validates and applies a new name, then reports the change.
func (b *itemBase) rename(item Item, name string) error {
	if err := fspath.CheckFileName(name); err != nil {
		return &ItemError{Op: "rename", ID: b.id, Name: b.Name(), Err: err}
	}

	s := b.sln
	s.mu.Lock()
	old := b.name
	if old == name {
		s.mu.Unlock()
		return nil
	}
	b.name = name
	s.gen++
	s.mu.Unlock()

	s.changes.Notify(Change{Type: ChangeRenamed, Item: item, OldName: old})
	return nil
}

// FileItem is a file listed directly in a solution folder, such as a
// README kept under "Solution Items".
type FileItem struct {
	itemBase
	location fspath.Path
}

// Kind returns KindFile.
func (f *FileItem) Kind() Kind { return KindFile }

// Location returns the absolute path of the file.
func (f *FileItem) Location() fspath.Path { return f.location }
