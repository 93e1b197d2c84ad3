// Package watch reports external changes to files the workbench has open.
//
// FSNotify watches directories through fsnotify. Debounced coalesces bursts
// of events on the same path, which editors and atomic writers produce when
// they save through a temporary file. Manual delivers events injected by the
// caller.
package watch

import (
	"errors"
	"strings"

	"github.com/dshills/workbench/internal/fspath"
)

// Common errors returned by watchers.
var (
	ErrClosed          = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
)

// Op is a set of file system operations.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns the operations joined by '|'.
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes every operation in o.
func (op Op) Has(o Op) bool {
	return o != 0 && op&o == o
}

// Event is a change to one path.
type Event struct {
	Path fspath.Path
	Op   Op
}

// Watcher reports changes in watched directories.
type Watcher interface {
	// Add starts watching a directory and its immediate children.
	Add(dir string) error

	// Remove stops watching a directory.
	Remove(dir string) error

	// Events returns the event channel. It is closed by Close.
	Events() <-chan Event

	// Errors returns the error channel. It is closed by Close.
	Errors() <-chan error

	// Close stops the watcher.
	Close() error
}
