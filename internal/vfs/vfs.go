// Package vfs provides the file system abstraction used to load and save
// solutions.
//
// OSFS talks to the operating system. MemFS is an in-memory file system
// with case-insensitive names, used by tests and for scratch solutions that
// are never written to disk.
package vfs

import (
	"io/fs"
	"time"
)

// FS is the subset of file system operations the workbench needs.
type FS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the file content, creating the file if necessary.
	// The parent directory must exist.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory and all missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Exists reports whether the path exists.
	Exists(path string) bool

	// Remove removes a file or empty directory.
	Remove(path string) error

	// ReadDir lists a directory sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// WalkDir walks the tree rooted at root in lexical order.
	// Returning SkipDir from fn skips a directory; SkipAll stops the walk.
	WalkDir(root string, fn WalkFunc) error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// WalkFunc is called by WalkDir for each visited path.
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir is returned from a WalkFunc to skip the current directory.
var SkipDir = fs.SkipDir

// SkipAll is returned from a WalkFunc to stop walking.
var SkipAll = fs.SkipAll
