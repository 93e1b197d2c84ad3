package fspath

import (
	"errors"
	"fmt"
)

// Standard errors returned by the fspath package.
var (
	// ErrInvalidArgument indicates an empty or otherwise unusable path string.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidName indicates a file or folder name that cannot be used.
	ErrInvalidName = errors.New("invalid file name")

	// ErrDifferentRoots indicates two paths that share no common root.
	ErrDifferentRoots = errors.New("paths have different roots")
)

// Error records a failed path operation.
type Error struct {
	Op   string // Operation that failed (new, rel, check)
	Path string // Path as given by the caller
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidArgument returns true if err was caused by an unusable path string.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
