package solution

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Standard errors returned by the solution package.
var (
	// ErrInvalidItem indicates a nil or otherwise unusable item.
	ErrInvalidItem = errors.New("invalid item")

	// ErrCycle indicates a folder would be moved into itself or below itself.
	ErrCycle = errors.New("folder cannot contain itself")

	// ErrRootItem indicates an attempt to move the solution root.
	ErrRootItem = errors.New("solution root cannot be moved")

	// ErrForeignItem indicates an item that belongs to another solution.
	ErrForeignItem = errors.New("item belongs to another solution")

	// ErrNotFound indicates no item has the requested id.
	ErrNotFound = errors.New("item not found")

	// ErrNoStore indicates the solution was never bound to a store.
	ErrNoStore = errors.New("solution has no store")

	// ErrUnsupportedFormat indicates a solution file suffix with no codec.
	ErrUnsupportedFormat = errors.New("unsupported solution format")

	// ErrUnsupportedVersion indicates a solution document newer than this
	// package understands.
	ErrUnsupportedVersion = errors.New("unsupported solution format version")
)

// ItemError records a failed tree operation.
type ItemError struct {
	Op   string    // Operation that failed (add, rename)
	ID   uuid.UUID // Item the operation was applied to
	Name string    // Item name at the time of failure
	Err  error     // Underlying error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.Op, e.Name, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// LoadError indicates a solution file that is malformed or of an
// unsupported version. It is not returned when only individual projects
// inside an otherwise valid solution cannot be resolved.
type LoadError struct {
	Path string // Solution file path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load solution %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
