package fspath

import (
	"strings"
)

// Key is the comparable identity of a Path. Two paths that are Equal have
// the same Key.
type Key string

// Path is a normalized file or directory name.
//
// The zero Path is the absent path; see IsZero.
type Path struct {
	_    [0]func() // Paths compare with Equal, never with ==.
	path string
	key  Key
}

// New normalizes s and returns it as a Path.
// It fails with ErrInvalidArgument when s is empty.
func New(s string) (Path, error) {
	if s == "" {
		return Path{}, &Error{Op: "new", Path: s, Err: ErrInvalidArgument}
	}
	return fromNormalized(Normalize(s)), nil
}

// MustNew is like New but panics on error. It is intended for constants
// and tests.
func MustNew(s string) Path {
	p, err := New(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Create returns the Path for s, or the zero Path when s is empty.
func Create(s string) Path {
	if s == "" {
		return Path{}
	}
	return fromNormalized(Normalize(s))
}

func fromNormalized(s string) Path {
	return Path{path: s, key: Key(fold(s))}
}

// IsZero reports whether p is the absent path.
func (p Path) IsZero() bool {
	return p.path == ""
}

// String returns the normalized path string.
func (p Path) String() string {
	return p.path
}

// Key returns the case-insensitive identity of p, suitable as a map key.
func (p Path) Key() Key {
	return p.key
}

// Equal reports whether p and other name the same location, ignoring case.
func (p Path) Equal(other Path) bool {
	return p.key == other.key
}

// Compare orders paths case-insensitively. Paths that differ only in case
// are ordered by their exact spelling so sorting stays deterministic.
func (p Path) Compare(other Path) int {
	switch {
	case p.key < other.key:
		return -1
	case p.key > other.key:
		return 1
	}
	return strings.Compare(p.path, other.path)
}

// Equal reports whether a and b name the same location, ignoring case.
func Equal(a, b Path) bool {
	return a.Equal(b)
}

// IsAbs reports whether p is rooted.
func (p Path) IsAbs() bool {
	root, _ := splitRoot(p.path)
	return isRootedPrefix(root)
}

// Parent returns the directory containing p. It reports false for roots,
// for single-segment relative paths and for the zero Path.
func (p Path) Parent() (Path, bool) {
	root, rest := splitRoot(p.path)
	if rest == "" {
		return Path{}, false
	}
	i := strings.LastIndexByte(rest, '/')
	if i < 0 {
		if root == "" {
			return Path{}, false
		}
		return fromNormalized(root), true
	}
	return fromNormalized(joinRoot(root, rest[:i])), true
}

// FileName returns the last segment of p, or "" for a root.
func (p Path) FileName() string {
	_, rest := splitRoot(p.path)
	if i := strings.LastIndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

// Extension returns the suffix of the last segment starting at its final
// '.', including the dot. A name ending in '.' has no extension.
func (p Path) Extension() string {
	name := p.FileName()
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// FileNameWithoutExtension returns the last segment with everything from its
// final '.' removed.
func (p Path) FileNameWithoutExtension() string {
	name := p.FileName()
	if name == "." || name == ".." {
		return name
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// HasExtension reports whether the last segment ends in ext, ignoring case.
// ext may span several dots, as in ".sln.yaml".
func (p Path) HasExtension(ext string) bool {
	name := fold(p.FileName())
	ext = fold(ext)
	return len(name) > len(ext) && strings.HasSuffix(name, ext)
}

// Join appends path elements to p. An absolute element replaces everything
// before it. Empty elements are ignored.
func (p Path) Join(elem ...string) Path {
	acc := p.path
	for _, e := range elem {
		if e == "" {
			continue
		}
		if IsAbs(e) || acc == "" {
			acc = e
			continue
		}
		if strings.HasSuffix(acc, "/") || isDriveRelative(acc) {
			acc += e
		} else {
			acc += "/" + e
		}
	}
	if acc == "" {
		return Path{}
	}
	return fromNormalized(Normalize(acc))
}

// Abs resolves p against base when p is relative.
func (p Path) Abs(base Path) Path {
	if p.IsAbs() || base.IsZero() {
		return p
	}
	return base.Join(p.path)
}

// IsBaseOf reports whether other is p or lies below p.
func (p Path) IsBaseOf(other Path) bool {
	if p.IsZero() || other.IsZero() {
		return false
	}
	if p.key == other.key {
		return true
	}
	prefix := string(p.key)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(string(other.key), prefix)
}

// Rel returns a relative path that leads from directory p to target, using
// '/' separators. Both paths must share a root.
func (p Path) Rel(target Path) (string, error) {
	baseRoot, baseRest := splitRoot(p.path)
	targetRoot, targetRest := splitRoot(target.path)
	if fold(baseRoot) != fold(targetRoot) {
		return "", &Error{Op: "rel", Path: target.path, Err: ErrDifferentRoots}
	}

	from := splitSegments(baseRest)
	to := splitSegments(targetRest)
	common := 0
	for common < len(from) && common < len(to) && fold(from[common]) == fold(to[common]) {
		common++
	}
	if common < len(from) && from[common] == ".." {
		return "", &Error{Op: "rel", Path: target.path, Err: ErrDifferentRoots}
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	if len(parts) == 0 {
		return ".", nil
	}
	return strings.Join(parts, "/"), nil
}

func splitSegments(rest string) []string {
	if rest == "" || rest == "." {
		return nil
	}
	return strings.Split(rest, "/")
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.path), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the
// zero Path.
func (p *Path) UnmarshalText(text []byte) error {
	*p = Create(string(text))
	return nil
}
