package vfs

import (
	"errors"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/dshills/workbench/internal/fspath"
)

var (
	errIsDir    = errors.New("is a directory")
	errNotDir   = errors.New("not a directory")
	errNotEmpty = errors.New("directory not empty")
)

// MemFS implements FS in memory. Names are matched case-insensitively
// with the rules of fspath, and every path is normalized before use;
// relative paths are resolved against "/".
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	nodes map[fspath.Key]*memNode
	now   func() time.Time
}

type memNode struct {
	path    fspath.Path
	dir     bool
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates an empty in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		nodes: make(map[fspath.Key]*memNode),
		now:   time.Now,
	}
}

var _ FS = (*MemFS)(nil)

var memRoot = fspath.MustNew("/")

func (m *MemFS) resolve(op, path string) (fspath.Path, error) {
	p := fspath.Create(path)
	if p.IsZero() {
		return p, &fs.PathError{Op: op, Path: path, Err: fs.ErrInvalid}
	}
	return p.Abs(memRoot), nil
}

// isDir reports whether p is a directory. Roots always exist. Callers hold mu.
func (m *MemFS) isDir(p fspath.Path) bool {
	if _, ok := p.Parent(); !ok {
		return true
	}
	n, ok := m.nodes[p.Key()]
	return ok && n.dir
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	p, err := m.resolve("read", path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[p.Key()]
	switch {
	case m.isDir(p):
		return nil, &fs.PathError{Op: "read", Path: path, Err: errIsDir}
	case !ok:
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(n.data))
	copy(content, n.data)
	return content, nil
}

// WriteFile writes data to a file. The parent directory must exist.
func (m *MemFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	p, err := m.resolve("write", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isDir(p) {
		return &fs.PathError{Op: "write", Path: path, Err: errIsDir}
	}
	parent, _ := p.Parent()
	if !m.isDir(parent) {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
	}

	content := make([]byte, len(data))
	copy(content, data)

	// An existing file keeps the spelling it was created with.
	if n, ok := m.nodes[p.Key()]; ok {
		n.data = content
		n.mode = perm
		n.modTime = m.now()
		return nil
	}
	m.nodes[p.Key()] = &memNode{path: p, data: content, mode: perm, modTime: m.now()}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(path string, perm fs.FileMode) error {
	p, err := m.resolve("mkdir", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []fspath.Path
	for cur := p; ; {
		parent, ok := cur.Parent()
		if !ok {
			break // root
		}
		if n, exists := m.nodes[cur.Key()]; exists {
			if !n.dir {
				return &fs.PathError{Op: "mkdir", Path: cur.String(), Err: errNotDir}
			}
			break
		}
		missing = append(missing, cur)
		cur = parent
	}

	for _, d := range missing {
		m.nodes[d.Key()] = &memNode{path: d, dir: true, mode: fs.ModeDir | perm, modTime: m.now()}
	}
	return nil
}

// AddFile writes a file, creating parent directories as needed.
func (m *MemFS) AddFile(path, content string) error {
	p, err := m.resolve("write", path)
	if err != nil {
		return err
	}
	if parent, ok := p.Parent(); ok {
		if err := m.MkdirAll(parent.String(), 0o755); err != nil {
			return err
		}
	}
	return m.WriteFile(p.String(), []byte(content), 0o644)
}

// Stat returns file information.
func (m *MemFS) Stat(path string) (FileInfo, error) {
	p, err := m.resolve("stat", path)
	if err != nil {
		return FileInfo{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if n, ok := m.nodes[p.Key()]; ok {
		return n.info(), nil
	}
	if _, ok := p.Parent(); !ok {
		return FileInfo{Path: p.String(), Name: p.String(), Mode: fs.ModeDir | 0o755, IsDir: true}, nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

// Exists reports whether the path exists.
func (m *MemFS) Exists(path string) bool {
	_, err := m.Stat(path)
	return err == nil
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(path string) error {
	p, err := m.resolve("remove", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[p.Key()]
	if !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if n.dir && len(m.children(p)) > 0 {
		return &fs.PathError{Op: "remove", Path: path, Err: errNotEmpty}
	}
	delete(m.nodes, p.Key())
	return nil
}

// ReadDir lists the direct children of a directory sorted by name.
func (m *MemFS) ReadDir(path string) ([]FileInfo, error) {
	p, err := m.resolve("readdir", path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isDir(p) {
		if _, ok := m.nodes[p.Key()]; ok {
			return nil, &fs.PathError{Op: "readdir", Path: path, Err: errNotDir}
		}
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	children := m.children(p)
	infos := make([]FileInfo, len(children))
	for i, n := range children {
		infos[i] = n.info()
	}
	return infos, nil
}

// WalkDir walks the tree rooted at root.
func (m *MemFS) WalkDir(root string, fn WalkFunc) error {
	info, err := m.Stat(root)
	if err != nil {
		return fn(root, FileInfo{}, err)
	}
	err = m.walk(info, fn)
	if errors.Is(err, SkipDir) || errors.Is(err, SkipAll) {
		return nil
	}
	return err
}

func (m *MemFS) walk(info FileInfo, fn WalkFunc) error {
	if err := fn(info.Path, info, nil); err != nil {
		if errors.Is(err, SkipDir) && info.IsDir {
			return nil
		}
		return err
	}
	if !info.IsDir {
		return nil
	}

	entries, err := m.ReadDir(info.Path)
	if err != nil {
		return fn(info.Path, info, err)
	}
	for _, entry := range entries {
		if err := m.walk(entry, fn); err != nil {
			if errors.Is(err, SkipDir) {
				return nil // skip the rest of this directory
			}
			return err
		}
	}
	return nil
}

// children returns the direct children of dir sorted by name. Callers hold mu.
func (m *MemFS) children(dir fspath.Path) []*memNode {
	var out []*memNode
	for _, n := range m.nodes {
		if parent, ok := n.path.Parent(); ok && parent.Equal(dir) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].path.Compare(out[j].path) < 0
	})
	return out
}

func (n *memNode) info() FileInfo {
	return FileInfo{
		Path:    n.path.String(),
		Name:    n.path.FileName(),
		Size:    int64(len(n.data)),
		Mode:    n.mode,
		ModTime: n.modTime,
		IsDir:   n.dir,
	}
}
