package solution

import (
	"context"
	"strings"
	"sync"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSuffixes are the file name suffixes recognized as solution files.
var DefaultSuffixes = []string{".sln.yaml", ".sln.yml", ".sln.toml", ".sln.json"}

// Solution is the root of a solution tree.
type Solution struct {
	mu sync.RWMutex

	fileName fspath.Path
	root     *Folder

	// gen counts edits; saved is the generation last written or loaded.
	gen   uint64
	saved uint64

	// saveMu orders writes so a newer snapshot is never overwritten by an
	// older one.
	saveMu sync.Mutex

	store   *Store
	changes *notify.Notifier[Change]
	log     *zap.Logger
}

// Option configures a Solution.
type Option func(*Solution)

// WithName sets the solution name instead of deriving it from the file name.
func WithName(name string) Option {
	return func(s *Solution) {
		s.root.name = name
	}
}

// WithStore binds the solution to a store for Save.
func WithStore(st *Store) Option {
	return func(s *Solution) {
		s.store = st
	}
}

// WithLogger sets the solution logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Solution) {
		s.log = log
	}
}

// New creates an empty solution for fileName. Nothing is written until Save.
func New(fileName fspath.Path, opts ...Option) *Solution {
	s := &Solution{
		fileName: fileName,
		log:      zap.NewNop(),
	}
	s.root = &Folder{itemBase: itemBase{id: uuid.New(), sln: s, name: NameFromFile(fileName)}}
	for _, opt := range opts {
		opt(s)
	}
	s.changes = notify.New[Change](notify.WithLogger(s.log))
	return s
}

// NameFromFile derives a solution name from its file name by dropping a
// recognized solution suffix, or else the last extension.
func NameFromFile(fileName fspath.Path) string {
	name := fileName.FileName()
	for _, suffix := range DefaultSuffixes {
		if fileName.HasExtension(suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return fileName.FileNameWithoutExtension()
}

// IsSolutionFile reports whether fileName carries one of suffixes, or one
// of DefaultSuffixes when suffixes is empty.
func IsSolutionFile(fileName fspath.Path, suffixes ...string) bool {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	for _, suffix := range suffixes {
		if fileName.HasExtension(suffix) {
			return true
		}
	}
	return false
}

// FileName returns the solution file path.
func (s *Solution) FileName() fspath.Path { return s.fileName }

// Directory returns the directory containing the solution file.
func (s *Solution) Directory() fspath.Path {
	dir, _ := s.fileName.Parent()
	return dir
}

// Name returns the solution name.
func (s *Solution) Name() string { return s.root.Name() }

// Root returns the top-level folder.
func (s *Solution) Root() *Folder { return s.root }

// IsDirty reports whether the tree changed since it was loaded or saved.
func (s *Solution) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != s.saved
}

// Subscribe registers an observer for structural changes.
func (s *Solution) Subscribe(observer notify.Observer[Change]) *notify.Subscription {
	return s.changes.Subscribe(observer)
}

// Close releases the change notifier. The tree stays readable.
func (s *Solution) Close() {
	s.changes.Close()
}

// NewFolder creates a detached solution folder.
func (s *Solution) NewFolder(name string) *Folder {
	return &Folder{itemBase: itemBase{id: uuid.New(), sln: s, name: name}}
}

// NewFileItem creates a detached solution item for location. A relative
// location is resolved against the solution directory.
func (s *Solution) NewFileItem(location fspath.Path) *FileItem {
	location = location.Abs(s.Directory())
	return &FileItem{
		itemBase: itemBase{id: uuid.New(), sln: s, name: location.FileName()},
		location: location,
	}
}

// NewProject creates a detached project. A relative fileName is resolved
// against the solution directory; an empty name defaults to the project
// file name without extension.
func (s *Solution) NewProject(fileName fspath.Path, name string, typeID uuid.UUID) *BaseProject {
	fileName = fileName.Abs(s.Directory())
	if name == "" {
		name = fileName.FileNameWithoutExtension()
	}
	return &BaseProject{
		itemBase: itemBase{id: uuid.New(), sln: s, name: name},
		fileName: fileName,
		typeID:   typeID,
		files:    fspath.NewSet(),
		scanned:  fspath.NewSet(),
	}
}

// NewUnknownProject creates a detached project of an unrecognized type.
func (s *Solution) NewUnknownProject(fileName fspath.Path, name string, typeID uuid.UUID, warning string) *UnknownProject {
	if warning == "" {
		warning = DefaultUnknownProjectWarning
	}
	return &UnknownProject{
		BaseProject: s.NewProject(fileName, name, typeID),
		warningText: warning,
	}
}

// Walk calls fn for every attached item in depth-first pre-order, starting
// with the root's children. fn runs on a snapshot without the lock held and
// may stop the walk by returning false.
func (s *Solution) Walk(fn func(item Item) bool) {
	for _, item := range s.AllItems() {
		if !fn(item) {
			return
		}
	}
}

// AllItems returns every attached item in depth-first pre-order.
func (s *Solution) AllItems() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Item
	var visit func(f *Folder)
	visit = func(f *Folder) {
		for _, item := range f.items {
			out = append(out, item)
			if child, ok := item.(*Folder); ok {
				visit(child)
			}
		}
	}
	visit(s.root)
	return out
}

// ItemByID returns the attached item with the given id, or nil. The root
// folder is found by its id as well.
func (s *Solution) ItemByID(id uuid.UUID) Item {
	if id == s.root.id {
		return s.root
	}
	for _, item := range s.AllItems() {
		if item.ID() == id {
			return item
		}
	}
	return nil
}

// Folders returns every attached solution folder.
func (s *Solution) Folders() []*Folder {
	var out []*Folder
	for _, item := range s.AllItems() {
		if f, ok := item.(*Folder); ok {
			out = append(out, f)
		}
	}
	return out
}

// Projects returns every attached project in tree order.
func (s *Solution) Projects() []Project {
	var out []Project
	for _, item := range s.AllItems() {
		if p, ok := item.(Project); ok {
			out = append(out, p)
		}
	}
	return out
}

// ProjectByFileName returns the project whose file is fileName, or nil.
func (s *Solution) ProjectByFileName(fileName fspath.Path) Project {
	for _, p := range s.Projects() {
		if p.FileName().Equal(fileName) {
			return p
		}
	}
	return nil
}

// FindProjectContainingFile returns a project that contains file, or nil.
// When several projects contain the file, the first in tree order wins.
func (s *Solution) FindProjectContainingFile(file fspath.Path) Project {
	for _, p := range s.Projects() {
		if p.IsFileInProject(file) {
			return p
		}
	}
	return nil
}

// Save writes the solution through its store.
func (s *Solution) Save(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	s.saveMu.Lock()
	gen, err := s.store.save(ctx, s)
	if err != nil {
		s.saveMu.Unlock()
		return err
	}
	// Edits made while the file was written keep the solution dirty.
	s.mu.Lock()
	s.saved = gen
	s.mu.Unlock()
	s.saveMu.Unlock()

	s.log.Debug("solution saved", zap.Stringer("file", s.fileName))
	s.changes.Notify(Change{Type: ChangeSaved})
	return nil
}

// Path returns the folder names from the root down to item, joined by "/".
// The root itself is not included.
func (s *Solution) Path(item Item) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var parts []string
	for cur := item.base(); cur != nil && cur != &s.root.itemBase; {
		parts = append(parts, cur.name)
		if cur.parent == nil {
			break
		}
		cur = &cur.parent.itemBase
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
