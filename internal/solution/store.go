package solution

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/ignore"
	"github.com/dshills/workbench/internal/vfs"
	"go.uber.org/zap"
)

// Store loads and saves solution files on a file system.
type Store struct {
	fs       vfs.FS
	bindings Bindings
	ignore   *ignore.Matcher
	parallel int
	log      *zap.Logger

	mu       sync.Mutex
	snapshot *fspath.Map[[]byte]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBindings sets the project types the store can load.
func WithBindings(b Bindings) StoreOption {
	return func(st *Store) {
		st.bindings = b
	}
}

// WithIgnore sets the patterns skipped when scanning project directories.
func WithIgnore(patterns ...string) StoreOption {
	return func(st *Store) {
		st.ignore = ignore.New(patterns...)
	}
}

// WithScanConcurrency limits how many project directories are scanned at
// once. Values below one mean no limit.
func WithScanConcurrency(n int) StoreOption {
	return func(st *Store) {
		st.parallel = n
	}
}

// WithStoreLogger sets the store logger. Loaded solutions inherit it.
func WithStoreLogger(log *zap.Logger) StoreOption {
	return func(st *Store) {
		st.log = log
	}
}

// NewStore creates a store over fsys.
func NewStore(fsys vfs.FS, opts ...StoreOption) *Store {
	st := &Store{
		fs:       fsys,
		bindings: DefaultBindings,
		ignore:   ignore.New(ignore.Default...),
		parallel: 4,
		log:      zap.NewNop(),
		snapshot: fspath.NewMap[[]byte](),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// FS returns the store's file system.
func (st *Store) FS() vfs.FS { return st.fs }

// Bindings returns the project types the store can load.
func (st *Store) Bindings() Bindings { return st.bindings }

// Create returns a new empty solution bound to this store. Nothing is
// written until the solution is saved.
func (st *Store) Create(fileName fspath.Path, opts ...Option) *Solution {
	return New(fileName, st.solutionOptions(opts)...)
}

func (st *Store) solutionOptions(opts []Option) []Option {
	return append([]Option{WithStore(st), WithLogger(st.log)}, opts...)
}

// Load reads the solution file at fileName. A missing, malformed or
// unsupported file yields a *LoadError. Projects whose type or file cannot
// be resolved are loaded as UnknownProject.
func (st *Store) Load(ctx context.Context, fileName fspath.Path, opts ...Option) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codec, err := CodecFor(fileName)
	if err != nil {
		return nil, &LoadError{Path: fileName.String(), Err: err}
	}
	data, err := st.fs.ReadFile(fileName.String())
	if err != nil {
		return nil, &LoadError{Path: fileName.String(), Err: err}
	}
	var doc Document
	if err := codec.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: fileName.String(), Err: err}
	}

	s := New(fileName, st.solutionOptions(opts)...)
	d := &decodeState{
		sln:      s,
		bindings: st.bindings,
		exists:   func(p fspath.Path) bool { return st.fs.Exists(p.String()) },
	}
	if err := d.build(&doc); err != nil {
		return nil, &LoadError{Path: fileName.String(), Err: err}
	}

	if err := st.Scan(ctx, s); err != nil {
		return nil, err
	}
	s.saved = s.gen
	st.remember(fileName, data)

	st.log.Info("solution loaded",
		zap.Stringer("file", fileName),
		zap.Int("projects", len(s.Projects())),
	)
	for _, p := range s.Projects() {
		if u, ok := p.(*UnknownProject); ok {
			st.log.Warn("project not loaded",
				zap.Stringer("project", u.FileName()),
				zap.String("reason", u.WarningText()),
			)
		}
	}
	return s, nil
}

// Save writes s to its solution file, creating the directory if needed.
func (st *Store) Save(ctx context.Context, s *Solution) error {
	_, err := st.save(ctx, s)
	return err
}

// save writes s and returns the edit generation of the written snapshot.
func (st *Store) save(ctx context.Context, s *Solution) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fileName := s.FileName()
	codec, err := CodecFor(fileName)
	if err != nil {
		return 0, fmt.Errorf("save solution %s: %w", fileName, err)
	}
	doc := s.Document()
	data, err := codec.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("save solution %s: %w", fileName, err)
	}
	if dir := s.Directory(); !dir.IsZero() {
		if err := st.fs.MkdirAll(dir.String(), 0o755); err != nil {
			return 0, fmt.Errorf("save solution %s: %w", fileName, err)
		}
	}
	if err := st.fs.WriteFile(fileName.String(), data, 0o644); err != nil {
		return 0, fmt.Errorf("save solution %s: %w", fileName, err)
	}
	st.remember(fileName, data)
	return doc.generation, nil
}

// IsCurrent reports whether data equals what the store last read from or
// wrote to fileName.
func (st *Store) IsCurrent(fileName fspath.Path, data []byte) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	last, ok := st.snapshot.Get(fileName)
	return ok && bytes.Equal(last, data)
}

// Forget drops the remembered content of fileName.
func (st *Store) Forget(fileName fspath.Path) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot.Delete(fileName)
}

func (st *Store) remember(fileName fspath.Path, data []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot.Set(fileName, bytes.Clone(data))
}
