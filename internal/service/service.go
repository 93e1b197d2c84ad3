// Package service tracks the open solution and the current project.
//
// A Service owns at most one open solution at a time. Observers subscribe
// to solution and current-project changes; they are called after the
// service lock is released, so they may call back into the service.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/notify"
	"github.com/dshills/workbench/internal/solution"
	"go.uber.org/zap"
)

// Standard errors returned by the service.
var (
	// ErrForeignProject indicates a project outside the open solution.
	ErrForeignProject = errors.New("project does not belong to the open solution")

	// ErrNoSolution indicates an operation that needs an open solution.
	ErrNoSolution = errors.New("no solution is open")

	// ErrNotProjectOrSolution indicates a file that is neither a solution
	// nor a bound project file.
	ErrNotProjectOrSolution = errors.New("not a project or solution file")
)

// Reason says why the open solution changed.
type Reason int

const (
	// Opened means a solution was opened.
	Opened Reason = iota
	// Closed means the open solution was closed.
	Closed
	// Reloaded means the open solution was replaced by a fresh load of
	// its file after an external edit.
	Reloaded
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case Opened:
		return "opened"
	case Closed:
		return "closed"
	case Reloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// SolutionEvent reports a change of the open solution.
type SolutionEvent struct {
	Reason Reason
	Old    *solution.Solution
	New    *solution.Solution
}

// ProjectEvent reports a change of the current project.
type ProjectEvent struct {
	Old solution.Project
	New solution.Project
}

// Service tracks the open solution and the current project.
type Service struct {
	store    *solution.Store
	suffixes []string
	format   string
	log      *zap.Logger

	mu      sync.Mutex
	open    *solution.Solution
	current solution.Project
	sub     *notify.Subscription

	solutionChanged *notify.Notifier[SolutionEvent]
	projectChanged  *notify.Notifier[ProjectEvent]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithSuffixes sets the file name suffixes recognized as solution files.
func WithSuffixes(suffixes ...string) Option {
	return func(s *Service) {
		s.suffixes = suffixes
	}
}

// WithSolutionFormat sets the suffix of solutions created for a project.
func WithSolutionFormat(suffix string) Option {
	return func(s *Service) {
		s.format = suffix
	}
}

// New creates a service that loads and saves through store.
func New(store *solution.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		suffixes: solution.DefaultSuffixes,
		format:   solution.DefaultSuffixes[0],
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.solutionChanged = notify.New[SolutionEvent](notify.WithLogger(s.log))
	s.projectChanged = notify.New[ProjectEvent](notify.WithLogger(s.log))
	return s
}

// Store returns the store used to load and save solutions.
func (s *Service) Store() *solution.Store { return s.store }

// OpenSolution returns the open solution, or nil.
func (s *Service) OpenSolution() *solution.Solution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// OnOpenSolutionChanged subscribes to changes of the open solution.
func (s *Service) OnOpenSolutionChanged(observer notify.Observer[SolutionEvent]) *notify.Subscription {
	return s.solutionChanged.Subscribe(observer)
}

// CurrentProject returns the current project, or nil.
func (s *Service) CurrentProject() solution.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrentProject makes p the current project. p must be nil or a
// project attached to the open solution.
func (s *Service) SetCurrentProject(p solution.Project) error {
	s.mu.Lock()
	if p != nil {
		if s.open == nil || p.Solution() != s.open || s.open.ItemByID(p.ID()) == nil {
			s.mu.Unlock()
			return fmt.Errorf("set current project %s: %w", p.Name(), ErrForeignProject)
		}
	}
	old := s.current
	if old == p {
		s.mu.Unlock()
		return nil
	}
	s.current = p
	s.mu.Unlock()

	s.projectChanged.Notify(ProjectEvent{Old: old, New: p})
	return nil
}

// OnCurrentProjectChanged subscribes to changes of the current project.
func (s *Service) OnCurrentProjectChanged(observer notify.Observer[ProjectEvent]) *notify.Subscription {
	return s.projectChanged.Subscribe(observer)
}

// FindProjectContainingFile returns a project of the open solution that
// contains file, or nil.
func (s *Service) FindProjectContainingFile(file fspath.Path) solution.Project {
	sln := s.OpenSolution()
	if sln == nil {
		return nil
	}
	return sln.FindProjectContainingFile(file)
}

// IsSolutionFile reports whether fileName is a solution file.
func (s *Service) IsSolutionFile(fileName fspath.Path) bool {
	return solution.IsSolutionFile(fileName, s.suffixes...)
}

// IsProjectFile reports whether fileName is a bound project file.
func (s *Service) IsProjectFile(fileName fspath.Path) bool {
	return s.store.Bindings().IsProjectFile(fileName)
}

// IsProjectOrSolutionFile reports whether fileName can be opened.
func (s *Service) IsProjectOrSolutionFile(fileName fspath.Path) bool {
	return s.IsSolutionFile(fileName) || s.IsProjectFile(fileName)
}

// LoadSolutionFile loads a solution without opening it.
func (s *Service) LoadSolutionFile(ctx context.Context, fileName fspath.Path) (*solution.Solution, error) {
	return s.store.Load(ctx, fileName, solution.WithLogger(s.log))
}

// CreateEmptySolutionFile creates a solution bound to fileName. It is not
// written until it is saved, and it is not opened.
func (s *Service) CreateEmptySolutionFile(fileName fspath.Path) *solution.Solution {
	return s.store.Create(fileName, solution.WithLogger(s.log))
}

// OpenSolutionFile loads fileName and makes it the open solution, closing
// the previous one.
func (s *Service) OpenSolutionFile(ctx context.Context, fileName fspath.Path) error {
	sln, err := s.LoadSolutionFile(ctx, fileName)
	if err != nil {
		return err
	}
	s.swap(sln, Opened)
	s.log.Info("solution opened", zap.Stringer("file", fileName))
	return nil
}

// OpenSolutionOrProject opens a solution file directly. For a project file
// it opens the solution of the same name beside it, or creates, saves and
// opens one containing only that project.
func (s *Service) OpenSolutionOrProject(ctx context.Context, fileName fspath.Path) error {
	if s.IsSolutionFile(fileName) {
		return s.OpenSolutionFile(ctx, fileName)
	}
	binding, ok := s.store.Bindings().ByFileName(fileName)
	if !ok {
		return fmt.Errorf("open %s: %w", fileName, ErrNotProjectOrSolution)
	}

	dir, _ := fileName.Parent()
	stem := fileName.FileNameWithoutExtension()
	for _, suffix := range s.suffixes {
		candidate := dir.Join(stem + suffix)
		if s.store.FS().Exists(candidate.String()) {
			return s.OpenSolutionFile(ctx, candidate)
		}
	}

	sln := s.CreateEmptySolutionFile(dir.Join(stem + s.format))
	if _, err := sln.Root().AddProject(fileName, "", binding.TypeID); err != nil {
		sln.Close()
		return err
	}
	if err := sln.Save(ctx); err != nil {
		sln.Close()
		return err
	}
	s.swap(sln, Opened)
	s.log.Info("solution created for project",
		zap.Stringer("project", fileName),
		zap.Stringer("file", sln.FileName()),
	)
	return nil
}

// CloseSolution closes the open solution without saving it. Closing when
// nothing is open does nothing.
func (s *Service) CloseSolution(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.swap(nil, Closed)
	return nil
}

// Save writes the open solution.
func (s *Service) Save(ctx context.Context) error {
	sln := s.OpenSolution()
	if sln == nil {
		return ErrNoSolution
	}
	return sln.Save(ctx)
}

// Close closes the open solution and releases the notifiers.
func (s *Service) Close() {
	s.swap(nil, Closed)
	s.solutionChanged.Close()
	s.projectChanged.Close()
}

// swap replaces the open solution. The current project carries over when
// the new solution has an item with the same id, which is how it survives
// a reload.
func (s *Service) swap(next *solution.Solution, reason Reason) {
	s.mu.Lock()
	old, oldCurrent, oldSub := s.open, s.current, s.sub
	if old == nil && next == nil {
		s.mu.Unlock()
		return
	}

	var current solution.Project
	if next != nil && oldCurrent != nil {
		if p, ok := next.ItemByID(oldCurrent.ID()).(solution.Project); ok {
			current = p
		}
	}
	s.open, s.current, s.sub = next, current, nil
	if next != nil {
		s.sub = next.Subscribe(s.onSolutionChange)
	}
	s.mu.Unlock()

	if oldSub != nil {
		oldSub.Unsubscribe()
	}
	if oldCurrent != current {
		s.projectChanged.Notify(ProjectEvent{Old: oldCurrent, New: current})
	}
	s.solutionChanged.Notify(SolutionEvent{Reason: reason, Old: old, New: next})
	if old != nil {
		old.Close()
	}
}

// onSolutionChange clears the current project once it leaves the tree.
func (s *Service) onSolutionChange(c solution.Change) {
	if c.Type != solution.ChangeRemoved {
		return
	}
	s.mu.Lock()
	current, open := s.current, s.open
	s.mu.Unlock()
	if current == nil || open == nil || open.ItemByID(current.ID()) != nil {
		return
	}
	_ = s.SetCurrentProject(nil)
}
