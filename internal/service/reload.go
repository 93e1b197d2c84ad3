package service

import (
	"context"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/solution"
	"github.com/dshills/workbench/internal/watch"
	"go.uber.org/zap"
)

// Watch reloads the open solution when its file changes on disk until ctx
// is done. Changes that leave the file identical to what was last loaded
// or saved are ignored, so the service's own saves never trigger a reload.
// Watch owns w and closes it on return.
func (s *Service) Watch(ctx context.Context, w watch.Watcher) error {
	defer w.Close()

	opened := make(chan *solution.Solution, 1)
	push := func(sln *solution.Solution) {
		for {
			select {
			case opened <- sln:
				return
			default:
				// Keep only the latest solution.
				select {
				case <-opened:
				default:
				}
			}
		}
	}
	sub := s.OnOpenSolutionChanged(func(e SolutionEvent) {
		if e.Reason != Reloaded {
			push(e.New)
		}
	})
	defer sub.Unsubscribe()
	push(s.OpenSolution())

	var watched fspath.Path
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sln := <-opened:
			var dir fspath.Path
			if sln != nil {
				dir = sln.Directory()
			}
			if dir.Equal(watched) {
				continue
			}
			if !watched.IsZero() {
				if err := w.Remove(watched.String()); err != nil {
					s.log.Debug("unwatch failed", zap.Stringer("dir", watched), zap.Error(err))
				}
			}
			watched = fspath.Path{}
			if !dir.IsZero() {
				if err := w.Add(dir.String()); err != nil {
					s.log.Warn("cannot watch solution directory", zap.Stringer("dir", dir), zap.Error(err))
					continue
				}
				watched = dir
			}

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !ev.Op.Has(watch.OpWrite) && !ev.Op.Has(watch.OpCreate) && !ev.Op.Has(watch.OpRename) {
				continue
			}
			if sln := s.OpenSolution(); sln != nil && ev.Path.Equal(sln.FileName()) {
				s.Reload(ctx)
			}

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			s.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Reload replaces the open solution with a fresh load of its file and
// reports whether it did. Nothing happens when the file content is what
// the store last read or wrote, or when the file cannot be loaded; a failed
// load keeps the solution that is open.
func (s *Service) Reload(ctx context.Context) bool {
	sln := s.OpenSolution()
	if sln == nil {
		return false
	}
	fileName := sln.FileName()

	data, err := s.store.FS().ReadFile(fileName.String())
	if err != nil {
		s.log.Warn("cannot read solution for reload", zap.Stringer("file", fileName), zap.Error(err))
		return false
	}
	if s.store.IsCurrent(fileName, data) {
		return false
	}

	next, err := s.LoadSolutionFile(ctx, fileName)
	if err != nil {
		s.log.Warn("reload failed", zap.Stringer("file", fileName), zap.Error(err))
		return false
	}
	if s.OpenSolution() != sln {
		next.Close()
		return false
	}
	s.swap(next, Reloaded)
	s.log.Info("solution reloaded", zap.Stringer("file", fileName))
	return true
}
