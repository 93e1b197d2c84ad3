package solution

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/vfs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scan refreshes the scanned files of every project in s that scans its
// directory. Projects are scanned concurrently. A project directory that
// cannot be read is logged and left without scanned files; only context
// cancellation fails the scan.
func (st *Store) Scan(ctx context.Context, s *Solution) error {
	var targets []*BaseProject
	for _, p := range s.Projects() {
		if b, ok := p.(projectBacked); ok && b.baseProject().ScansDirectory() {
			targets = append(targets, b.baseProject())
		}
	}
	if len(targets) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if st.parallel > 0 {
		g.SetLimit(st.parallel)
	}
	for _, p := range targets {
		g.Go(func() error {
			files, err := st.scanDir(gctx, p.Directory())
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				st.log.Warn("project scan failed",
					zap.Stringer("project", p.FileName()),
					zap.Error(err),
				)
				return nil
			}
			p.setScanned(files)
			st.log.Debug("project scanned",
				zap.Stringer("project", p.FileName()),
				zap.Int("files", len(files)),
			)
			return nil
		})
	}
	return g.Wait()
}

func (st *Store) scanDir(ctx context.Context, dir fspath.Path) ([]fspath.Path, error) {
	var files []fspath.Path
	err := st.fs.WalkDir(dir.String(), func(path string, info vfs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p := fspath.Create(path)
		if p.Equal(dir) {
			return nil
		}
		rel, relErr := dir.Rel(p)
		if relErr == nil && st.ignore.Match(rel, info.IsDir) {
			if info.IsDir {
				return vfs.SkipDir
			}
			return nil
		}
		if !info.IsDir {
			files = append(files, p)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return nil, err
	}
	return files, nil
}
