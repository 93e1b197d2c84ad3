package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/workbench/internal/browser"
	"github.com/dshills/workbench/internal/config"
	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/service"
	"github.com/dshills/workbench/internal/solution"
	"github.com/dshills/workbench/internal/vfs"
	"github.com/dshills/workbench/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	errNoSolutionFile   = errors.New("no solution file in the current directory")
	errManySolutionFile = errors.New("more than one solution file in the current directory; use --solution")
	errWatchDisabled    = errors.New("watching is disabled by watch.enabled")
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	cwd string
	fs  vfs.FS
	out io.Writer

	// Overridable for tests.
	clipboard  browser.Clipboard
	newWatcher func(cfg *config.Config, log *zap.Logger) (watch.Watcher, error)

	// Flags.
	cfgPath string
	slnPath string
	verbose bool

	cfg *config.Config
	log *zap.Logger
	svc *service.Service
}

func newCLI(cwd string) *cli {
	return &cli{
		cwd:        cwd,
		fs:         vfs.NewOSFS(),
		out:        os.Stdout,
		cfgPath:    config.DefaultPath(),
		newWatcher: defaultWatcher,
	}
}

func defaultWatcher(cfg *config.Config, log *zap.Logger) (watch.Watcher, error) {
	w, err := watch.NewFSNotify(watch.WithIgnore(cfg.Scan.Ignore...), watch.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return watch.NewDebounced(w, cfg.Watch.Debounce()), nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "workbench",
		Short: "Manage solutions, projects and solution folders",
		Long: `workbench edits solution files: trees of solution folders, projects and
solution items stored as YAML, TOML or JSON.

Commands act on the solution given with --solution, or the only solution
file in the current directory.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
	}
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgPath, "config", "c", c.cfgPath, "path to configuration file")
	flags.StringVarP(&c.slnPath, "solution", "s", "", "solution file to operate on")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newNewCmd(c),
		newTreeCmd(c),
		newAddCmd(c),
		newMoveCmd(c),
		newRemoveCmd(c),
		newRenameCmd(c),
		newCutCmd(c),
		newPasteCmd(c),
		newFindCmd(c),
		newPathCmd(c),
		newBookmarksCmd(c),
		newEdmxCmd(c),
		newWatchCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.fs, c.cfgPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	c.cfg = cfg

	if c.log == nil {
		log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		c.log = log
	}

	opts, err := cfg.StoreOptions()
	if err != nil {
		return err
	}
	store := solution.NewStore(c.fs, append(opts, solution.WithStoreLogger(c.log))...)
	c.svc = service.New(store,
		service.WithLogger(c.log),
		service.WithSuffixes(cfg.Solution.Suffixes...),
		service.WithSolutionFormat(cfg.Solution.Format),
	)
	return nil
}

func (c *cli) teardown() {
	if c.svc != nil {
		c.svc.Close()
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

// path resolves a command line path against the working directory.
func (c *cli) path(arg string) (fspath.Path, error) {
	p, err := fspath.New(arg)
	if err != nil {
		return fspath.Path{}, err
	}
	return p.Abs(fspath.MustNew(c.cwd)), nil
}

// solutionFile returns the --solution path, or the single solution file
// in the working directory.
func (c *cli) solutionFile() (fspath.Path, error) {
	if c.slnPath != "" {
		return c.path(c.slnPath)
	}
	entries, err := c.fs.ReadDir(c.cwd)
	if err != nil {
		return fspath.Path{}, err
	}
	var found []fspath.Path
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		p := fspath.Create(e.Path)
		if c.svc.IsSolutionFile(p) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return fspath.Path{}, errNoSolutionFile
	case 1:
		return found[0], nil
	default:
		return fspath.Path{}, errManySolutionFile
	}
}

func (c *cli) clip() browser.Clipboard {
	if c.clipboard != nil {
		return c.clipboard
	}
	return browser.NewClipboard(c.cfg.Clipboard.Backend)
}

// open opens the solution (or the solution of a project file) and returns
// a browser over it.
func (c *cli) open(ctx context.Context) (*browser.Browser, error) {
	file, err := c.solutionFile()
	if err != nil {
		return nil, err
	}
	if err := c.svc.OpenSolutionOrProject(ctx, file); err != nil {
		return nil, err
	}
	return browser.New(c.svc.OpenSolution(),
		browser.WithClipboard(c.clip()),
		browser.SaveOnChange(c.cfg.Browser.SaveOnChange),
		browser.WithLogger(c.log),
	), nil
}

// finish saves edits the browser left unsaved and releases it.
func (c *cli) finish(ctx context.Context, b *browser.Browser) error {
	defer b.Close()
	if b.Tree().Solution().IsDirty() {
		return c.svc.Save(ctx)
	}
	return nil
}

// edit opens the solution, applies fn and saves.
func (c *cli) edit(ctx context.Context, fn func(b *browser.Browser) error) error {
	b, err := c.open(ctx)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		b.Close()
		return err
	}
	return c.finish(ctx, b)
}

// node finds the node at a slash separated item path. Names match
// case-insensitively; "" and "/" name the solution root.
func node(b *browser.Browser, itemPath string) (*browser.Node, error) {
	n := b.Tree().Root()
	for _, name := range strings.Split(strings.Trim(itemPath, "/"), "/") {
		if name == "" {
			continue
		}
		var next *browser.Node
		for _, child := range n.Children() {
			if strings.EqualFold(child.Item().Name(), name) {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%s: %w", itemPath, solution.ErrNotFound)
		}
		n = next
	}
	return n, nil
}
