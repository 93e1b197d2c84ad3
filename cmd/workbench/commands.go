package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/workbench/internal/bookmark"
	"github.com/dshills/workbench/internal/browser"
	"github.com/dshills/workbench/internal/config"
	"github.com/dshills/workbench/internal/edmx"
	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/service"
	"github.com/dshills/workbench/internal/solution"
	"github.com/dshills/workbench/internal/typesys"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newNewCmd(c *cli) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty solution file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[0])
			if err != nil {
				return err
			}
			if !c.svc.IsSolutionFile(file) {
				return fmt.Errorf("%s: not a solution file name (want one of %s)",
					file, strings.Join(c.cfg.Solution.Suffixes, ", "))
			}
			if c.fs.Exists(file.String()) {
				return fmt.Errorf("%s already exists", file)
			}

			var sln *solution.Solution
			if name != "" {
				sln = c.svc.Store().Create(file, solution.WithName(name), solution.WithLogger(c.log))
			} else {
				sln = c.svc.CreateEmptySolutionFile(file)
			}
			defer sln.Close()
			if err := sln.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "solution name (default: file name)")
	return cmd
}

func newTreeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the solution tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			return b.Tree().Render(cmd.OutOrStdout())
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add folders, projects or solution items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "folder <parent> <name>",
		Short: "Add a solution folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				parent, err := node(b, args[0])
				if err != nil {
					return err
				}
				_, err = b.AddFolder(cmd.Context(), parent, args[1])
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "file <folder> <file>",
		Short: "Add a solution item file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[1])
			if err != nil {
				return err
			}
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				folder, err := node(b, args[0])
				if err != nil {
					return err
				}
				_, err = b.AddItem(cmd.Context(), folder, file)
				return err
			})
		},
	})

	var name string
	var scan bool
	project := &cobra.Command{
		Use:   "project <folder> <project-file>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[1])
			if err != nil {
				return err
			}
			binding, ok := c.svc.Store().Bindings().ByFileName(file)
			if !ok {
				return fmt.Errorf("%s: %w", file, service.ErrNotProjectOrSolution)
			}
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				n, err := node(b, args[0])
				if err != nil {
					return err
				}
				folder := n.Folder()
				if folder == nil {
					return browser.ErrNotFolder
				}
				p, err := folder.AddProject(file, name, binding.TypeID)
				if err != nil {
					return err
				}
				if scan {
					p.SetScanDirectory(true)
				}
				return nil
			})
		},
	}
	project.Flags().StringVar(&name, "name", "", "project name (default: file name)")
	project.Flags().BoolVar(&scan, "scan", false, "treat every file under the project directory as part of the project")
	cmd.AddCommand(project)

	return cmd
}

func newMoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <item> <folder>",
		Short: "Move an item into a solution folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				dragged, err := node(b, args[0])
				if err != nil {
					return err
				}
				target, err := node(b, args[1])
				if err != nil {
					return err
				}
				return b.Drop(cmd.Context(), target, dragged)
			})
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item>",
		Short: "Remove an item from the solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				n, err := node(b, args[0])
				if err != nil {
					return err
				}
				return b.Delete(cmd.Context(), n)
			})
		},
	}
}

func newRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a solution folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				n, err := node(b, args[0])
				if err != nil {
					return err
				}
				return b.Rename(cmd.Context(), n, args[1])
			})
		},
	}
}

func newCutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cut <item>",
		Short: "Cut an item to the clipboard",
		Long: `Cut places the item on the clipboard; paste moves it. Between separate
invocations this needs the system clipboard backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			n, err := node(b, args[0])
			if err != nil {
				return err
			}
			if err := b.Cut(n); err != nil {
				return err
			}
			if c.clipboard == nil && c.cfg.Clipboard.Backend != "system" {
				c.log.Warn("clipboard backend is not shared between invocations",
					zap.String("backend", c.cfg.Clipboard.Backend))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cut %s\n", b.Tree().Solution().Path(n.Item()))
			return nil
		},
	}
}

func newPasteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "paste <folder>",
		Short: "Move the cut item into a solution folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(b *browser.Browser) error {
				target, err := node(b, args[0])
				if err != nil {
					return err
				}
				return b.Paste(cmd.Context(), target)
			})
		},
	}
}

func newFindCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "find <file>",
		Short: "Find the project containing a file and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[0])
			if err != nil {
				return err
			}
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			p := c.svc.FindProjectContainingFile(file)
			if p == nil {
				return fmt.Errorf("%s: no project contains the file", file)
			}
			if err := c.svc.SetCurrentProject(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Tree().Solution().Path(p), p.FileName())
			return nil
		},
	}
}

func newPathCmd(c *cli) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "path <path>...",
		Short: "Print normalized absolute paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var basePath fspath.Path
			if base != "" {
				p, err := c.path(base)
				if err != nil {
					return err
				}
				basePath = p
			}
			for _, arg := range args {
				p, err := c.path(arg)
				if err != nil {
					return err
				}
				if basePath.IsZero() {
					fmt.Fprintln(cmd.OutOrStdout(), p)
					continue
				}
				rel, err := basePath.Rel(p)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rel)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "rel", "", "print paths relative to this directory")
	return cmd
}

func newBookmarksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks <file.go>",
		Short: "List the type and member bookmarks of a Go file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[0])
			if err != nil {
				return err
			}
			src, err := c.fs.ReadFile(file.String())
			if err != nil {
				return err
			}

			parser := typesys.NewGoParser(typesys.WithLogger(c.log))
			defer parser.Close()
			parsed, err := parser.Parse(cmd.Context(), file.String(), src)
			if err != nil {
				return err
			}

			margin := bookmark.NewMargin(bookmark.WithLogger(c.log))
			defer margin.Close()
			out := cmd.OutOrStdout()
			margin.OnRedrawRequested(func(m *bookmark.Margin) {
				for _, b := range m.Bookmarks() {
					fmt.Fprintf(out, "%4d  %s\n", b.Line(), b.Label())
				}
			})
			margin.UpdateClassMemberBookmarks(parsed)
			return nil
		},
	}
}

func newEdmxCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edmx <file.edmx>",
		Short: "Summarize the conceptual model of an entity data model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.path(args[0])
			if err != nil {
				return err
			}
			data, err := c.fs.ReadFile(file.String())
			if err != nil {
				return err
			}
			model, err := edmx.ReadConceptualModel(bytes.NewReader(data))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model %s (%s)\n", model.Namespace, model.Container)
			for _, t := range model.EntityTypes {
				fmt.Fprintf(out, "EntityType %s", t.Name)
				if t.BaseType != "" {
					fmt.Fprintf(out, " : %s", t.BaseType)
				}
				if len(t.Keys) > 0 {
					fmt.Fprintf(out, " key(%s)", strings.Join(t.Keys, ", "))
				}
				fmt.Fprintln(out)
				for _, p := range t.Properties {
					nullable := ""
					if !p.Nullable {
						nullable = " not null"
					}
					fmt.Fprintf(out, "  %s %s%s\n", p.Name, p.Type, nullable)
				}
				for _, n := range t.NavigationProperties {
					fmt.Fprintf(out, "  %s -> %s\n", n.Name, n.ToRole)
				}
			}
			for _, a := range model.Associations {
				var ends []string
				for _, e := range a.Ends {
					ends = append(ends, e.Type+" "+e.Multiplicity.String())
				}
				fmt.Fprintf(out, "Association %s: %s\n", a.Name, strings.Join(ends, " - "))
			}
			return nil
		},
	}
}

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the solution tree whenever the solution file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.Watch.Enabled {
				return errWatchDisabled
			}
			ctx := cmd.Context()
			b, err := c.open(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = b.Tree().Render(out)
			b.Close()
			if err != nil {
				return err
			}

			sub := c.svc.OnOpenSolutionChanged(func(e service.SolutionEvent) {
				if e.Reason != service.Reloaded || e.New == nil {
					return
				}
				tree := browser.NewTree(e.New)
				defer tree.Close()
				if err := tree.Render(out); err != nil {
					c.log.Warn("cannot print reloaded solution", zap.Error(err))
				}
			})
			defer sub.Unsubscribe()

			w, err := c.newWatcher(c.cfg, c.log)
			if err != nil {
				return err
			}
			err = c.svc.Watch(ctx, w)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newConfigCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(c.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "workbench %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return nil
		},
	}
}
