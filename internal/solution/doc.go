// Package solution models a solution: a tree of solution folders, projects
// and solution item files, persisted to a single solution file.
//
// Every item carries a uuid that stays stable across saves, so items can be
// found again by id (for example after a cut on the clipboard). A single
// read/write lock on the Solution guards the whole tree; item accessors take
// the read side and all mutations go through Folder methods that take the
// write side. Change notifications are delivered after the lock is released.
//
// # Building a solution
//
//	sln := solution.New(fspath.MustNew("/src/App.sln.yaml"))
//	libs, _ := sln.Root().AddFolder("Libraries")
//	proj := sln.NewProject(fspath.MustNew("/src/Core/Core.csproj"), "Core", solution.CSharpProjectType)
//	_ = libs.Add(proj)
//
// # Persistence
//
// A Store reads and writes solution files through a vfs.FS. The codec is
// chosen by file suffix: YAML (.yaml, .yml), TOML (.toml) or JSON (.json).
// Item paths are stored relative to the solution directory.
package solution
