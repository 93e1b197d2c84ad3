package solution

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/vfs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T) (*Store, *vfs.MemFS) {
	t.Helper()
	fsys := vfs.NewMemFS()
	for path, content := range map[string]string{
		"/work/src/app/App.csproj":   "<Project/>",
		"/work/src/app/Main.cs":      "class Main {}",
		"/work/src/app/obj/gen.cs":   "// generated",
		"/work/src/app/Sub/Util.cs":  "class Util {}",
		"/work/lib/Lib.vbproj":       "<Project/>",
		"/work/docs/README.md":       "# App",
		"/work/tools/Tool.unknownpj": "",
	} {
		if err := fsys.AddFile(path, content); err != nil {
			t.Fatalf("AddFile(%q) error = %v", path, err)
		}
	}
	return NewStore(fsys), fsys
}

// buildSample populates s with one item of every kind.
func buildSample(t *testing.T, s *Solution) {
	t.Helper()
	src, err := s.Root().AddFolder("src")
	if err != nil {
		t.Fatal(err)
	}
	app, err := src.AddProject(fspath.MustNew("src/app/App.csproj"), "", CSharpProjectType)
	if err != nil {
		t.Fatal(err)
	}
	app.AddFile(fspath.MustNew("Main.cs"))
	app.SetScanDirectory(true)

	if _, err := s.Root().AddProject(fspath.MustNew("lib/Lib.vbproj"), "Library", VBNetProjectType); err != nil {
		t.Fatal(err)
	}
	items, _ := s.Root().AddFolder("Solution Items")
	if _, err := items.AddFile(fspath.MustNew("docs/README.md")); err != nil {
		t.Fatal(err)
	}
}

// outline renders the tree as indented "kind name" lines.
func outline(s *Solution) []string {
	var out []string
	var visit func(f *Folder, depth int)
	visit = func(f *Folder, depth int) {
		for _, item := range f.Items() {
			out = append(out, strings.Repeat("  ", depth)+item.Kind().String()+" "+item.Name())
			if child, ok := item.(*Folder); ok {
				visit(child, depth+1)
			}
		}
	}
	visit(s.Root(), 0)
	return out
}

func TestStore_RoundTrip(t *testing.T) {
	for _, ext := range []string{".sln.yaml", ".sln.toml", ".sln.json"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			st, fsys := newTestStore(t)
			fileName := fspath.MustNew("/work/App" + ext)

			s := st.Create(fileName)
			defer s.Close()
			buildSample(t, s)
			if err := s.Save(ctx); err != nil {
				t.Fatalf("Save error = %v", err)
			}
			if s.IsDirty() {
				t.Error("IsDirty() = true after Save")
			}

			data, err := fsys.ReadFile(fileName.String())
			if err != nil {
				t.Fatalf("ReadFile error = %v", err)
			}
			if strings.Contains(string(data), "/work") {
				t.Errorf("saved paths should be relative:\n%s", data)
			}
			if !st.IsCurrent(fileName, data) {
				t.Error("IsCurrent() = false for the bytes just written")
			}

			loaded, err := st.Load(ctx, fileName)
			if err != nil {
				t.Fatalf("Load error = %v", err)
			}
			defer loaded.Close()

			if diff := cmp.Diff(outline(s), outline(loaded)); diff != "" {
				t.Errorf("tree mismatch (-saved +loaded):\n%s", diff)
			}
			if loaded.Root().ID() != s.Root().ID() {
				t.Error("root id not preserved")
			}
			for _, item := range s.AllItems() {
				if loaded.ItemByID(item.ID()) == nil {
					t.Errorf("item %q id not preserved", item.Name())
				}
			}
			if loaded.IsDirty() {
				t.Error("IsDirty() = true after Load")
			}

			app := loaded.ProjectByFileName(fspath.MustNew("/work/src/app/App.csproj"))
			if app == nil {
				t.Fatal("App project not loaded")
			}
			if !app.HasProjectType(CSharpProjectType) {
				t.Error("App project type lost")
			}
			var files []string
			for _, f := range app.Files() {
				files = append(files, f.String())
			}
			want := []string{
				"/work/src/app/App.csproj",
				"/work/src/app/Main.cs",
				"/work/src/app/Sub/Util.cs",
			}
			if diff := cmp.Diff(want, files); diff != "" {
				t.Errorf("scanned files mismatch (-want +got):\n%s", diff)
			}
			if loaded.FindProjectContainingFile(fspath.MustNew("/work/src/app/obj/gen.cs")) != nil {
				t.Error("ignored obj/ file should not belong to a project")
			}
		})
	}
}

func TestStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"missing file", "/work/none.sln.yaml", "", nil},
		{"unsupported suffix", "/work/App.sln.xml", "<x/>", ErrUnsupportedFormat},
		{"future version", "/work/App.sln.yaml", "format_version: 99\n", ErrUnsupportedVersion},
		{"no version", "/work/App.sln.yaml", "name: App\n", nil},
		{"malformed yaml", "/work/App.sln.yaml", "format_version: [\n", nil},
		{"malformed json", "/work/App.sln.json", `{"format_version": 1,`, nil},
		{"unknown kind", "/work/App.sln.yaml", "format_version: 1\nitems:\n  - kind: widget\n", nil},
		{"bad id", "/work/App.sln.toml", "format_version = 1\n[[items]]\nkind = \"folder\"\nname = \"A\"\nid = \"nope\"\n", nil},
		{"unknown field", "/work/App.sln.toml", "format_version = 1\ncolour = \"red\"\n", nil},
		{"unknown json field", "/work/App.sln.json", `{"format_version":1,"itemz":[]}`, nil},
		{"unknown json item field", "/work/App.sln.json", `{"format_version":1,"items":[{"kind":"folder","nmae":"A"}]}`, nil},
		{"unknown yaml field", "/work/App.sln.yaml", "format_version: 1\nitemz: []\n", nil},
		{"bad project name", "/work/App.sln.yaml", "format_version: 1\nitems:\n  - kind: project\n    name: a/b\n    path: a/A.csproj\n", nil},
		{"duplicate id", "/work/App.sln.json", `{"format_version":1,"items":[
			{"kind":"folder","name":"A","id":"6f1c2a9e-0c1e-4b8a-9d2f-1a2b3c4d5e6f"},
			{"kind":"folder","name":"B","id":"6f1c2a9e-0c1e-4b8a-9d2f-1a2b3c4d5e6f"}]}`, nil},
		{"file with children", "/work/App.sln.yaml", "format_version: 1\nitems:\n  - kind: file\n    path: a.txt\n    items:\n      - kind: folder\n        name: X\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := vfs.NewMemFS()
			if tt.content != "" {
				if err := fsys.AddFile(tt.file, tt.content); err != nil {
					t.Fatal(err)
				}
			}
			st := NewStore(fsys)
			_, err := st.Load(context.Background(), fspath.MustNew(tt.file))
			if !IsLoadError(err) {
				t.Fatalf("Load error = %v, want *LoadError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load error = %v, want %v", err, tt.wantErr)
			}
			if msg := err.Error(); strings.Contains(msg, "yaml: yaml:") {
				t.Errorf("Load error %q repeats the decoder prefix", msg)
			}
		})
	}
}

func TestStore_LoadUnknownProjects(t *testing.T) {
	st, fsys := newTestStore(t)
	doc := `format_version: 1
name: Mixed
items:
  - kind: project
    path: tools/Tool.unknownpj
  - kind: project
    path: missing/Gone.csproj
  - kind: project
    path: src/app/App.csproj
    type: ` + uuid.NewString() + `
  - kind: project
    path: lib/Lib.vbproj
`
	fileName := fspath.MustNew("/work/Mixed.sln.yaml")
	if err := fsys.AddFile(fileName.String(), doc); err != nil {
		t.Fatal(err)
	}

	s, err := st.Load(context.Background(), fileName)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	defer s.Close()

	projects := s.Projects()
	if len(projects) != 4 {
		t.Fatalf("Projects() = %d, want 4", len(projects))
	}
	for i, want := range []bool{true, true, true, false} {
		_, unknown := projects[i].(*UnknownProject)
		if unknown != want {
			t.Errorf("project %d (%s) unknown = %v, want %v", i, projects[i].Name(), unknown, want)
		}
	}
	if got := projects[1].(*UnknownProject).WarningText(); got == DefaultUnknownProjectWarning {
		t.Errorf("missing project warning = %q", got)
	}
	if !projects[3].HasProjectType(VBNetProjectType) {
		t.Error("type should be inferred from the .vbproj extension")
	}
	if s.Name() != "Mixed" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestStore_IsCurrent(t *testing.T) {
	st, _ := newTestStore(t)
	fileName := fspath.MustNew("/work/App.sln.yaml")
	s := st.Create(fileName)
	defer s.Close()

	if st.IsCurrent(fileName, nil) {
		t.Error("IsCurrent() = true before any save")
	}
	if err := s.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st.IsCurrent(fileName, []byte("other")) {
		t.Error("IsCurrent() = true for different content")
	}
	st.Forget(fileName)
	data, _ := st.FS().ReadFile(fileName.String())
	if st.IsCurrent(fileName, data) {
		t.Error("IsCurrent() = true after Forget")
	}
}

// writeHookFS runs onWrite before each write reaches the file system.
type writeHookFS struct {
	*vfs.MemFS
	onWrite func()
}

func (h *writeHookFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if h.onWrite != nil {
		h.onWrite()
	}
	return h.MemFS.WriteFile(path, data, perm)
}

func TestSolution_SaveKeepsLaterEditsDirty(t *testing.T) {
	fsys := &writeHookFS{MemFS: vfs.NewMemFS()}
	s := NewStore(fsys).Create(fspath.MustNew("/work/App.sln.yaml"))
	t.Cleanup(s.Close)
	if _, err := s.Root().AddFolder("A"); err != nil {
		t.Fatal(err)
	}

	fsys.onWrite = func() {
		fsys.onWrite = nil
		if _, err := s.Root().AddFolder("B"); err != nil {
			t.Error(err)
		}
	}
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if !s.IsDirty() {
		t.Error("edit made during Save was marked as saved")
	}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if s.IsDirty() {
		t.Error("IsDirty = true after a quiet Save")
	}
}

func TestSolution_ConcurrentEdits(t *testing.T) {
	const (
		workers = 4
		rounds  = 25
	)
	ctx := context.Background()
	st := NewStore(vfs.NewMemFS())
	file := fspath.MustNew("/work/App.sln.yaml")
	s := st.Create(file)
	t.Cleanup(s.Close)

	inbox, err := s.Root().AddFolder("inbox")
	if err != nil {
		t.Fatal(err)
	}
	done, err := s.Root().AddFolder("done")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				f, err := inbox.AddFolder(fmt.Sprintf("w%d-%02d", w, i))
				if err != nil {
					t.Error(err)
					return
				}
				if err := done.Add(f); err != nil {
					t.Error(err)
					return
				}
				if err := f.SetName(f.Name() + "x"); err != nil {
					t.Error(err)
					return
				}
				if err := s.Save(ctx); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if s.IsDirty() {
		t.Error("IsDirty = true after the final Save")
	}
	if inbox.Len() != 0 || done.Len() != workers*rounds {
		t.Fatalf("inbox = %d, done = %d, want 0 and %d", inbox.Len(), done.Len(), workers*rounds)
	}

	loaded, err := st.Load(ctx, file)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	defer loaded.Close()
	if diff := cmp.Diff(outline(s), outline(loaded)); diff != "" {
		t.Errorf("reloaded outline mismatch (-saved +loaded):\n%s", diff)
	}
	for _, item := range loaded.AllItems() {
		if f, ok := item.(*Folder); ok && f.ParentFolder() != nil && f.ParentFolder().Name() == "done" && !strings.HasSuffix(f.Name(), "x") {
			t.Errorf("folder %s lost its rename", f.Name())
		}
	}
}

func TestStore_SaveCanceled(t *testing.T) {
	st, _ := newTestStore(t)
	s := st.Create(fspath.MustNew("/work/App.sln.yaml"))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save error = %v, want context.Canceled", err)
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		file string
		want Codec
	}{
		{"/a/App.sln.yaml", YAMLCodec{}},
		{"/a/App.SLN.YML", YAMLCodec{}},
		{"/a/App.sln.toml", TOMLCodec{}},
		{"/a/App.sln.json", JSONCodec{}},
	}
	for _, tt := range tests {
		got, err := CodecFor(fspath.MustNew(tt.file))
		if err != nil {
			t.Fatalf("CodecFor(%q) error = %v", tt.file, err)
		}
		if got != tt.want {
			t.Errorf("CodecFor(%q) = %T, want %T", tt.file, got, tt.want)
		}
	}
	if _, err := CodecFor(fspath.MustNew("/a/App.sln")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("CodecFor(.sln) error = %v", err)
	}
}

func TestBindings(t *testing.T) {
	if b, ok := DefaultBindings.ByFileName(fspath.MustNew("/x/A.CSPROJ")); !ok || b.TypeID != CSharpProjectType {
		t.Errorf("ByFileName(.CSPROJ) = %v, %v", b, ok)
	}
	if b, ok := DefaultBindings.ByLanguage("go"); !ok || b.Extension != ".goproj" {
		t.Errorf("ByLanguage(go) = %v, %v", b, ok)
	}
	if DefaultBindings.IsProjectFile(fspath.MustNew("/x/readme.md")) {
		t.Error("IsProjectFile(readme.md) = true")
	}
	if _, ok := DefaultBindings.ByType(uuid.Nil); ok {
		t.Error("ByType(Nil) should fail")
	}
}
