package bookmark

import (
	"errors"
	"testing"

	"github.com/dshills/workbench/internal/typesys"
	"github.com/google/go-cmp/cmp"
)

func labels(m *Margin) []string {
	var out []string
	for _, b := range m.Bookmarks() {
		out = append(out, b.Label())
	}
	return out
}

func region(line int) typesys.Region {
	return typesys.Region{FileName: "a.go", BeginLine: line, BeginColumn: 1, EndLine: line, EndColumn: 10}
}

// sampleFile has one of every case the margin distinguishes.
func sampleFile() *typesys.File {
	rect := &typesys.Type{TypeName: "Rect", Qualifier: "pkg", TypeKind: typesys.KindStruct, Span: region(3)}
	rect.AddMember(&typesys.MemberDef{MemberName: "W", MemberKind: typesys.KindField, Span: region(4)})
	rect.AddMember(&typesys.MemberDef{MemberName: "_", MemberKind: typesys.KindField, Span: region(5), Synthetic: true})
	rect.AddMember(&typesys.MemberDef{MemberName: "noPos", MemberKind: typesys.KindField})
	meta := &typesys.Type{TypeName: "Meta", TypeKind: typesys.KindStruct, Span: region(6)}
	meta.AddMember(&typesys.MemberDef{MemberName: "Tag", MemberKind: typesys.KindField, Span: region(7)})
	rect.AddNested(meta)

	generated := &typesys.Type{TypeName: "Gen", Qualifier: "pkg", Span: region(10), Synthetic: true}
	generated.AddMember(&typesys.MemberDef{MemberName: "Hidden", MemberKind: typesys.KindMethod, Span: region(11)})

	elsewhere := &typesys.Type{TypeName: "Circle", Qualifier: "pkg"}
	elsewhere.AddMember(&typesys.MemberDef{MemberName: "Area", MemberKind: typesys.KindMethod, Span: region(12)})

	return &typesys.File{Name: "a.go", Package: "pkg", Types: []*typesys.Type{rect, generated, elsewhere}}
}

func TestMargin_ListRequestsRedraw(t *testing.T) {
	m := NewMargin()
	defer m.Close()

	redraws := 0
	m.OnRedrawRequested(func(got *Margin) {
		if got != m {
			t.Errorf("redraw for %p, want %p", got, m)
		}
		redraws++
	})

	a := &LineBookmark{File: "a.go", At: 1}
	b := &LineBookmark{File: "a.go", At: 2, Text: "todo"}
	m.Add(a)
	if err := m.Insert(0, b); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if diff := cmp.Diff([]string{"todo", "a.go:1"}, labels(m)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if !m.Remove(a) {
		t.Error("Remove(a) = false")
	}
	if m.Remove(a) {
		t.Error("second Remove(a) = true")
	}
	if err := m.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt error = %v", err)
	}
	m.Clear()
	m.Redraw()

	// Add, Insert, Remove, RemoveAt, Clear, Redraw.
	if redraws != 6 {
		t.Errorf("redraws = %d, want 6", redraws)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestMargin_IndexErrors(t *testing.T) {
	m := NewMargin()
	defer m.Close()

	if err := m.Insert(1, &LineBookmark{}); !errors.Is(err, ErrIndex) {
		t.Errorf("Insert(1) on empty error = %v, want ErrIndex", err)
	}
	if err := m.RemoveAt(0); !errors.Is(err, ErrIndex) {
		t.Errorf("RemoveAt(0) on empty error = %v, want ErrIndex", err)
	}
	if err := m.Insert(-1, &LineBookmark{}); !errors.Is(err, ErrIndex) {
		t.Errorf("Insert(-1) error = %v, want ErrIndex", err)
	}
}

func TestMargin_UpdateClassMemberBookmarks(t *testing.T) {
	m := NewMargin()
	defer m.Close()

	user := &LineBookmark{File: "a.go", At: 9, Text: "mine"}
	m.Add(user)

	redraws := 0
	m.OnRedrawRequested(func(*Margin) { redraws++ })

	m.UpdateClassMemberBookmarks(sampleFile())
	want := []string{
		"mine",
		"struct pkg.Rect",
		"struct pkg.Rect.Meta",
		"field pkg.Rect.Meta.Tag",
		"field pkg.Rect.W",
		"method pkg.Circle.Area",
	}
	if diff := cmp.Diff(want, labels(m)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if redraws != 1 {
		t.Errorf("redraws = %d, want 1", redraws)
	}

	// Updating again replaces rather than duplicates.
	m.UpdateClassMemberBookmarks(sampleFile())
	if diff := cmp.Diff(want, labels(m)); diff != "" {
		t.Errorf("labels after second update mismatch (-want +got):\n%s", diff)
	}

	lines := []int{}
	for _, b := range m.Bookmarks() {
		lines = append(lines, b.Line())
	}
	if diff := cmp.Diff([]int{9, 3, 6, 7, 4, 12}, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	m.UpdateClassMemberBookmarks(nil)
	if diff := cmp.Diff([]string{"mine"}, labels(m)); diff != "" {
		t.Errorf("labels after nil update mismatch (-want +got):\n%s", diff)
	}
}

func TestMargin_SharedViews(t *testing.T) {
	m := NewMargin()
	defer m.Close()

	var left, right int
	subLeft := m.OnRedrawRequested(func(*Margin) { left++ })
	m.OnRedrawRequested(func(*Margin) { right++ })

	m.Add(&LineBookmark{At: 1})
	subLeft.Unsubscribe()
	m.Add(&LineBookmark{At: 2})

	if left != 1 || right != 2 {
		t.Errorf("left, right = %d, %d, want 1, 2", left, right)
	}
}

func TestMargin_FromGoSource(t *testing.T) {
	p := typesys.NewGoParser()
	defer p.Close()

	src := "package p\n\ntype T struct {\n\tA int\n}\n\nfunc (t T) M() {}\n"
	f, err := p.Parse(t.Context(), "p.go", []byte(src))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}

	m := NewMargin()
	defer m.Close()
	m.UpdateClassMemberBookmarks(f)

	want := []string{"struct p.T", "field p.T.A", "method p.T.M"}
	if diff := cmp.Diff(want, labels(m)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}
