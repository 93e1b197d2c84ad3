package fspath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSet(t *testing.T) {
	s := NewSet(MustNew("/src/Main.go"), MustNew("/src/main.GO"))
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if !s.Contains(MustNew(`\SRC\main.go`)) {
		t.Error("Contains should ignore case and separators")
	}
	if s.Add(Path{}) {
		t.Error("zero path should not be added")
	}
	if !s.Add(MustNew("/src/util.go")) {
		t.Error("Add of a new path should return true")
	}

	var got []string
	for _, p := range s.Paths() {
		got = append(got, p.String())
	}
	if diff := cmp.Diff([]string{"/src/Main.go", "/src/util.go"}, got); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}

	if !s.Remove(MustNew("/SRC/MAIN.GO")) {
		t.Error("Remove should find the path ignoring case")
	}
	if s.Remove(MustNew("/src/main.go")) {
		t.Error("second Remove should report false")
	}
}

func TestMap(t *testing.T) {
	m := NewMap[int]()
	m.Set(MustNew("/b"), 2)
	m.Set(MustNew("/A"), 1)
	m.Set(MustNew("/a"), 10)

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if v, ok := m.Get(MustNew("/A")); !ok || v != 10 {
		t.Errorf("Get(/A) = %d, %v", v, ok)
	}

	var order []string
	m.Range(func(p Path, v int) bool {
		order = append(order, p.String())
		return true
	})
	if diff := cmp.Diff([]string{"/a", "/b"}, order); diff != "" {
		t.Errorf("Range order mismatch (-want +got):\n%s", diff)
	}

	m.Delete(MustNew("/B"))
	if _, ok := m.Get(MustNew("/b")); ok {
		t.Error("Delete should ignore case")
	}
}
