package vfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFS_WriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	f := NewOSFS()
	path := filepath.Join(dir, "app.sln.yaml")

	if err := f.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := f.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := f.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestOSFS_WalkDirAndStat(t *testing.T) {
	dir := t.TempDir()
	f := NewOSFS()
	if err := f.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := f.WriteFile(filepath.Join(dir, "a", "b", "c.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	var files int
	err := f.WalkDir(dir, func(path string, info FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir {
			files++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}
	if files != 1 {
		t.Errorf("files = %d, want 1", files)
	}

	info, err := f.Stat(filepath.Join(dir, "a"))
	if err != nil || !info.IsDir {
		t.Errorf("Stat(a) = %+v, %v", info, err)
	}
	if f.Exists(filepath.Join(dir, "missing")) {
		t.Error("missing path should not exist")
	}
}
