package fspath

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckFileName(t *testing.T) {
	valid := []string{"Folder", "Solution Items", "my.project", "Ünïcode", "a-b_c"}
	for _, name := range valid {
		if err := CheckFileName(name); err != nil {
			t.Errorf("CheckFileName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"", "   ", ".", "..", "a/b", `a\b`, "a:b", "what?", "star*",
		"con", "CON.txt", "Lpt3", "trailing.", "trailing ", "bell\x07",
		strings.Repeat("x", MaxNameLength+1),
	}
	for _, name := range invalid {
		err := CheckFileName(name)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("CheckFileName(%q) = %v, want ErrInvalidName", name, err)
		}
		if IsValidFileName(name) {
			t.Errorf("IsValidFileName(%q) = true", name)
		}
	}
}
