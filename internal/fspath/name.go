package fspath

import (
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest file or folder name CheckFileName accepts.
const MaxNameLength = 255

const invalidNameChars = `<>:"/\|?*`

var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// CheckFileName validates a single file or folder name, such as the new
// label of a renamed solution folder. The name must be usable on every
// platform the solution may be opened on.
func CheckFileName(name string) error {
	if reason := invalidNameReason(name); reason != "" {
		return &Error{Op: "check", Path: name, Err: &nameError{reason: reason}}
	}
	return nil
}

// IsValidFileName reports whether CheckFileName accepts name.
func IsValidFileName(name string) bool {
	return invalidNameReason(name) == ""
}

func invalidNameReason(name string) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "name is empty"
	case utf8.RuneCountInString(name) > MaxNameLength:
		return "name is too long"
	case name == "." || name == "..":
		return "name is a relative directory reference"
	case strings.HasSuffix(name, " ") || strings.HasSuffix(name, "."):
		return "name ends with a space or dot"
	}
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(invalidNameChars, r) {
			return "name contains an invalid character"
		}
	}
	stem := name
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	if reservedNames[strings.ToLower(stem)] {
		return "name is reserved by the system"
	}
	return ""
}

type nameError struct {
	reason string
}

func (e *nameError) Error() string { return e.reason }

func (e *nameError) Unwrap() error { return ErrInvalidName }
