package fspath

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical form of p.
//
// Separators become '/', empty and "." segments are removed and ".." segments
// are resolved. A ".." that would climb above a root is dropped; leading ".."
// segments of a relative path are kept. The result never ends in a separator
// unless it is a root. A relative path that resolves to nothing becomes ".".
// Letter case is left untouched. Normalize("") returns "".
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")

	root, rest := splitRoot(p)
	rooted := isRootedPrefix(root)

	segs := make([]string, 0, strings.Count(rest, "/")+1)
	for _, s := range strings.Split(rest, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			if n := len(segs); n > 0 && segs[n-1] != ".." {
				segs = segs[:n-1]
			} else if !rooted {
				segs = append(segs, "..")
			}
		default:
			segs = append(segs, s)
		}
	}

	joined := strings.Join(segs, "/")
	if root == "" && joined == "" {
		return "."
	}
	return joinRoot(root, joined)
}

// splitRoot separates the root of an already slash-converted path from the
// remainder. Recognized roots are "/", "C:/", the drive-relative "C:" and the
// UNC form "//server/share".
func splitRoot(p string) (root, rest string) {
	if p == "" {
		return "", ""
	}
	if len(p) >= 2 && p[0] == '/' && p[1] == '/' && (len(p) == 2 || p[2] != '/') {
		parts := strings.SplitN(p[2:], "/", 3)
		if parts[0] == "" {
			return "/", p
		}
		root = "//" + parts[0]
		if len(parts) > 1 && parts[1] != "" {
			root += "/" + parts[1]
		}
		if len(parts) == 3 {
			rest = parts[2]
		}
		return root, rest
	}
	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		if len(p) >= 3 && p[2] == '/' {
			return p[:2] + "/", p[3:]
		}
		return p[:2], p[2:]
	}
	if p[0] == '/' {
		return "/", p[1:]
	}
	return "", p
}

// joinRoot appends normalized segments to a root.
func joinRoot(root, segs string) string {
	switch {
	case segs == "":
		return root
	case root == "":
		return segs
	case strings.HasSuffix(root, "/"), isDriveRelative(root):
		return root + segs
	default:
		return root + "/" + segs
	}
}

func isRootedPrefix(root string) bool {
	return root != "" && !isDriveRelative(root)
}

func isDriveRelative(root string) bool {
	return len(root) == 2 && root[1] == ':' && isDriveLetter(root[0])
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAbs reports whether p names a location independent of any working
// directory: "/x", "C:/x" or "//server/share/x" (with either separator).
func IsAbs(p string) bool {
	root, _ := splitRoot(strings.ReplaceAll(p, `\`, "/"))
	return isRootedPrefix(root)
}

// fold returns the case-folded form used for equality and hashing. Each rune
// is folded on its own, so "ß" and "ss" stay distinct.
func fold(s string) string {
	return strings.Map(simpleFold, s)
}

func simpleFold(r rune) rune {
	return unicode.ToLower(unicode.ToUpper(r))
}
