// Package ignore matches slash-separated relative paths against
// gitignore-style patterns.
//
// Supported forms:
//   - *.log             files ending in .log at any depth
//   - /build/           the build directory at the root only
//   - **/node_modules/  node_modules anywhere
//   - !keep.log         re-include a path an earlier pattern excluded
//
// Matching ignores letter case, like solution paths.
package ignore

import (
	"path"
	"strings"
	"sync"
)

// Default holds directories and files skipped when scanning project
// directories.
var Default = []string{
	".git/",
	".svn/",
	".hg/",
	".vs/",
	".idea/",
	".vscode/",
	"node_modules/",
	"bin/",
	"obj/",
	"*.swp",
	"*~",
	".DS_Store",
	"Thumbs.db",
}

type rule struct {
	text    string
	glob    string
	negate  bool
	dirOnly bool
	rooted  bool
}

// Matcher holds an ordered list of patterns. Later patterns override
// earlier ones. A Matcher is safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	rules []rule
}

// New creates a Matcher holding patterns.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	m.Add(patterns...)
	return m
}

// Add appends patterns. Blank lines and lines starting with '#' are skipped.
func (m *Matcher) Add(patterns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range patterns {
		p = strings.TrimRight(p, " \t")
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		r := rule{text: p}
		if strings.HasPrefix(p, "!") {
			r.negate = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			r.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		if strings.HasPrefix(p, "/") {
			r.rooted = true
			p = p[1:]
		}
		if p == "" {
			continue
		}
		r.glob = strings.ToLower(p)
		m.rules = append(m.rules, r)
	}
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// Patterns returns the patterns as they were added.
func (m *Matcher) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.text
	}
	return out
}

// Match reports whether rel, a slash-separated path relative to the scanned
// root, is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	rel = strings.ToLower(strings.Trim(strings.ReplaceAll(rel, `\`, "/"), "/"))
	if rel == "" || rel == "." {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.matches(rel) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r rule) matches(rel string) bool {
	parts := strings.Split(rel, "/")

	if strings.HasPrefix(r.glob, "**/") {
		rest := strings.TrimPrefix(r.glob, "**/")
		for i := range parts {
			if glob(rest, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	if i := strings.Index(r.glob, "/**/"); i >= 0 {
		prefix, suffix := r.glob[:i], r.glob[i+4:]
		if len(parts) < 2 || !glob(prefix, parts[0]) {
			return false
		}
		for j := 1; j < len(parts); j++ {
			if glob(suffix, strings.Join(parts[j:], "/")) {
				return true
			}
		}
		return false
	}

	if strings.HasSuffix(r.glob, "/**") {
		prefix := strings.TrimSuffix(r.glob, "/**")
		n := strings.Count(prefix, "/") + 1
		return len(parts) > n && glob(prefix, strings.Join(parts[:n], "/"))
	}

	if r.rooted || strings.Contains(r.glob, "/") {
		return glob(r.glob, rel)
	}
	return glob(r.glob, parts[len(parts)-1])
}

func glob(pattern, name string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}
