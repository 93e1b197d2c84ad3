package fspath

import "sort"

// Set is a collection of distinct paths. Membership ignores case.
// A Set is not safe for concurrent use.
type Set struct {
	m map[Key]Path
}

// NewSet creates a set holding paths.
func NewSet(paths ...Path) *Set {
	s := &Set{m: make(map[Key]Path, len(paths))}
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts p and reports whether it was not already present.
// The zero Path is never added.
func (s *Set) Add(p Path) bool {
	if p.IsZero() {
		return false
	}
	if _, ok := s.m[p.key]; ok {
		return false
	}
	s.m[p.key] = p
	return true
}

// Remove deletes p and reports whether it was present.
func (s *Set) Remove(p Path) bool {
	if _, ok := s.m[p.key]; !ok {
		return false
	}
	delete(s.m, p.key)
	return true
}

// Contains reports whether p is in the set.
func (s *Set) Contains(p Path) bool {
	_, ok := s.m[p.key]
	return ok
}

// Len returns the number of paths in the set.
func (s *Set) Len() int {
	return len(s.m)
}

// Paths returns the members in case-insensitive order.
func (s *Set) Paths() []Path {
	out := make([]Path, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	Sort(out)
	return out
}

// Map associates values with paths. Lookups ignore case; the spelling of
// the most recent Set wins. A Map is not safe for concurrent use.
type Map[V any] struct {
	m map[Key]mapEntry[V]
}

type mapEntry[V any] struct {
	path  Path
	value V
}

// NewMap creates an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{m: make(map[Key]mapEntry[V])}
}

// Set stores v under p.
func (m *Map[V]) Set(p Path, v V) {
	m.m[p.key] = mapEntry[V]{path: p, value: v}
}

// Get returns the value stored under p.
func (m *Map[V]) Get(p Path) (V, bool) {
	e, ok := m.m[p.key]
	return e.value, ok
}

// Delete removes p.
func (m *Map[V]) Delete(p Path) {
	delete(m.m, p.key)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.m)
}

// Range calls fn for every entry in case-insensitive path order until fn
// returns false.
func (m *Map[V]) Range(fn func(p Path, v V) bool) {
	keys := make([]Path, 0, len(m.m))
	for _, e := range m.m {
		keys = append(keys, e.path)
	}
	Sort(keys)
	for _, k := range keys {
		if !fn(k, m.m[k.key].value) {
			return
		}
	}
}

// Sort orders paths with Compare.
func Sort(paths []Path) {
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Compare(paths[j]) < 0
	})
}
