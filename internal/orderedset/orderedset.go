// Package orderedset provides an insertion-ordered set. Element order is
// semantically meaningful throughout the fabric pipeline (first occurrence
// wins), so plain maps are not enough.
package orderedset

// Set keeps its elements in insertion order and rejects duplicates.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// New returns an empty set.
func New[T comparable]() *Set[T] {
	return &Set[T]{index: make(map[T]struct{})}
}

// Add inserts v if not already present. It reports whether v was inserted.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Items returns the elements in insertion order. The returned slice is
// owned by the set and must not be mutated.
func (s *Set[T]) Items() []T {
	return s.items
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	return len(s.items)
}
