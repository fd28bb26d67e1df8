package types

// Set is a generic hash set backed by map[T]struct{}.
// It is not safe for concurrent use; callers serialize access.
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding the provided elements.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	set.Add(data...)
	return set
}

// Add inserts one or more elements into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// Delete removes one or more elements from the set.
func (s Set[T]) Delete(values ...T) {
	for _, val := range values {
		delete(s, val)
	}
}

// Has reports whether value is a member of the set.
func (s Set[T]) Has(value T) bool {
	_, ok := s[value]
	return ok
}

// Len returns the number of elements in the set.
func (s Set[T]) Len() int {
	return len(s)
}
