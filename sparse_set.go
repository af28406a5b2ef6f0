package depot

import "github.com/TheBitDrifter/depot/internal/assert"

const (
	tombstone           = ^uint32(0)
	sparseInitialLength = 64
)

// SparseSet maps uint32 keys to values stored densely.
//
// Lookups go through a single indirection in the sparse page. Removal swaps
// the last dense element into the vacated row, so the dense arrays never hold
// holes and iteration order is the packed order.
type SparseSet[T any] struct {
	sparse []uint32
	keys   []uint32
	values []T
}

// NewSparseSet returns a set with room for capacity dense elements.
func NewSparseSet[T any](capacity int) *SparseSet[T] {
	s := &SparseSet[T]{}
	s.init(capacity)
	return s
}

func (s *SparseSet[T]) init(capacity int) {
	s.keys = make([]uint32, 0, capacity)
	s.values = make([]T, 0, capacity)
}

func (s *SparseSet[T]) grow(key uint32) {
	oldLen := len(s.sparse)
	newLen := max(oldLen*2, int(key)+1, sparseInitialLength)
	grown := make([]uint32, newLen)
	copy(grown, s.sparse)
	for i := oldLen; i < newLen; i++ {
		grown[i] = tombstone
	}
	s.sparse = grown
}

// Insert stores value under key and returns its dense row. An existing value
// for key is replaced in place.
//
// The sparse page is sized by the largest key seen, so keys should be dense
// indices such as entity indexes. The all-ones key is reserved.
func (s *SparseSet[T]) Insert(key uint32, value T) int {
	assert.That(key != tombstone, "sparse set key %d is reserved", key)
	if int(key) >= len(s.sparse) {
		s.grow(key)
	}
	if row := s.sparse[key]; row != tombstone {
		s.values[row] = value
		return int(row)
	}
	row := len(s.keys)
	s.sparse[key] = uint32(row)
	s.keys = append(s.keys, key)
	s.values = append(s.values, value)
	return row
}

// Remove deletes key and returns its value. The last dense element takes the
// removed row.
func (s *SparseSet[T]) Remove(key uint32) (T, bool) {
	var zero T
	row, ok := s.Row(key)
	if !ok {
		return zero, false
	}
	removed := s.values[row]
	last := len(s.keys) - 1
	if row != last {
		movedKey := s.keys[last]
		s.keys[row] = movedKey
		s.values[row] = s.values[last]
		s.sparse[movedKey] = uint32(row)
	}
	s.values[last] = zero
	s.keys = s.keys[:last]
	s.values = s.values[:last]
	s.sparse[key] = tombstone
	return removed, true
}

// Row returns the dense row for key.
func (s *SparseSet[T]) Row(key uint32) (int, bool) {
	if int(key) >= len(s.sparse) {
		return 0, false
	}
	row := s.sparse[key]
	if row == tombstone {
		return 0, false
	}
	assert.That(int(row) < len(s.keys) && s.keys[row] == key, "sparse entry %d points at row %d owned by another key", key, row)
	return int(row), true
}

func (s *SparseSet[T]) Get(key uint32) (T, bool) {
	row, ok := s.Row(key)
	if !ok {
		var zero T
		return zero, false
	}
	return s.values[row], true
}

// GetMut returns a pointer into the dense array, valid until the next Insert
// or Remove.
func (s *SparseSet[T]) GetMut(key uint32) *T {
	row, ok := s.Row(key)
	if !ok {
		return nil
	}
	return &s.values[row]
}

func (s *SparseSet[T]) Contains(key uint32) bool {
	_, ok := s.Row(key)
	return ok
}

func (s *SparseSet[T]) Len() int {
	return len(s.keys)
}

// Keys returns the dense keys in packed order. The slice is owned by the set.
func (s *SparseSet[T]) Keys() []uint32 {
	return s.keys
}

// Values returns the dense values in packed order. The slice is owned by the set.
func (s *SparseSet[T]) Values() []T {
	return s.values
}

func (s *SparseSet[T]) Clear() {
	for _, key := range s.keys {
		s.sparse[key] = tombstone
	}
	clear(s.values)
	s.keys = s.keys[:0]
	s.values = s.values[:0]
}
