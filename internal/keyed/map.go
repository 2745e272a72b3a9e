// Package keyed provides an insertion-ordered hash map keyed by value.Value.
//
// Go maps need comparable keys, but values may be tuples, arbitrary-precision
// integers or floats that must compare equal to integers. Map hashes the
// canonical encoding of each key (xxh3) and resolves collisions with
// value.Equal, so keys use value equality, never identity.
package keyed

import (
	"iter"

	"tablestat/internal/value"
)

// Map is an insertion-ordered map from value.Value to V. The zero value is
// not usable; call New.
type Map[V any] struct {
	buckets map[uint64][]int
	keys    []value.Value
	vals    []V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{buckets: make(map[uint64][]int)}
}

func (m *Map[V]) find(k value.Value) (int, uint64) {
	h := value.Hash(k)
	for _, i := range m.buckets[h] {
		if value.Equal(m.keys[i], k) {
			return i, h
		}
	}
	return -1, h
}

// Len returns the number of keys.
func (m *Map[V]) Len() int { return len(m.keys) }

// Get returns the value stored under k.
func (m *Map[V]) Get(k value.Value) (V, bool) {
	i, _ := m.find(k)
	if i < 0 {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Map[V]) Has(k value.Value) bool {
	i, _ := m.find(k)
	return i >= 0
}

// Set stores v under k. A new key is appended to the iteration order; an
// existing key keeps its position.
func (m *Map[V]) Set(k value.Value, v V) {
	m.Update(k, func(V, bool) V { return v })
}

// Update replaces the value under k with fn(old, found). It returns the
// insertion position of k.
func (m *Map[V]) Update(k value.Value, fn func(old V, found bool) V) int {
	i, h := m.find(k)
	if i >= 0 {
		m.vals[i] = fn(m.vals[i], true)
		return i
	}
	var zero V
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, fn(zero, false))
	i = len(m.keys) - 1
	m.buckets[h] = append(m.buckets[h], i)
	return i
}

// Keys returns the keys in insertion order.
func (m *Map[V]) Keys() []value.Value {
	out := make([]value.Value, len(m.keys))
	copy(out, m.keys)
	return out
}

// At returns the i-th entry in insertion order.
func (m *Map[V]) At(i int) (value.Value, V) { return m.keys[i], m.vals[i] }

// All yields entries in insertion order.
func (m *Map[V]) All() iter.Seq2[value.Value, V] {
	return func(yield func(value.Value, V) bool) {
		for i := range m.keys {
			if !yield(m.keys[i], m.vals[i]) {
				return
			}
		}
	}
}
