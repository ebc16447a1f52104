// Package orderedmap provides an insertion-ordered map.
package orderedmap

import "iter"

// Map keeps keys in the order they were first inserted. Setting an existing
// key replaces its value without moving it. Removal is not supported.
type Map[K comparable, V any] struct {
	keys  []K
	index map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]V)}
}

// Set stores v under k and reports whether k was newly inserted.
func (m *Map[K, V]) Set(k K, v V) bool {
	if m.index == nil {
		m.index = make(map[K]V)
	}
	_, exists := m.index[k]
	if !exists {
		m.keys = append(m.keys, k)
	}
	m.index[k] = v
	return !exists
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.index[k]
	return v, ok
}

func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.index[k]
	return ok
}

func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.index[k])
	}
	return out
}

// All iterates over the entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.index[k]) {
				return
			}
		}
	}
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *Map[K, V]) Each(fn func(k K, v V) bool) {
	for k, v := range m.All() {
		if !fn(k, v) {
			return
		}
	}
}
