package orderedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_InsertionOrder(t *testing.T) {
	m := New[string, int]()
	assert.True(t, m.Set("c", 3))
	assert.True(t, m.Set("a", 1))
	assert.True(t, m.Set("b", 2))
	assert.False(t, m.Set("a", 10), "re-setting a key is not an insertion")

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
	assert.Equal(t, []int{3, 10, 2}, m.Values())
	assert.Equal(t, 3, m.Len())

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.True(t, m.Has("b"))
	assert.False(t, m.Has("z"))
}

func TestMap_IterationStopsEarly(t *testing.T) {
	m := New[int, string]()
	for i := range 5 {
		m.Set(i, "v")
	}

	var seen []int
	m.Each(func(k int, _ string) bool {
		seen = append(seen, k)
		return k < 2
	})
	assert.Equal(t, []int{0, 1, 2}, seen)

	seen = seen[:0]
	for k := range m.All() {
		seen = append(seen, k)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestMap_ZeroValueUsable(t *testing.T) {
	var m Map[string, bool]
	m.Set("x", true)
	assert.Equal(t, 1, m.Len())
}
