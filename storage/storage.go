// Package storage provides the dense table that backs every component
// partition in a world. One table holds the values of a single component type
// for every entity that carries it.
//
// The table keeps its keys in a dense slice alongside a sparse index map.
// Removal swaps the last key into the vacated slot, so every operation is
// O(1) and iteration order, while unspecified, is fully determined by the
// sequence of operations applied to the table.
package storage

import (
	"github.com/rotisserie/eris"
)

var (
	ErrKeyAlreadyExists = eris.New("key already exists in table")
	ErrKeyNotFound      = eris.New("key not found in table")
)

// Table is a dense mapping from K to V.
//
// The zero value is not usable; create tables with NewTable.
type Table[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{
		keys:   nil,
		values: nil,
		index:  map[K]int{},
	}
}

// Insert adds a value under a key that must not already be present.
func (t *Table[K, V]) Insert(key K, value V) error {
	if _, ok := t.index[key]; ok {
		return ErrKeyAlreadyExists
	}
	t.index[key] = len(t.keys)
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
	return nil
}

// Replace overwrites the value under a key that must already be present and
// returns the prior value.
func (t *Table[K, V]) Replace(key K, value V) (V, error) {
	i, ok := t.index[key]
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	prior := t.values[i]
	t.values[i] = value
	return prior, nil
}

// Upsert stores a value under a key, inserting or overwriting as needed, and
// returns the prior value if one was present.
func (t *Table[K, V]) Upsert(key K, value V) (V, bool) {
	if i, ok := t.index[key]; ok {
		prior := t.values[i]
		t.values[i] = value
		return prior, true
	}
	_ = t.Insert(key, value)
	var zero V
	return zero, false
}

// Remove deletes the entry under a key that must be present and returns the
// removed value. The last key is swapped into the vacated slot.
func (t *Table[K, V]) Remove(key K) (V, error) {
	i, ok := t.index[key]
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	removed := t.values[i]
	last := len(t.keys) - 1
	if i != last {
		t.keys[i] = t.keys[last]
		t.values[i] = t.values[last]
		t.index[t.keys[i]] = i
	}
	var zero V
	t.values[last] = zero
	t.keys = t.keys[:last]
	t.values = t.values[:last]
	delete(t.index, key)
	return removed, nil
}

// Discard deletes the entry under key if present. Used by the world when
// purging a despawned entity from every table.
func (t *Table[K, V]) Discard(key K) {
	if t.Contains(key) {
		_, _ = t.Remove(key)
	}
}

func (t *Table[K, V]) Get(key K) (V, bool) {
	i, ok := t.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return t.values[i], true
}

func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.index[key]
	return ok
}

func (t *Table[K, V]) Len() int {
	return len(t.keys)
}

// Keys returns the dense key slice. The slice is owned by the table and must
// be treated as read-only; it is valid until the next mutation.
func (t *Table[K, V]) Keys() []K {
	return t.keys
}

// GetAny returns the value under key boxed as any, for type-erased callers.
func (t *Table[K, V]) GetAny(key K) (any, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	return v, true
}

func (t *Table[K, V]) Clear() {
	t.keys = nil
	t.values = nil
	t.index = map[K]int{}
}
