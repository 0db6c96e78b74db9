package enumopt

import (
	"slices"

	"golang.org/x/text/cases"
)

// Index is a read-only lookup table built once from a fixed set of values.
// When two values share a key the later one wins.
type Index[K comparable, V any] struct {
	m    map[K]V
	norm func(K) K
}

// NewIndex builds an Index keyed by key(v).
func NewIndex[K comparable, V any](values []V, key func(V) K) Index[K, V] {
	m := make(map[K]V, len(values))
	for _, v := range values {
		m[key(v)] = v
	}
	return Index[K, V]{m: m}
}

// NewKeyedIndex builds an Index pairing keys[i] with values[i]. It panics
// when the slices differ in length.
func NewKeyedIndex[K comparable, V any](keys []K, values []V) Index[K, V] {
	if len(keys) != len(values) {
		panic("enumopt: NewKeyedIndex: keys and values differ in length")
	}
	m := make(map[K]V, len(values))
	for i, v := range values {
		m[keys[i]] = v
	}
	return Index[K, V]{m: m}
}

// Select returns the values whose mask entry is set, in order. It panics
// when the slices differ in length.
func Select[V any](mask []bool, values []V) []V {
	if len(mask) != len(values) {
		panic("enumopt: Select: mask and values differ in length")
	}
	out := make([]V, 0, len(values))
	for i, v := range values {
		if mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// NewFoldedIndex builds a string Index whose keys compare under Unicode case
// folding instead of ordinal equality.
func NewFoldedIndex[V any](values []V, key func(V) string) Index[string, V] {
	m := make(map[string]V, len(values))
	for _, v := range values {
		m[FoldKey(key(v))] = v
	}
	return Index[string, V]{m: m, norm: FoldKey}
}

// Get returns the value stored under k.
func (x Index[K, V]) Get(k K) (V, bool) {
	if x.norm != nil {
		k = x.norm(k)
	}
	v, ok := x.m[k]
	return v, ok
}

// Len returns the number of distinct keys.
func (x Index[K, V]) Len() int {
	return len(x.m)
}

// MultiIndex is a read-only lookup table that keeps every value per key in
// insertion order.
type MultiIndex[K comparable, V any] struct {
	m    map[K][]V
	norm func(K) K
}

// NewMultiIndex builds a MultiIndex keyed by key(v).
func NewMultiIndex[K comparable, V any](values []V, key func(V) K) MultiIndex[K, V] {
	m := make(map[K][]V)
	for _, v := range values {
		k := key(v)
		m[k] = append(m[k], v)
	}
	return MultiIndex[K, V]{m: m}
}

// NewKeyedMultiIndex builds a MultiIndex pairing keys[i] with values[i].
// Values with a zero key are skipped.
func NewKeyedMultiIndex[K comparable, V any](keys []K, values []V) MultiIndex[K, V] {
	if len(keys) != len(values) {
		panic("enumopt: NewKeyedMultiIndex: keys and values differ in length")
	}
	var zero K
	m := make(map[K][]V)
	for i, v := range values {
		if keys[i] == zero {
			continue
		}
		m[keys[i]] = append(m[keys[i]], v)
	}
	return MultiIndex[K, V]{m: m}
}

// NewFoldedMultiIndex is NewMultiIndex with case-folded string keys.
func NewFoldedMultiIndex[V any](values []V, key func(V) string) MultiIndex[string, V] {
	m := make(map[string][]V)
	for _, v := range values {
		k := FoldKey(key(v))
		m[k] = append(m[k], v)
	}
	return MultiIndex[string, V]{m: m, norm: FoldKey}
}

// Get returns a copy of the values stored under k, or nil.
func (x MultiIndex[K, V]) Get(k K) []V {
	if x.norm != nil {
		k = x.norm(k)
	}
	return slices.Clone(x.m[k])
}

// Len returns the number of distinct keys.
func (x MultiIndex[K, V]) Len() int {
	return len(x.m)
}

// FoldKey returns the case-folded form of s.
func FoldKey(s string) string {
	// Casers keep state, so one is created per call.
	return cases.Fold().String(s)
}
