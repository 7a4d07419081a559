package tree

import "fmt"

// Named is a (name, value) pair: an entity child or attribute.
type Named struct {
	Name  string
	Value any
}

// KeyVal is a mapping entry.
type KeyVal struct {
	Key any
	Val any
}

// Tuple is an immutable sequence. Code holding a Tuple must not mutate it;
// the traversal engines rebuild tuples instead of editing them.
type Tuple []any

// NewTuple copies vals into a fresh Tuple.
func NewTuple(vals ...any) Tuple {
	t := make(Tuple, len(vals))
	copy(t, vals)
	return t
}

// List is a mutable sequence.
type List struct {
	elems []any
}

func NewList(vals ...any) *List {
	l := &List{elems: make([]any, len(vals))}
	copy(l.elems, vals)
	return l
}

func (l *List) Len() int           { return len(l.elems) }
func (l *List) At(i int) any       { return l.elems[i] }
func (l *List) Append(v any)       { l.elems = append(l.elems, v) }
func (l *List) SetAt(i int, v any) { l.elems[i] = v }

func (l *List) RemoveAt(i int) {
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
}

// Elems returns a snapshot copy of the elements.
func (l *List) Elems() []any {
	out := make([]any, len(l.elems))
	copy(out, l.elems)
	return out
}

// Set is a mutable set preserving insertion order. Members must be
// comparable (leaves, entity instances, pointer containers).
type Set struct {
	keys []any
	has  map[any]struct{}
}

func NewSet(vals ...any) *Set {
	s := &Set{has: make(map[any]struct{}, len(vals))}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (s *Set) Len() int { return len(s.keys) }

func (s *Set) Has(v any) bool {
	_, ok := s.has[v]
	return ok
}

func (s *Set) Add(v any) {
	if _, ok := s.has[v]; ok {
		return
	}
	s.has[v] = struct{}{}
	s.keys = append(s.keys, v)
}

func (s *Set) Remove(v any) bool {
	if _, ok := s.has[v]; !ok {
		return false
	}
	delete(s.has, v)
	for i, k := range s.keys {
		if k == v {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

// Elems returns a snapshot of the members in insertion order.
func (s *Set) Elems() []any {
	out := make([]any, len(s.keys))
	copy(out, s.keys)
	return out
}

// FrozenSet is an immutable set.
type FrozenSet struct {
	set Set
}

func NewFrozenSet(vals ...any) *FrozenSet {
	fs := &FrozenSet{set: Set{has: make(map[any]struct{}, len(vals))}}
	for _, v := range vals {
		fs.set.Add(v)
	}
	return fs
}

func (s *FrozenSet) Len() int       { return s.set.Len() }
func (s *FrozenSet) Has(v any) bool { return s.set.Has(v) }
func (s *FrozenSet) Elems() []any   { return s.set.Elems() }

// Map is a mutable mapping preserving insertion order. Keys must be
// comparable.
type Map struct {
	keys []any
	vals map[any]any
}

func NewMap(entries ...KeyVal) *Map {
	m := &Map{vals: make(map[any]any, len(entries))}
	for _, kv := range entries {
		m.Set(kv.Key, kv.Val)
	}
	return m
}

func (m *Map) Len() int { return len(m.keys) }

func (m *Map) Get(k any) (any, bool) {
	v, ok := m.vals[k]
	return v, ok
}

func (m *Map) Set(k, v any) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

func (m *Map) Delete(k any) bool {
	if _, ok := m.vals[k]; !ok {
		return false
	}
	delete(m.vals, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns a snapshot of the keys in insertion order.
func (m *Map) Keys() []any {
	out := make([]any, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns a snapshot of the entries in key insertion order.
func (m *Map) Entries() []KeyVal {
	out := make([]KeyVal, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, KeyVal{Key: k, Val: m.vals[k]})
	}
	return out
}

// FrozenMap is an immutable mapping.
type FrozenMap struct {
	m Map
}

func NewFrozenMap(entries ...KeyVal) *FrozenMap {
	fm := &FrozenMap{m: Map{vals: make(map[any]any, len(entries))}}
	for _, kv := range entries {
		fm.m.Set(kv.Key, kv.Val)
	}
	return fm
}

func (m *FrozenMap) Len() int              { return m.m.Len() }
func (m *FrozenMap) Get(k any) (any, bool) { return m.m.Get(k) }
func (m *FrozenMap) Keys() []any           { return m.m.Keys() }
func (m *FrozenMap) Entries() []KeyVal     { return m.m.Entries() }

func (l *List) String() string      { return fmt.Sprintf("List%v", l.elems) }
func (s *Set) String() string       { return fmt.Sprintf("Set%v", s.keys) }
func (s *FrozenSet) String() string { return fmt.Sprintf("FrozenSet%v", s.set.keys) }
func (m *Map) String() string       { return fmt.Sprintf("Map%v", m.Entries()) }
func (m *FrozenMap) String() string { return fmt.Sprintf("FrozenMap%v", m.Entries()) }
