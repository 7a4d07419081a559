package tree

import "reflect"

// Equaler lets aggregate values outside this package (entity instances)
// take part in structural equality.
type Equaler interface {
	EqualValue(other any) bool
}

// Equal reports deep structural equality of two tree values. Sequences
// compare elementwise in order, sets and mappings compare order-insensitive,
// leaves compare by type and value.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(Equaler); ok {
		return eq.EqualValue(b)
	}
	switch av := a.(type) {
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && equalSeq(av, bv)
	case *List:
		bv, ok := b.(*List)
		return ok && equalSeq(av.elems, bv.elems)
	case *Set:
		bv, ok := b.(*Set)
		return ok && equalSets(&av.has, &bv.has)
	case *FrozenSet:
		bv, ok := b.(*FrozenSet)
		return ok && equalSets(&av.set.has, &bv.set.has)
	case *Map:
		bv, ok := b.(*Map)
		return ok && equalMaps(av.vals, bv.vals)
	case *FrozenMap:
		bv, ok := b.(*FrozenMap)
		return ok && equalMaps(av.m.vals, bv.m.vals)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func equalSeq(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSets(a, b *map[any]struct{}) bool {
	if len(*a) != len(*b) {
		return false
	}
	for k := range *a {
		if _, ok := (*b)[k]; !ok {
			return false
		}
	}
	return true
}

func equalMaps(a, b map[any]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}
