package tree

import "reflect"

// IsLeaf reports whether v is an atomic leaf value: booleans, numbers,
// strings (including string-kinded enum types), byte sequences, and nil.
// Containers and entity instances are not leaves.
func IsLeaf(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case Tuple, *List, *Set, *FrozenSet, *Map, *FrozenMap:
		return false
	}
	rt := reflect.TypeOf(v)
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Slice:
		// []byte and named byte-sequence types
		return rt.Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}
