// Package tree defines the value model shared by the datamodel and the
// traversal engines: the closed set of container classes a tree may hold,
// leaf classification, and structural equality.
//
// A tree value is one of:
//   - a leaf: bool, any integer/float/complex kind, string, []byte, an
//     enumerated constant (a named leaf-kinded type), or nil
//   - a container: Tuple, *List, *Set, *FrozenSet, *Map or *FrozenMap
//   - an entity instance (defined by the datamodel package)
//
// Strings and byte slices are leaves, never element containers.
package tree
