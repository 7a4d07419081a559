package visitor

import (
	"reflect"

	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

type tupleKey struct {
	ptr uintptr
	n   int
}

// memoKey returns the identity key of an aggregate value, so shared or
// cyclic references are copied once and re-shared.
func memoKey(v any) (any, bool) {
	switch n := v.(type) {
	case *datamodel.Instance, *tree.List, *tree.Set, *tree.FrozenSet, *tree.Map, *tree.FrozenMap:
		return n, true
	case tree.Tuple:
		if cap(n) == 0 {
			return nil, false
		}
		return tupleKey{ptr: reflect.ValueOf(n).Pointer(), n: len(n)}, true
	default:
		return nil, false
	}
}

// deepCopy copies a tree value recursively. Mutable containers register in
// the memo before their elements are filled in, so back-references resolve
// to the copy under construction. Leaves and opaque values are shared.
func deepCopy(v any, memo map[any]any) (any, error) {
	if v == nil || tree.IsLeaf(v) {
		return v, nil
	}
	key, hasKey := memoKey(v)
	if hasKey {
		if c, ok := memo[key]; ok {
			return c, nil
		}
	}
	switch n := v.(type) {
	case *datamodel.Instance:
		kids := n.Children()
		newKids := make([]tree.Named, len(kids))
		for i, c := range kids {
			cv, err := deepCopy(c.Value, memo)
			if err != nil {
				return nil, err
			}
			newKids[i] = tree.Named{Name: c.Name, Value: cv}
		}
		ni, err := n.Rebuild(newKids)
		if err != nil {
			return nil, err
		}
		memo[key] = ni
		return ni, nil

	case tree.Tuple:
		nt := make(tree.Tuple, len(n))
		if hasKey {
			memo[key] = nt
		}
		for i, e := range n {
			ce, err := deepCopy(e, memo)
			if err != nil {
				return nil, err
			}
			nt[i] = ce
		}
		return nt, nil

	case *tree.List:
		nl := tree.NewList()
		memo[key] = nl
		for _, e := range n.Elems() {
			ce, err := deepCopy(e, memo)
			if err != nil {
				return nil, err
			}
			nl.Append(ce)
		}
		return nl, nil

	case *tree.Set:
		ns := tree.NewSet()
		memo[key] = ns
		for _, e := range n.Elems() {
			ce, err := deepCopy(e, memo)
			if err != nil {
				return nil, err
			}
			ns.Add(ce)
		}
		return ns, nil

	case *tree.FrozenSet:
		elems := n.Elems()
		out := make([]any, len(elems))
		for i, e := range elems {
			ce, err := deepCopy(e, memo)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		ns := tree.NewFrozenSet(out...)
		memo[key] = ns
		return ns, nil

	case *tree.Map:
		nm := tree.NewMap()
		memo[key] = nm
		for _, kv := range n.Entries() {
			cv, err := deepCopy(kv.Val, memo)
			if err != nil {
				return nil, err
			}
			nm.Set(kv.Key, cv)
		}
		return nm, nil

	case *tree.FrozenMap:
		entries := n.Entries()
		out := make([]tree.KeyVal, len(entries))
		for i, kv := range entries {
			cv, err := deepCopy(kv.Val, memo)
			if err != nil {
				return nil, err
			}
			out[i] = tree.KeyVal{Key: kv.Key, Val: cv}
		}
		nm := tree.NewFrozenMap(out...)
		memo[key] = nm
		return nm, nil

	default:
		// Opaque values are shared verbatim.
		return v, nil
	}
}
