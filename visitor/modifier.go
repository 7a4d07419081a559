package visitor

import (
	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

// ModifyFunc handles one node during an in-place transform.
type ModifyFunc func(m *Modifier, node any, env Env) (Result, error)

// Modifier transforms a tree in place where the structure is mutable:
// entity child slots are reassigned or cleared, mutable sequences are
// edited with an index shift so a removal never skips the following
// element, mutable sets are edited against a stable snapshot of their
// original elements, and mutable mappings by key. Immutable containers and
// frozen entities fall back to a copy-based rebuild. A result structurally
// equal to its pre-visit value is not rewritten.
type Modifier struct {
	handlers map[*datamodel.EntityType]ModifyFunc
}

func NewModifier() *Modifier {
	return &Modifier{handlers: map[*datamodel.EntityType]ModifyFunc{}}
}

// Handle registers fn for nodes of type et and entities derived from it.
func (m *Modifier) Handle(et *datamodel.EntityType, fn ModifyFunc) *Modifier {
	m.handlers[et] = fn
	return m
}

// Modify transforms root. ok is false when the root itself was removed.
// The returned value is the original root unless an immutable node forced a
// rebuild or a handler replaced it.
func (m *Modifier) Modify(root any, env Env) (out any, ok bool, err error) {
	return m.Visit(root, env)
}

// Visit dispatches one value; transform handlers recurse through it.
func (m *Modifier) Visit(node any, env Env) (any, bool, error) {
	if fn, ok := lookupHandler(m.handlers, node); ok {
		r, err := fn(m, node, env)
		if err != nil {
			return nil, false, err
		}
		switch r.op {
		case opReplace:
			return r.value, true, nil
		case opRemove:
			return nil, false, nil
		}
	}
	return m.Generic(node, env)
}

// Generic applies the in-place structural transform.
func (m *Modifier) Generic(node any, env Env) (any, bool, error) {
	switch n := node.(type) {
	case *datamodel.Instance:
		if n.Type().Frozen() {
			return m.rebuildInstance(n, env)
		}
		for _, c := range n.Children() {
			nv, kept, err := m.Visit(c.Value, env)
			if err != nil {
				return nil, false, err
			}
			switch {
			case !kept:
				if err := n.Remove(c.Name); err != nil {
					return nil, false, err
				}
			case !tree.Equal(nv, c.Value):
				if err := n.Assign(c.Name, nv); err != nil {
					return nil, false, err
				}
			}
		}
		return n, true, nil

	case *tree.List:
		elems := n.Elems()
		shift := 0
		for i, old := range elems {
			nv, kept, err := m.Visit(old, env)
			if err != nil {
				return nil, false, err
			}
			switch {
			case !kept:
				n.RemoveAt(i - shift)
				shift++
			case !tree.Equal(nv, old):
				n.SetAt(i-shift, nv)
			}
		}
		return n, true, nil

	case *tree.Set:
		// Stable snapshot of the original elements: mutation mid-pass never
		// reorders or re-visits.
		for _, old := range n.Elems() {
			nv, kept, err := m.Visit(old, env)
			if err != nil {
				return nil, false, err
			}
			switch {
			case !kept:
				n.Remove(old)
			case !tree.Equal(nv, old):
				n.Remove(old)
				n.Add(nv)
			}
		}
		return n, true, nil

	case *tree.Map:
		for _, kv := range n.Entries() {
			nv, kept, err := m.Visit(kv.Val, env)
			if err != nil {
				return nil, false, err
			}
			switch {
			case !kept:
				n.Delete(kv.Key)
			case !tree.Equal(nv, kv.Val):
				n.Set(kv.Key, nv)
			}
		}
		return n, true, nil

	case tree.Tuple:
		out := make(tree.Tuple, 0, len(n))
		for _, e := range n {
			nv, kept, err := m.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				out = append(out, nv)
			}
		}
		return out, true, nil

	case *tree.FrozenSet:
		elems := make([]any, 0, n.Len())
		for _, e := range n.Elems() {
			nv, kept, err := m.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				elems = append(elems, nv)
			}
		}
		return tree.NewFrozenSet(elems...), true, nil

	case *tree.FrozenMap:
		entries := make([]tree.KeyVal, 0, n.Len())
		for _, kv := range n.Entries() {
			nv, kept, err := m.Visit(kv.Val, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				entries = append(entries, tree.KeyVal{Key: kv.Key, Val: nv})
			}
		}
		return tree.NewFrozenMap(entries...), true, nil

	default:
		return node, true, nil
	}
}

// rebuildInstance is the fallback for frozen entities, where in-place
// mutation is impossible.
func (m *Modifier) rebuildInstance(n *datamodel.Instance, env Env) (any, bool, error) {
	kids := n.Children()
	newKids := make([]tree.Named, 0, len(kids))
	changed := false
	for _, c := range kids {
		nv, kept, err := m.Visit(c.Value, env)
		if err != nil {
			return nil, false, err
		}
		if !kept {
			changed = true
			continue
		}
		if !tree.Equal(nv, c.Value) {
			changed = true
		}
		newKids = append(newKids, tree.Named{Name: c.Name, Value: nv})
	}
	if !changed {
		return n, true, nil
	}
	ni, err := n.Rebuild(newKids)
	if err != nil {
		return nil, false, err
	}
	return ni, true, nil
}
