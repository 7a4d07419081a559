package visitor

import (
	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

// TranslateFunc handles one node during a copy-based transform.
type TranslateFunc func(t *Translator, node any, env Env) (Result, error)

// Translator produces a new tree bottom-up, never mutating the original.
// Entity nodes are rebuilt from their unchanged attributes plus the visited
// children, containers are rebuilt same-class; removed values are omitted
// from the rebuilt parent. Everything else is deep-copied with an
// identity-keyed memo, so shared references stay shared in the copy.
type Translator struct {
	handlers map[*datamodel.EntityType]TranslateFunc
	memo     map[any]any
}

func NewTranslator() *Translator {
	return &Translator{
		handlers: map[*datamodel.EntityType]TranslateFunc{},
		memo:     map[any]any{},
	}
}

// Handle registers fn for nodes of type et and entities derived from it.
func (t *Translator) Handle(et *datamodel.EntityType, fn TranslateFunc) *Translator {
	t.handlers[et] = fn
	return t
}

// Translate builds the transformed copy of root. ok is false when the root
// itself was removed.
func (t *Translator) Translate(root any, env Env) (out any, ok bool, err error) {
	return t.Visit(root, env)
}

// Copy deep-copies v using the translator's memo: shared or cyclic
// references already copied during this translation are re-shared.
func (t *Translator) Copy(v any) (any, error) {
	return deepCopy(v, t.memo)
}

// Visit dispatches one value; transform handlers recurse through it.
func (t *Translator) Visit(node any, env Env) (any, bool, error) {
	if fn, ok := lookupHandler(t.handlers, node); ok {
		r, err := fn(t, node, env)
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
	return t.Generic(node, env)
}

// Generic rebuilds the value structurally from the visited children.
func (t *Translator) Generic(node any, env Env) (any, bool, error) {
	switch n := node.(type) {
	case *datamodel.Instance:
		kids := n.Children()
		newKids := make([]tree.Named, 0, len(kids))
		for _, c := range kids {
			nv, kept, err := t.Visit(c.Value, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				newKids = append(newKids, tree.Named{Name: c.Name, Value: nv})
			}
		}
		ni, err := n.Rebuild(newKids)
		if err != nil {
			return nil, false, err
		}
		return ni, true, nil

	case tree.Tuple:
		out := make(tree.Tuple, 0, len(n))
		for _, e := range n {
			nv, kept, err := t.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				out = append(out, nv)
			}
		}
		return out, true, nil

	case *tree.List:
		out := tree.NewList()
		for _, e := range n.Elems() {
			nv, kept, err := t.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				out.Append(nv)
			}
		}
		return out, true, nil

	case *tree.Set:
		out := tree.NewSet()
		for _, e := range n.Elems() {
			nv, kept, err := t.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				out.Add(nv)
			}
		}
		return out, true, nil

	case *tree.FrozenSet:
		elems := make([]any, 0, n.Len())
		for _, e := range n.Elems() {
			nv, kept, err := t.Visit(e, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				elems = append(elems, nv)
			}
		}
		return tree.NewFrozenSet(elems...), true, nil

	case *tree.Map:
		out := tree.NewMap()
		for _, kv := range n.Entries() {
			nv, kept, err := t.Visit(kv.Val, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				out.Set(kv.Key, nv)
			}
		}
		return out, true, nil

	case *tree.FrozenMap:
		entries := make([]tree.KeyVal, 0, n.Len())
		for _, kv := range n.Entries() {
			nv, kept, err := t.Visit(kv.Val, env)
			if err != nil {
				return nil, false, err
			}
			if kept {
				entries = append(entries, tree.KeyVal{Key: kv.Key, Val: nv})
			}
		}
		return tree.NewFrozenMap(entries...), true, nil

	default:
		out, err := deepCopy(node, t.memo)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
}
