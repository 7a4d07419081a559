package visitor

import (
	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/debug"
	"github.com/eth-cscs/eve-toolchain/tree"
)

// VisitFunc handles one node during a read-only walk. Its return value is
// forwarded by Visit; the generic walk discards recursive results.
type VisitFunc func(v *Visitor, node any, env Env) (any, error)

// Visitor walks a tree without changing it. Handlers that need to recurse
// call Generic (or Visit on selected children) themselves.
type Visitor struct {
	handlers map[*datamodel.EntityType]VisitFunc
}

func NewVisitor() *Visitor {
	return &Visitor{handlers: map[*datamodel.EntityType]VisitFunc{}}
}

// Handle registers fn for nodes of type et and entities derived from it.
func (v *Visitor) Handle(et *datamodel.EntityType, fn VisitFunc) *Visitor {
	v.handlers[et] = fn
	return v
}

// Visit dispatches to the most specific handler, falling back to the
// generic structural walk.
func (v *Visitor) Visit(node any, env Env) (any, error) {
	if debug.Visit() {
		debug.Logf("visit %T\n", node)
	}
	if fn, ok := lookupHandler(v.handlers, node); ok {
		return fn(v, node, env)
	}
	return v.Generic(node, env)
}

// Generic recurses into entity children in declared order, sequence
// elements by index, set elements in snapshot order, and mapping values in
// key order. Leaves (including strings and byte sequences) are not
// decomposed.
func (v *Visitor) Generic(node any, env Env) (any, error) {
	switch n := node.(type) {
	case *datamodel.Instance:
		for _, c := range n.Children() {
			if _, err := v.Visit(c.Value, env); err != nil {
				return nil, err
			}
		}
	case tree.Tuple:
		for _, e := range n {
			if _, err := v.Visit(e, env); err != nil {
				return nil, err
			}
		}
	case *tree.List:
		for _, e := range n.Elems() {
			if _, err := v.Visit(e, env); err != nil {
				return nil, err
			}
		}
	case *tree.Set:
		for _, e := range n.Elems() {
			if _, err := v.Visit(e, env); err != nil {
				return nil, err
			}
		}
	case *tree.FrozenSet:
		for _, e := range n.Elems() {
			if _, err := v.Visit(e, env); err != nil {
				return nil, err
			}
		}
	case *tree.Map:
		for _, kv := range n.Entries() {
			if _, err := v.Visit(kv.Val, env); err != nil {
				return nil, err
			}
		}
	case *tree.FrozenMap:
		for _, kv := range n.Entries() {
			if _, err := v.Visit(kv.Val, env); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}
