package visitor

import (
	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

// PathKind classifies how a value hangs off its ancestor.
type PathKind int

const (
	// PathField: a named child of an entity instance.
	PathField PathKind = iota
	// PathElement: a positional or keyed member of a container.
	PathElement
)

// PathItem is one ancestry frame: the ancestor, the kind of membership, and
// the member identifier (field name, index or mapping key).
type PathItem struct {
	Node   any
	Kind   PathKind
	Member any
}

// Path is an immutable record of the ancestors of the node being visited.
// Appending copies, so sibling subtrees never observe each other's frames.
type Path struct {
	items []PathItem
}

func (p Path) Len() int     { return len(p.items) }
func (p Path) IsRoot() bool { return len(p.items) == 0 }

// Items returns a copy of the frames, outermost ancestor first.
func (p Path) Items() []PathItem {
	out := make([]PathItem, len(p.items))
	copy(out, p.items)
	return out
}

// Last returns the innermost frame, the direct parent of the visited node.
func (p Path) Last() (PathItem, bool) {
	if len(p.items) == 0 {
		return PathItem{}, false
	}
	return p.items[len(p.items)-1], true
}

func (p Path) push(it PathItem) Path {
	items := make([]PathItem, len(p.items)+1)
	copy(items, p.items)
	items[len(p.items)] = it
	return Path{items: items}
}

// PathVisitFunc handles one node during a path-tracking read-only walk.
type PathVisitFunc func(v *PathVisitor, node any, path Path, env Env) (any, error)

// PathVisitor is the read-only walk threading an ancestry record: each
// recursive call appends exactly one frame.
type PathVisitor struct {
	handlers map[*datamodel.EntityType]PathVisitFunc
}

func NewPathVisitor() *PathVisitor {
	return &PathVisitor{handlers: map[*datamodel.EntityType]PathVisitFunc{}}
}

// Handle registers fn for nodes of type et and entities derived from it.
func (v *PathVisitor) Handle(et *datamodel.EntityType, fn PathVisitFunc) *PathVisitor {
	v.handlers[et] = fn
	return v
}

// Visit dispatches like Visitor.Visit; the root is visited with the empty
// path.
func (v *PathVisitor) Visit(node any, path Path, env Env) (any, error) {
	if fn, ok := lookupHandler(v.handlers, node); ok {
		return fn(v, node, path, env)
	}
	return v.Generic(node, path, env)
}

// Generic recurses like Visitor.Generic, appending one frame per descent.
func (v *PathVisitor) Generic(node any, path Path, env Env) (any, error) {
	switch n := node.(type) {
	case *datamodel.Instance:
		for _, c := range n.Children() {
			frame := PathItem{Node: n, Kind: PathField, Member: c.Name}
			if _, err := v.Visit(c.Value, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case tree.Tuple:
		for i, e := range n {
			frame := PathItem{Node: n, Kind: PathElement, Member: i}
			if _, err := v.Visit(e, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case *tree.List:
		for i, e := range n.Elems() {
			frame := PathItem{Node: n, Kind: PathElement, Member: i}
			if _, err := v.Visit(e, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case *tree.Set:
		for i, e := range n.Elems() {
			frame := PathItem{Node: n, Kind: PathElement, Member: i}
			if _, err := v.Visit(e, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case *tree.FrozenSet:
		for i, e := range n.Elems() {
			frame := PathItem{Node: n, Kind: PathElement, Member: i}
			if _, err := v.Visit(e, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case *tree.Map:
		for _, kv := range n.Entries() {
			frame := PathItem{Node: n, Kind: PathElement, Member: kv.Key}
			if _, err := v.Visit(kv.Val, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	case *tree.FrozenMap:
		for _, kv := range n.Entries() {
			frame := PathItem{Node: n, Kind: PathElement, Member: kv.Key}
			if _, err := v.Visit(kv.Val, path.push(frame), env); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}
