package visitor

import (
	"errors"
	"testing"

	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

// Test node hierarchy: Expr is abstract, Lit carries an int, Neg wraps one
// operand, Add wraps two, Block holds a mutable list of expressions.
var (
	exprT = datamodel.NewBuilder("Expr").NonInstantiable().MustBuild()

	litT = func() *datamodel.EntityType {
		b := datamodel.NewBuilder("Lit").Extends(exprT)
		b.Field("value", datamodel.TypeOf[int]())
		return b.MustBuild()
	}()

	negT = func() *datamodel.EntityType {
		b := datamodel.NewBuilder("Neg").Extends(exprT)
		b.Field("operand", datamodel.EntityOf(exprT))
		return b.MustBuild()
	}()

	addT = func() *datamodel.EntityType {
		b := datamodel.NewBuilder("Add").Extends(exprT)
		b.Field("lhs", datamodel.EntityOf(exprT))
		b.Field("rhs", datamodel.EntityOf(exprT))
		return b.MustBuild()
	}()

	blockT = func() *datamodel.EntityType {
		b := datamodel.NewBuilder("Block").Extends(exprT)
		b.Field("stmts", datamodel.ListOf(datamodel.EntityOf(exprT)))
		b.Field("label", datamodel.TypeOf[string]()).Default("").Attribute()
		return b.MustBuild()
	}()
)

func lit(v int) *datamodel.Instance {
	return litT.MustNew(datamodel.Fields{"value": v})
}

func neg(op any) *datamodel.Instance {
	return negT.MustNew(datamodel.Fields{"operand": op})
}

func add(lhs, rhs any) *datamodel.Instance {
	return addT.MustNew(datamodel.Fields{"lhs": lhs, "rhs": rhs})
}

func block(stmts ...any) *datamodel.Instance {
	return blockT.MustNew(datamodel.Fields{"stmts": tree.NewList(stmts...)})
}

func TestVisitorDispatch(t *testing.T) {
	var seen []string
	v := NewVisitor()
	v.Handle(litT, func(v *Visitor, node any, env Env) (any, error) {
		seen = append(seen, "lit")
		return nil, nil
	})
	v.Handle(exprT, func(v *Visitor, node any, env Env) (any, error) {
		seen = append(seen, "expr")
		return v.Generic(node, env)
	})

	// add(lit(1), neg(lit(2))): Add and Neg fall back to the Expr handler,
	// Lit nodes take the more specific one.
	root := add(lit(1), neg(lit(2)))
	if _, err := v.Visit(root, nil); err != nil {
		t.Fatal(err)
	}
	want := []string{"expr", "lit", "expr", "lit"}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("got %v, want %v", seen, want)
		}
	}
}

func TestVisitorGenericRecursion(t *testing.T) {
	sum := 0
	v := NewVisitor()
	v.Handle(litT, func(_ *Visitor, node any, _ Env) (any, error) {
		sum += node.(*datamodel.Instance).MustGet("value").(int)
		return nil, nil
	})

	root := block(
		lit(1),
		add(lit(2), lit(3)),
		neg(lit(4)),
	)
	if _, err := v.Visit(root, nil); err != nil {
		t.Fatal(err)
	}
	if sum != 10 {
		t.Fatalf("sum = %d, want 10", sum)
	}
}

func TestVisitorContainers(t *testing.T) {
	count := 0
	v := NewVisitor()
	v.Handle(litT, func(_ *Visitor, _ any, _ Env) (any, error) {
		count++
		return nil, nil
	})

	val := tree.NewMap(
		tree.KeyVal{Key: "a", Val: tree.NewTuple(lit(1), lit(2))},
		tree.KeyVal{Key: "b", Val: tree.NewSet(lit(3))},
		tree.KeyVal{Key: "c", Val: tree.NewFrozenSet(lit(4))},
		tree.KeyVal{Key: "d", Val: tree.NewFrozenMap(tree.KeyVal{Key: 0, Val: lit(5)})},
	)
	if _, err := v.Visit(val, nil); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("visited %d literals, want 5", count)
	}
}

func TestVisitorLeavesNotDecomposed(t *testing.T) {
	visited := 0
	v := NewVisitor()
	v.Handle(exprT, func(_ *Visitor, _ any, _ Env) (any, error) {
		visited++
		return nil, nil
	})

	// Strings and byte slices are leaves: Generic does not descend into
	// them, and non-entity values never dispatch.
	if _, err := v.Visit("a string", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Visit([]byte("bytes"), nil); err != nil {
		t.Fatal(err)
	}
	if visited != 0 {
		t.Fatalf("visited = %d, want 0", visited)
	}
}

func TestVisitorErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	v := NewVisitor()
	v.Handle(litT, func(_ *Visitor, node any, _ Env) (any, error) {
		calls++
		if node.(*datamodel.Instance).MustGet("value").(int) == 2 {
			return nil, boom
		}
		return nil, nil
	})

	root := block(lit(1), lit(2), lit(3))
	_, err := v.Visit(root, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (walk stops at the failure)", calls)
	}
}

func TestVisitorEnvThreading(t *testing.T) {
	v := NewVisitor()
	v.Handle(litT, func(_ *Visitor, _ any, env Env) (any, error) {
		env["hits"] = env["hits"].(int) + 1
		return nil, nil
	})

	env := Env{"hits": 0}
	if _, err := v.Visit(block(lit(1), lit(2)), env); err != nil {
		t.Fatal(err)
	}
	if env["hits"] != 2 {
		t.Fatalf("hits = %v, want 2", env["hits"])
	}
}
