package visitor

import (
	"errors"
	"testing"

	"github.com/eth-cscs/eve-toolchain/datamodel"
	"github.com/eth-cscs/eve-toolchain/tree"
)

func TestTranslateIdentity(t *testing.T) {
	root := block(
		add(lit(1), lit(2)),
		neg(lit(3)),
	)

	out, ok, err := NewTranslator().Translate(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("root unexpectedly removed")
	}
	if !tree.Equal(out, root) {
		t.Fatalf("translated tree differs:\n got %v\nwant %v", out, root)
	}
	if out == any(root) {
		t.Fatal("translation returned the original root instead of a copy")
	}
	// Containers are rebuilt too.
	origList := root.MustGet("stmts").(*tree.List)
	newList := out.(*datamodel.Instance).MustGet("stmts").(*tree.List)
	if origList == newList {
		t.Fatal("translated tree shares the original list")
	}
}

func TestTranslateReplace(t *testing.T) {
	tr := NewTranslator()
	tr.Handle(litT, func(tr *Translator, node any, _ Env) (Result, error) {
		v := node.(*datamodel.Instance).MustGet("value").(int)
		return Replace(lit(2 * v)), nil
	})

	out, ok, err := tr.Translate(add(lit(1), lit(2)), nil)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	oi := out.(*datamodel.Instance)
	if got := oi.MustGet("lhs").(*datamodel.Instance).MustGet("value"); got != 2 {
		t.Fatalf("lhs = %v, want 2", got)
	}
	if got := oi.MustGet("rhs").(*datamodel.Instance).MustGet("value"); got != 4 {
		t.Fatalf("rhs = %v, want 4", got)
	}
}

func TestTranslateRemoveFromList(t *testing.T) {
	var visited []int
	tr := NewTranslator()
	tr.Handle(litT, func(_ *Translator, node any, _ Env) (Result, error) {
		v := node.(*datamodel.Instance).MustGet("value").(int)
		visited = append(visited, v)
		if v%2 == 0 {
			return Remove(), nil
		}
		return Keep(), nil
	})

	out, ok, err := tr.Translate(block(lit(1), lit(2), lit(3), lit(4)), nil)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	// Every sibling after a removal is still visited exactly once.
	if len(visited) != 4 {
		t.Fatalf("visited %v, want all four literals", visited)
	}
	stmts := out.(*datamodel.Instance).MustGet("stmts").(*tree.List)
	if stmts.Len() != 2 {
		t.Fatalf("kept %d statements, want 2", stmts.Len())
	}
	for i, want := range []int{1, 3} {
		if got := stmts.At(i).(*datamodel.Instance).MustGet("value"); got != want {
			t.Fatalf("stmts[%d] = %v, want %d", i, got, want)
		}
	}
}

func TestTranslateRemoveRequiredChild(t *testing.T) {
	tr := NewTranslator()
	tr.Handle(litT, func(_ *Translator, _ any, _ Env) (Result, error) {
		return Remove(), nil
	})

	// Dropping a required entity child makes the parent rebuild fail.
	_, _, err := tr.Translate(neg(lit(1)), nil)
	if !errors.Is(err, datamodel.ErrConstruct) {
		t.Fatalf("err = %v, want construction failure", err)
	}
}

func TestTranslateRemoveRoot(t *testing.T) {
	tr := NewTranslator()
	tr.Handle(litT, func(_ *Translator, _ any, _ Env) (Result, error) {
		return Remove(), nil
	})

	_, ok, err := tr.Translate(lit(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("ok = true, want false for a removed root")
	}
}

func TestTranslateKeepsAttributes(t *testing.T) {
	root := blockT.MustNew(datamodel.Fields{
		"stmts": tree.NewList(lit(1)),
		"label": "entry",
	})
	out, _, err := NewTranslator().Translate(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(*datamodel.Instance).MustGet("label"); got != "entry" {
		t.Fatalf("label = %v, want entry", got)
	}
}

func TestTranslatorOriginalUntouched(t *testing.T) {
	root := block(lit(1), lit(2))
	tr := NewTranslator()
	tr.Handle(litT, func(_ *Translator, _ any, _ Env) (Result, error) {
		return Remove(), nil
	})
	if _, _, err := tr.Translate(root, nil); err != nil {
		t.Fatal(err)
	}
	if got := root.MustGet("stmts").(*tree.List).Len(); got != 2 {
		t.Fatalf("original list length = %d, want 2", got)
	}
}

func TestTranslatorCopySharing(t *testing.T) {
	shared := tree.NewList(1, 2)
	outer := tree.NewList(shared, shared)

	tr := NewTranslator()
	out, err := tr.Copy(outer)
	if err != nil {
		t.Fatal(err)
	}
	ol := out.(*tree.List)
	if ol == outer {
		t.Fatal("copy returned the original")
	}
	if ol.At(0) != ol.At(1) {
		t.Fatal("shared element copied twice")
	}
	if ol.At(0) == any(shared) {
		t.Fatal("copy shares the original element")
	}
}

func TestTranslatorCopyCycle(t *testing.T) {
	l := tree.NewList(1)
	l.Append(l) // self reference

	out, err := NewTranslator().Copy(l)
	if err != nil {
		t.Fatal(err)
	}
	ol := out.(*tree.List)
	if ol.At(1) != any(ol) {
		t.Fatal("cycle not preserved in the copy")
	}
	if ol == l {
		t.Fatal("copy returned the original")
	}
}
