package datamodel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eth-cscs/eve-toolchain/tree"
)

func pairEntity(t *testing.T) (*EntityType, *TypeVarSpec, *TypeVarSpec) {
	t.Helper()
	tl := NewTypeVar("L")
	tr := NewTypeVar("R")
	b := NewBuilder("Pair")
	b.Field("left", tl)
	b.Field("right", tr)
	b.TypeParams(tl, tr)
	et, err := b.Build()
	require.NoError(t, err)
	return et, tl, tr
}

func TestSpecializeIdentity(t *testing.T) {
	pair, _, _ := pairEntity(t)

	a := MustSpecialize(pair, TypeOf[int](), TypeOf[string]())
	c := MustSpecialize(pair, TypeOf[int](), TypeOf[string]())
	assert.Same(t, a, c, "same arguments reuse the cached entity type")

	d := MustSpecialize(pair, TypeOf[string](), TypeOf[int]())
	assert.NotSame(t, a, d)

	assert.Equal(t, "Pair__int_string", a.Name())
	assert.False(t, a.IsGeneric())
	assert.True(t, pair.IsGeneric())

	base, args := a.GenericOrigin()
	assert.Same(t, pair, base)
	require.Len(t, args, 2)
}

func TestSpecializeErrors(t *testing.T) {
	pair, _, _ := pairEntity(t)

	_, err := Specialize(pair, TypeOf[int]())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDefinition)
	assert.Contains(t, err.Error(), "(1 used, 2 expected)")

	_, err = Specialize(pair, TypeOf[int](), Literal(1))
	assert.ErrorIs(t, err, ErrDefinition)

	plain := NewBuilder("Plain").MustBuild()
	_, err = Specialize(plain, TypeOf[int]())
	assert.ErrorIs(t, err, ErrDefinition)
}

func TestGenericConstructionBlocked(t *testing.T) {
	pair, _, _ := pairEntity(t)

	_, err := pair.New(Fields{"left": 1, "right": "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstruct)

	spec := MustSpecialize(pair, TypeOf[int](), TypeOf[string]())
	inst, err := spec.New(Fields{"left": 1, "right": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, inst.MustGet("left"))

	_, err = spec.New(Fields{"left": "1", "right": "a"})
	assert.ErrorIs(t, err, ErrType)

	// Instances of the specialization are subtypes of the generic.
	assert.True(t, inst.Is(pair))
}

func TestPartialSpecialization(t *testing.T) {
	pair, _, _ := pairEntity(t)
	u := NewTypeVar("U")

	half := MustSpecialize(pair, TypeOf[int](), u)
	assert.True(t, half.IsGeneric())

	_, err := half.New(Fields{"left": 1, "right": "a"})
	assert.ErrorIs(t, err, ErrConstruct)

	full := MustSpecialize(half, TypeOf[string]())
	assert.False(t, full.IsGeneric())
	_, err = full.New(Fields{"left": 1, "right": "a"})
	assert.NoError(t, err)
}

func TestBoundedTypeParam(t *testing.T) {
	n := NewBoundTypeVar("N", TypeOf[int]())
	b := NewBuilder("Box")
	b.Field("value", n)
	b.TypeParams(n)
	box := b.MustBuild()

	// Unspecialized entities cannot construct, but a specialization to a
	// wider class still enforces the substituted spec.
	spec := MustSpecialize(box, TypeOf[int]())
	_, err := spec.New(Fields{"value": 1})
	assert.NoError(t, err)
}

func TestNestedInstantiatedField(t *testing.T) {
	pair, _, _ := pairEntity(t)

	tv := NewTypeVar("T")
	b := NewBuilder("Wrapper")
	b.Field("inner", Instantiated(pair, tv, TypeOf[string]()))
	b.TypeParams(tv)
	wrapper := b.MustBuild()

	spec := MustSpecialize(wrapper, TypeOf[int]())

	good := MustSpecialize(pair, TypeOf[int](), TypeOf[string]()).
		MustNew(Fields{"left": 1, "right": "a"})
	_, err := spec.New(Fields{"inner": good})
	require.NoError(t, err)

	bad := MustSpecialize(pair, TypeOf[string](), TypeOf[string]()).
		MustNew(Fields{"left": "1", "right": "a"})
	_, err = spec.New(Fields{"inner": bad})
	assert.ErrorIs(t, err, ErrType)
}

func TestSpecializedFieldsContainers(t *testing.T) {
	tv := NewTypeVar("T")
	b := NewBuilder("Bag")
	b.Field("items", ListOf(tv))
	b.Field("index", MapOf(TypeOf[string](), tv))
	b.TypeParams(tv)
	bag := b.MustBuild()

	spec := MustSpecialize(bag, TypeOf[int]())
	_, err := spec.New(Fields{
		"items": tree.NewList(1, 2),
		"index": tree.NewMap(tree.KeyVal{Key: "a", Val: 1}),
	})
	require.NoError(t, err)

	_, err = spec.New(Fields{
		"items": tree.NewList(1, "2"),
		"index": tree.NewMap(),
	})
	assert.ErrorIs(t, err, ErrType)
}

func TestSpecializeAutoConvertTracksArgument(t *testing.T) {
	tv := NewTypeVar("T")
	b := NewBuilder("Coerced")
	b.Field("value", tv).AutoConvert()
	b.TypeParams(tv)
	et := b.MustBuild()

	spec := MustSpecialize(et, TypeOf[int]())
	inst, err := spec.New(Fields{"value": "42"})
	require.NoError(t, err)
	assert.Equal(t, 42, inst.MustGet("value"))
}

func TestConcurrentSpecialize(t *testing.T) {
	pair, _, _ := pairEntity(t)

	const workers = 16
	out := make([]*EntityType, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = MustSpecialize(pair, TypeOf[float64](), TypeOf[float64]())
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, out[0], out[i])
	}
}
