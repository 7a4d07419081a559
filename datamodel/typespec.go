package datamodel

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeSpec describes a declared field type. The set of variants is closed:
// primitive class, any, null, type variable, literal, optional, union,
// fixed and variadic tuple, sequence, list, set, mapping, entity reference
// and parameterized entity reference. The constraint compiler derives a
// structural Validator from each variant.
type TypeSpec interface {
	fmt.Stringer
	key() string
	typeSpec()
}

type classSpec struct {
	rt reflect.Type
}

type anySpec struct{}

type nullSpec struct{}

// TypeVarSpec is a type variable usable in generic entity fields, possibly
// carrying an upper bound.
type TypeVarSpec struct {
	name  string
	bound TypeSpec
}

type literalSpec struct {
	vals []any
}

type optionalSpec struct {
	elem TypeSpec
}

type unionSpec struct {
	alts []TypeSpec
}

type tupleSpec struct {
	elems []TypeSpec
}

type variadicTupleSpec struct {
	elem TypeSpec
}

type seqSpec struct {
	elem TypeSpec
}

type listSpec struct {
	elem TypeSpec
}

type setSpec struct {
	elem   TypeSpec
	frozen bool
}

type mapSpec struct {
	keySpec TypeSpec
	valSpec TypeSpec
	frozen  bool
}

type entitySpec struct {
	et *EntityType
}

type instantiatedSpec struct {
	base *EntityType
	args []TypeSpec
}

// ClassOf declares a primitive class by its reflected type. Values whose
// dynamic type is assignable to rt satisfy the constraint.
func ClassOf(rt reflect.Type) TypeSpec { return classSpec{rt: rt} }

// TypeOf declares a primitive class from a Go type parameter.
func TypeOf[T any]() TypeSpec {
	return classSpec{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// Any declares an unconstrained field type.
func Any() TypeSpec { return anySpec{} }

// Null accepts only nil.
func Null() TypeSpec { return nullSpec{} }

// NewTypeVar declares an unbounded type variable.
func NewTypeVar(name string) *TypeVarSpec { return &TypeVarSpec{name: name} }

// NewBoundTypeVar declares a type variable with an upper bound.
func NewBoundTypeVar(name string, bound TypeSpec) *TypeVarSpec {
	return &TypeVarSpec{name: name, bound: bound}
}

// Name returns the type variable's declared name.
func (tv *TypeVarSpec) Name() string { return tv.name }

// Literal declares a field accepting exactly the listed values. Boolean
// literals are matched by identity, so the integer 1 never satisfies
// Literal(true).
func Literal(vals ...any) TypeSpec { return literalSpec{vals: vals} }

// Optional declares a field accepting nil or a value satisfying elem.
func Optional(elem TypeSpec) TypeSpec { return optionalSpec{elem: elem} }

// Union declares a first-match-wins alternative of types. A two-way union
// with a single non-null alternative collapses to Optional.
func Union(alts ...TypeSpec) TypeSpec {
	if len(alts) == 2 {
		if _, ok := alts[1].(nullSpec); ok {
			return optionalSpec{elem: alts[0]}
		}
		if _, ok := alts[0].(nullSpec); ok {
			return optionalSpec{elem: alts[1]}
		}
	}
	return unionSpec{alts: alts}
}

// TupleOf declares a fixed-arity tuple with one spec per position.
func TupleOf(elems ...TypeSpec) TypeSpec { return tupleSpec{elems: elems} }

// VariadicTupleOf declares a tuple of arbitrary length whose every element
// satisfies elem.
func VariadicTupleOf(elem TypeSpec) TypeSpec { return variadicTupleSpec{elem: elem} }

// SequenceOf declares a homogeneous sequence accepting either a *tree.List
// or a tree.Tuple.
func SequenceOf(elem TypeSpec) TypeSpec { return seqSpec{elem: elem} }

// ListOf declares a homogeneous mutable sequence (*tree.List).
func ListOf(elem TypeSpec) TypeSpec { return listSpec{elem: elem} }

// SetOf declares a homogeneous mutable set (*tree.Set).
func SetOf(elem TypeSpec) TypeSpec { return setSpec{elem: elem} }

// FrozenSetOf declares a homogeneous immutable set (*tree.FrozenSet).
func FrozenSetOf(elem TypeSpec) TypeSpec { return setSpec{elem: elem, frozen: true} }

// MapOf declares a homogeneous mutable mapping (*tree.Map).
func MapOf(key, val TypeSpec) TypeSpec { return mapSpec{keySpec: key, valSpec: val} }

// FrozenMapOf declares a homogeneous immutable mapping (*tree.FrozenMap).
func FrozenMapOf(key, val TypeSpec) TypeSpec {
	return mapSpec{keySpec: key, valSpec: val, frozen: true}
}

// EntityOf declares a field holding an instance of et or of any entity
// derived from it.
func EntityOf(et *EntityType) TypeSpec { return entitySpec{et: et} }

// Instantiated declares a field holding an instance of the given generic
// entity specialized with args. Arguments may contain type variables of the
// enclosing generic entity; they are substituted at specialization time.
func Instantiated(base *EntityType, args ...TypeSpec) TypeSpec {
	return instantiatedSpec{base: base, args: args}
}

func (classSpec) typeSpec()         {}
func (anySpec) typeSpec()           {}
func (nullSpec) typeSpec()          {}
func (*TypeVarSpec) typeSpec()      {}
func (literalSpec) typeSpec()       {}
func (optionalSpec) typeSpec()      {}
func (unionSpec) typeSpec()         {}
func (tupleSpec) typeSpec()         {}
func (variadicTupleSpec) typeSpec() {}
func (seqSpec) typeSpec()           {}
func (listSpec) typeSpec()          {}
func (setSpec) typeSpec()           {}
func (mapSpec) typeSpec()           {}
func (entitySpec) typeSpec()        {}
func (instantiatedSpec) typeSpec()  {}

func (s classSpec) String() string { return s.rt.String() }
func (anySpec) String() string     { return "Any" }
func (nullSpec) String() string    { return "Null" }
func (tv *TypeVarSpec) String() string {
	if tv.bound != nil {
		return fmt.Sprintf("%s(bound=%s)", tv.name, tv.bound)
	}
	return tv.name
}
func (s literalSpec) String() string { return fmt.Sprintf("Literal%v", s.vals) }
func (s optionalSpec) String() string {
	return fmt.Sprintf("Optional[%s]", s.elem)
}
func (s unionSpec) String() string {
	return fmt.Sprintf("Union[%s]", joinSpecs(s.alts))
}
func (s tupleSpec) String() string {
	return fmt.Sprintf("Tuple[%s]", joinSpecs(s.elems))
}
func (s variadicTupleSpec) String() string {
	return fmt.Sprintf("Tuple[%s, ...]", s.elem)
}
func (s seqSpec) String() string  { return fmt.Sprintf("Sequence[%s]", s.elem) }
func (s listSpec) String() string { return fmt.Sprintf("List[%s]", s.elem) }
func (s setSpec) String() string {
	if s.frozen {
		return fmt.Sprintf("FrozenSet[%s]", s.elem)
	}
	return fmt.Sprintf("Set[%s]", s.elem)
}
func (s mapSpec) String() string {
	if s.frozen {
		return fmt.Sprintf("FrozenMap[%s, %s]", s.keySpec, s.valSpec)
	}
	return fmt.Sprintf("Map[%s, %s]", s.keySpec, s.valSpec)
}
func (s entitySpec) String() string { return s.et.name }
func (s instantiatedSpec) String() string {
	return fmt.Sprintf("%s[%s]", s.base.name, joinSpecs(s.args))
}

func joinSpecs(specs []TypeSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func (s classSpec) key() string { return "class:" + s.rt.PkgPath() + "/" + s.rt.String() }
func (anySpec) key() string     { return "any" }
func (nullSpec) key() string    { return "null" }
func (tv *TypeVarSpec) key() string {
	return fmt.Sprintf("var:%s@%p", tv.name, tv)
}
func (s literalSpec) key() string { return fmt.Sprintf("literal:%#v", s.vals) }
func (s optionalSpec) key() string {
	return "optional(" + s.elem.key() + ")"
}
func (s unionSpec) key() string { return "union(" + joinKeys(s.alts) + ")" }
func (s tupleSpec) key() string { return "tuple(" + joinKeys(s.elems) + ")" }
func (s variadicTupleSpec) key() string {
	return "vtuple(" + s.elem.key() + ")"
}
func (s seqSpec) key() string  { return "seq(" + s.elem.key() + ")" }
func (s listSpec) key() string { return "list(" + s.elem.key() + ")" }
func (s setSpec) key() string {
	if s.frozen {
		return "frozenset(" + s.elem.key() + ")"
	}
	return "set(" + s.elem.key() + ")"
}
func (s mapSpec) key() string {
	kind := "map"
	if s.frozen {
		kind = "frozenmap"
	}
	return kind + "(" + s.keySpec.key() + "," + s.valSpec.key() + ")"
}
func (s entitySpec) key() string { return fmt.Sprintf("entity:%s@%p", s.et.name, s.et) }
func (s instantiatedSpec) key() string {
	return fmt.Sprintf("inst:%s@%p(%s)", s.base.name, s.base, joinKeys(s.args))
}

func joinKeys(specs []TypeSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.key()
	}
	return strings.Join(parts, ",")
}

// displayName renders a spec the way specialization names embed it.
func displayName(s TypeSpec) string {
	switch v := s.(type) {
	case classSpec:
		if n := v.rt.Name(); n != "" {
			return n
		}
		return strings.NewReplacer("[", "_", "]", "_", "*", "", ".", "_").Replace(v.rt.String())
	case entitySpec:
		return v.et.name
	case *TypeVarSpec:
		return v.name
	case instantiatedSpec:
		parts := make([]string, len(v.args))
		for i, a := range v.args {
			parts[i] = displayName(a)
		}
		return v.base.name + "__" + strings.Join(parts, "_")
	default:
		return strings.NewReplacer("[", "_", "]", "_", ", ", "_", " ", "").Replace(s.String())
	}
}

// specContainsVars reports whether s mentions any type variable.
func specContainsVars(s TypeSpec) bool {
	switch v := s.(type) {
	case *TypeVarSpec:
		return true
	case optionalSpec:
		return specContainsVars(v.elem)
	case unionSpec:
		return anyContainsVars(v.alts)
	case tupleSpec:
		return anyContainsVars(v.elems)
	case variadicTupleSpec:
		return specContainsVars(v.elem)
	case seqSpec:
		return specContainsVars(v.elem)
	case listSpec:
		return specContainsVars(v.elem)
	case setSpec:
		return specContainsVars(v.elem)
	case mapSpec:
		return specContainsVars(v.keySpec) || specContainsVars(v.valSpec)
	case instantiatedSpec:
		return anyContainsVars(v.args)
	default:
		return false
	}
}

func anyContainsVars(specs []TypeSpec) bool {
	for _, s := range specs {
		if specContainsVars(s) {
			return true
		}
	}
	return false
}

// substituteSpec rewrites s replacing every bound type variable per bind.
// Variables missing from bind are left in place.
func substituteSpec(s TypeSpec, bind map[*TypeVarSpec]TypeSpec) TypeSpec {
	switch v := s.(type) {
	case *TypeVarSpec:
		if repl, ok := bind[v]; ok {
			return repl
		}
		return v
	case optionalSpec:
		return optionalSpec{elem: substituteSpec(v.elem, bind)}
	case unionSpec:
		return unionSpec{alts: substituteAll(v.alts, bind)}
	case tupleSpec:
		return tupleSpec{elems: substituteAll(v.elems, bind)}
	case variadicTupleSpec:
		return variadicTupleSpec{elem: substituteSpec(v.elem, bind)}
	case seqSpec:
		return seqSpec{elem: substituteSpec(v.elem, bind)}
	case listSpec:
		return listSpec{elem: substituteSpec(v.elem, bind)}
	case setSpec:
		return setSpec{elem: substituteSpec(v.elem, bind), frozen: v.frozen}
	case mapSpec:
		return mapSpec{
			keySpec: substituteSpec(v.keySpec, bind),
			valSpec: substituteSpec(v.valSpec, bind),
			frozen:  v.frozen,
		}
	case instantiatedSpec:
		return instantiatedSpec{base: v.base, args: substituteAll(v.args, bind)}
	default:
		return s
	}
}

func substituteAll(specs []TypeSpec, bind map[*TypeVarSpec]TypeSpec) []TypeSpec {
	out := make([]TypeSpec, len(specs))
	for i, s := range specs {
		out[i] = substituteSpec(s, bind)
	}
	return out
}

// collectVars appends, in first-use order, the distinct type variables
// mentioned by s.
func collectVars(s TypeSpec, seen map[*TypeVarSpec]bool, out *[]*TypeVarSpec) {
	switch v := s.(type) {
	case *TypeVarSpec:
		if !seen[v] {
			seen[v] = true
			*out = append(*out, v)
		}
	case optionalSpec:
		collectVars(v.elem, seen, out)
	case unionSpec:
		for _, a := range v.alts {
			collectVars(a, seen, out)
		}
	case tupleSpec:
		for _, e := range v.elems {
			collectVars(e, seen, out)
		}
	case variadicTupleSpec:
		collectVars(v.elem, seen, out)
	case seqSpec:
		collectVars(v.elem, seen, out)
	case listSpec:
		collectVars(v.elem, seen, out)
	case setSpec:
		collectVars(v.elem, seen, out)
	case mapSpec:
		collectVars(v.keySpec, seen, out)
		collectVars(v.valSpec, seen, out)
	case instantiatedSpec:
		for _, a := range v.args {
			collectVars(a, seen, out)
		}
	}
}
