package datamodel

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/eth-cscs/eve-toolchain/tree"
)

// Validator checks a candidate field value on an instance under
// construction. It returns nil when the value is acceptable. Validators
// compose with logical AND, keeping each side's error message.
type Validator func(inst *Instance, field string, value any) error

func passValidator(*Instance, string, any) error { return nil }

func andValidators(vs ...Validator) Validator {
	switch len(vs) {
	case 0:
		return passValidator
	case 1:
		return vs[0]
	}
	return func(inst *Instance, field string, value any) error {
		for _, v := range vs {
			if err := v(inst, field, value); err != nil {
				return err
			}
		}
		return nil
	}
}

// compileConstraint derives the structural Validator for a type spec,
// recursively for containers, unions and literals. Unsupported shapes fail
// here, at definition time.
func compileConstraint(ts TypeSpec) (Validator, error) {
	switch s := ts.(type) {
	case classSpec:
		return instanceOf(s.rt), nil

	case anySpec:
		return passValidator, nil

	case nullSpec:
		return nullValidator, nil

	case *TypeVarSpec:
		if s.bound != nil {
			return compileConstraint(s.bound)
		}
		return passValidator, nil

	case literalSpec:
		if len(s.vals) == 0 {
			return nil, fmt.Errorf("%w: literal spec with no values", ErrDefinition)
		}
		return literalValidator(s.vals), nil

	case optionalSpec:
		inner, err := compileConstraint(s.elem)
		if err != nil {
			return nil, err
		}
		return func(inst *Instance, field string, value any) error {
			if value == nil {
				return nil
			}
			return inner(inst, field, value)
		}, nil

	case unionSpec:
		if len(s.alts) == 0 {
			return nil, fmt.Errorf("%w: union spec with no alternatives", ErrDefinition)
		}
		alts, err := compileAll(s.alts)
		if err != nil {
			return nil, err
		}
		return anyOfValidator(alts, ErrType), nil

	case tupleSpec:
		elems, err := compileAll(s.elems)
		if err != nil {
			return nil, err
		}
		return tupleValidator(elems), nil

	case variadicTupleSpec:
		elem, err := compileConstraint(s.elem)
		if err != nil {
			return nil, err
		}
		return func(inst *Instance, field string, value any) error {
			tup, ok := value.(tree.Tuple)
			if !ok {
				return typeErr(field, value, "tree.Tuple")
			}
			return checkElems(inst, field, tup, elem)
		}, nil

	case seqSpec:
		elem, err := compileConstraint(s.elem)
		if err != nil {
			return nil, err
		}
		return func(inst *Instance, field string, value any) error {
			switch v := value.(type) {
			case tree.Tuple:
				return checkElems(inst, field, v, elem)
			case *tree.List:
				return checkElems(inst, field, v.Elems(), elem)
			}
			return typeErr(field, value, "*tree.List or tree.Tuple")
		}, nil

	case listSpec:
		elem, err := compileConstraint(s.elem)
		if err != nil {
			return nil, err
		}
		return func(inst *Instance, field string, value any) error {
			l, ok := value.(*tree.List)
			if !ok {
				return typeErr(field, value, "*tree.List")
			}
			return checkElems(inst, field, l.Elems(), elem)
		}, nil

	case setSpec:
		elem, err := compileConstraint(s.elem)
		if err != nil {
			return nil, err
		}
		if s.frozen {
			return func(inst *Instance, field string, value any) error {
				fs, ok := value.(*tree.FrozenSet)
				if !ok {
					return typeErr(field, value, "*tree.FrozenSet")
				}
				return checkElems(inst, field, fs.Elems(), elem)
			}, nil
		}
		return func(inst *Instance, field string, value any) error {
			st, ok := value.(*tree.Set)
			if !ok {
				return typeErr(field, value, "*tree.Set")
			}
			return checkElems(inst, field, st.Elems(), elem)
		}, nil

	case mapSpec:
		keyV, err := compileConstraint(s.keySpec)
		if err != nil {
			return nil, err
		}
		valV, err := compileConstraint(s.valSpec)
		if err != nil {
			return nil, err
		}
		if s.frozen {
			return func(inst *Instance, field string, value any) error {
				m, ok := value.(*tree.FrozenMap)
				if !ok {
					return typeErr(field, value, "*tree.FrozenMap")
				}
				return checkEntries(inst, field, m.Entries(), keyV, valV)
			}, nil
		}
		return func(inst *Instance, field string, value any) error {
			m, ok := value.(*tree.Map)
			if !ok {
				return typeErr(field, value, "*tree.Map")
			}
			return checkEntries(inst, field, m.Entries(), keyV, valV)
		}, nil

	case entitySpec:
		return instanceOfEntity(s.et), nil

	case instantiatedSpec:
		if anyContainsVars(s.args) {
			// Still generic: accept anything derived from the base until
			// the enclosing entity gets specialized.
			return instanceOfEntity(s.base), nil
		}
		return lazySpecializedValidator(s), nil

	default:
		return nil, fmt.Errorf("%w: type spec '%s' is not supported", ErrDefinition, ts)
	}
}

func compileAll(specs []TypeSpec) ([]Validator, error) {
	out := make([]Validator, len(specs))
	for i, s := range specs {
		v, err := compileConstraint(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func typeErr(field string, value any, want string) error {
	return fmt.Errorf("%w: in %q validation, got '%v' that is a %T instead of %s",
		ErrType, field, value, value, want)
}

func nullValidator(_ *Instance, field string, value any) error {
	if value != nil {
		return typeErr(field, value, "nil")
	}
	return nil
}

func instanceOf(rt reflect.Type) Validator {
	return func(_ *Instance, field string, value any) error {
		if value == nil {
			return fmt.Errorf("%w: in %q validation, got nil instead of %s", ErrType, field, rt)
		}
		if vt := reflect.TypeOf(value); vt != rt && !vt.AssignableTo(rt) {
			return typeErr(field, value, rt.String())
		}
		return nil
	}
}

func instanceOfEntity(et *EntityType) Validator {
	return func(_ *Instance, field string, value any) error {
		iv, ok := value.(*Instance)
		if !ok || !iv.Is(et) {
			return typeErr(field, value, "entity "+et.name)
		}
		return nil
	}
}

// anyOfValidator composes alternatives with first-match-wins semantics.
func anyOfValidator(alts []Validator, kind error) Validator {
	if len(alts) == 1 {
		return alts[0]
	}
	return func(inst *Instance, field string, value any) error {
		for _, v := range alts {
			if v(inst, field, value) == nil {
				return nil
			}
		}
		return fmt.Errorf("%w: in %q validation, provided value '%v' fails for all the possible alternatives",
			kind, field, value)
	}
}

func literalValidator(vals []any) Validator {
	return func(_ *Instance, field string, value any) error {
		for _, lit := range vals {
			if literalMatches(lit, value) {
				return nil
			}
		}
		return fmt.Errorf("%w: in %q validation, provided value '%v' does not match any of %v",
			ErrValue, field, value, vals)
	}
}

// literalMatches compares booleans by identity (so the integer 1 never
// matches true) and everything else by typed or numeric equality.
func literalMatches(lit, value any) bool {
	if lb, ok := lit.(bool); ok {
		vb, ok := value.(bool)
		return ok && vb == lb
	}
	if _, ok := value.(bool); ok {
		return false
	}
	if lit == nil || value == nil {
		return lit == nil && value == nil
	}
	if reflect.TypeOf(lit) == reflect.TypeOf(value) {
		return reflect.DeepEqual(lit, value)
	}
	lf, lok := numericValue(lit)
	vf, vok := numericValue(value)
	return lok && vok && lf == vf
}

func numericValue(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// tupleValidator checks the exact container class, the arity, then every
// position; the error names the first failing position and its value.
func tupleValidator(elems []Validator) Validator {
	return func(inst *Instance, field string, value any) error {
		tup, ok := value.(tree.Tuple)
		if !ok {
			return typeErr(field, value, "tree.Tuple")
		}
		if len(tup) != len(elems) {
			return fmt.Errorf("%w: in %q validation, got '%v' tuple which contains %d elements instead of %d",
				ErrType, field, value, len(tup), len(elems))
		}
		for i, ev := range elems {
			if err := ev(inst, field, tup[i]); err != nil {
				return fmt.Errorf("%w: in %q validation, tuple '%v' contains invalid value '%v' at position %d: %v",
					ErrType, field, value, tup[i], i, err)
			}
		}
		return nil
	}
}

func checkElems(inst *Instance, field string, elems []any, v Validator) error {
	for i, e := range elems {
		if err := v(inst, field, e); err != nil {
			return fmt.Errorf("%w: in %q validation, container contains invalid value '%v' at position %d: %v",
				ErrType, field, e, i, err)
		}
	}
	return nil
}

func checkEntries(inst *Instance, field string, entries []tree.KeyVal, keyV, valV Validator) error {
	for _, kv := range entries {
		if err := keyV(inst, field, kv.Key); err != nil {
			return fmt.Errorf("%w: in %q validation, mapping contains invalid key '%v': %v",
				ErrType, field, kv.Key, err)
		}
		if err := valV(inst, field, kv.Val); err != nil {
			return fmt.Errorf("%w: in %q validation, mapping contains invalid value '%v' at key '%v': %v",
				ErrType, field, kv.Val, kv.Key, err)
		}
	}
	return nil
}

// lazySpecializedValidator resolves the concrete specialization on first
// use, so compiling an entity never re-enters the specialization cache.
func lazySpecializedValidator(s instantiatedSpec) Validator {
	var (
		once   sync.Once
		target *EntityType
		rerr   error
	)
	return func(inst *Instance, field string, value any) error {
		once.Do(func() {
			target, rerr = Specialize(s.base, s.args...)
		})
		if rerr != nil {
			return fmt.Errorf("%w: in %q validation, cannot specialize %s: %v",
				ErrDefinition, field, s, rerr)
		}
		return instanceOfEntity(target)(inst, field, value)
	}
}
