package datamodel

import "fmt"

// Fields carries keyword-style construction arguments.
type Fields map[string]any

// EntityType is a compiled, immutable entity definition: ordered fields
// (inherited plus own), root validators, instantiability and generic
// parameters. Instances are created with New and validated exactly once at
// construction.
type EntityType struct {
	name           string
	parent         *EntityType
	fields         []Field
	fieldIdx       map[string]int
	rootValidators []RootValidator
	postInit       func(*Instance) error
	instantiable   bool
	frozen         bool
	typeParams     []*TypeVarSpec

	// set on specializations
	genericBase *EntityType
	typeArgs    []TypeSpec
}

func (et *EntityType) Name() string        { return et.name }
func (et *EntityType) Parent() *EntityType { return et.parent }
func (et *EntityType) Frozen() bool        { return et.frozen }
func (et *EntityType) Instantiable() bool  { return et.instantiable }

// IsGeneric reports whether the entity has unresolved type parameters.
func (et *EntityType) IsGeneric() bool { return len(et.typeParams) > 0 }

// GenericOrigin returns, for a specialized entity, the generic it was
// derived from and the exact type arguments.
func (et *EntityType) GenericOrigin() (*EntityType, []TypeSpec) {
	if et.genericBase == nil {
		return nil, nil
	}
	return et.genericBase, append([]TypeSpec(nil), et.typeArgs...)
}

// Fields returns the ordered field definitions.
func (et *EntityType) Fields() []Field {
	out := make([]Field, len(et.fields))
	copy(out, et.fields)
	return out
}

// FieldNamed looks a field up by name.
func (et *EntityType) FieldNamed(name string) (*Field, bool) {
	i, ok := et.fieldIdx[name]
	if !ok {
		return nil, false
	}
	return &et.fields[i], true
}

// isSubtypeOf walks the ancestry chain.
func (et *EntityType) isSubtypeOf(base *EntityType) bool {
	for t := et; t != nil; t = t.parent {
		if t == base {
			return true
		}
	}
	return false
}

// New constructs and validates an instance from keyword arguments. The
// order is fixed: defaults and conversions per field, then field
// constraints in field order, then root validators in registration order,
// then the post-init hook. Any failure aborts construction.
func (et *EntityType) New(kw Fields) (*Instance, error) {
	if !et.instantiable {
		return nil, fmt.Errorf("%w: trying to instantiate non-instantiable entity %q", ErrConstruct, et.name)
	}
	if et.IsGeneric() {
		return nil, fmt.Errorf("%w: generic entity %q must be specialized before construction",
			ErrConstruct, et.name)
	}
	for k := range kw {
		i, ok := et.fieldIdx[k]
		if !ok || et.fields[i].noInit {
			return nil, fmt.Errorf("%w: entity %q got an unexpected field %q", ErrConstruct, et.name, k)
		}
	}

	inst := &Instance{et: et, values: make([]any, len(et.fields))}
	for i := range et.fields {
		f := &et.fields[i]
		v, provided := kw[f.Name]
		if !provided {
			switch {
			case f.hasDefault:
				v = f.defaultValue
			case f.defaultFactory != nil:
				v = f.defaultFactory()
			default:
				return nil, fmt.Errorf("%w: entity %q missing required field %q",
					ErrConstruct, et.name, f.Name)
			}
		}
		if f.converter != nil {
			cv, err := f.converter(v)
			if err != nil {
				return nil, fmt.Errorf("%w: converting field %q of entity %q: %v",
					ErrConstruct, f.Name, et.name, err)
			}
			v = cv
		}
		inst.values[i] = v
	}

	for i := range et.fields {
		if err := et.fields[i].check(inst, inst.values[i]); err != nil {
			return nil, err
		}
	}
	for _, rv := range et.rootValidators {
		if err := rv(inst); err != nil {
			return nil, fmt.Errorf("%w: entity %q: %v", ErrConstruct, et.name, err)
		}
	}
	if et.postInit != nil {
		if err := et.postInit(inst); err != nil {
			return nil, fmt.Errorf("%w: entity %q post-init: %v", ErrConstruct, et.name, err)
		}
	}
	return inst, nil
}

// MustNew is New, panicking on construction errors.
func (et *EntityType) MustNew(kw Fields) *Instance {
	inst, err := et.New(kw)
	if err != nil {
		panic(err)
	}
	return inst
}

func (et *EntityType) String() string { return et.name }
