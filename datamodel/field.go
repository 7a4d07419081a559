package datamodel

// Field is a compiled field of an entity type: the declared type spec, its
// derived type constraint, the user validators that run after it, default
// handling, conversion and the inclusion flags.
type Field struct {
	Name string
	Type TypeSpec

	typeConstraint Validator
	validators     []Validator
	hasDefault     bool
	defaultValue   any
	defaultFactory func() any
	converter      Converter
	autoConverted  bool
	noInit         bool
	noRepr         bool
	noCompare      bool
	attr           bool
}

// HasDefault reports whether the field carries a default value or factory.
func (f *Field) HasDefault() bool { return f.hasDefault || f.defaultFactory != nil }

// IsAttribute reports whether the field is metadata, excluded from the
// traversal children.
func (f *Field) IsAttribute() bool { return f.attr }

// check runs the derived type constraint first, then the user validators.
func (f *Field) check(inst *Instance, value any) error {
	if f.typeConstraint != nil {
		if err := f.typeConstraint(inst, f.Name, value); err != nil {
			return err
		}
	}
	for _, v := range f.validators {
		if err := v(inst, f.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func (f *Field) clone() Field {
	nf := *f
	nf.validators = append([]Validator(nil), f.validators...)
	return nf
}

// FieldDef is a field under declaration; its chain methods customize the
// definition before Build compiles it.
type FieldDef struct {
	name        string
	typ         TypeSpec
	hasDefault  bool
	def         any
	factory     func() any
	converter   Converter
	autoConvert bool
	validators  []Validator
	noInit      bool
	noRepr      bool
	noCompare   bool
	attr        bool
}

// Default supplies a default value, making the field optional at
// construction.
func (f *FieldDef) Default(v any) *FieldDef {
	f.hasDefault = true
	f.def = v
	return f
}

// DefaultFactory supplies a per-construction default factory. Mutually
// exclusive with Default.
func (f *FieldDef) DefaultFactory(fn func() any) *FieldDef {
	f.factory = fn
	return f
}

// Converter supplies a conversion run before constraint checking.
func (f *FieldDef) Converter(fn Converter) *FieldDef {
	f.converter = fn
	return f
}

// AutoConvert resolves to a coercion for the declared class at Build time.
func (f *FieldDef) AutoConvert() *FieldDef {
	f.autoConvert = true
	return f
}

// Validate appends a user validator, AND-composed after the derived type
// constraint.
func (f *FieldDef) Validate(fn Validator) *FieldDef {
	f.validators = append(f.validators, fn)
	return f
}

// NoInit excludes the field from construction keywords; it must carry a
// default.
func (f *FieldDef) NoInit() *FieldDef {
	f.noInit = true
	return f
}

// NoRepr excludes the field from the instance representation.
func (f *FieldDef) NoRepr() *FieldDef {
	f.noRepr = true
	return f
}

// NoCompare excludes the field from instance equality.
func (f *FieldDef) NoCompare() *FieldDef {
	f.noCompare = true
	return f
}

// Attribute marks the field as metadata: it is not a traversal child and
// translating keeps it unchanged.
func (f *FieldDef) Attribute() *FieldDef {
	f.attr = true
	return f
}
