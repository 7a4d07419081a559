package datamodel

import (
	"fmt"
	"reflect"

	"github.com/eth-cscs/eve-toolchain/debug"
)

// Builder declares an entity type. Fields, validators and entity options
// accumulate on the builder; Build compiles them into an *EntityType,
// reporting every definition error at that point.
type Builder struct {
	name            string
	parent          *EntityType
	fields          []*FieldDef
	fieldValidators []targetedValidator
	rootValidators  []RootValidator
	exprSources     []string
	postInit        func(*Instance) error
	postInitDup     bool
	notInstantiable bool
	frozen          bool
	typeParams      []*TypeVarSpec
	typeParamsSet   bool
}

type targetedValidator struct {
	field string
	fn    Validator
}

// RootValidator is an entity-wide invariant, run after all field
// constraints pass.
type RootValidator func(inst *Instance) error

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Extends sets the parent entity: its fields and root validators are
// inherited, own fields override inherited ones by name.
func (b *Builder) Extends(parent *EntityType) *Builder {
	b.parent = parent
	return b
}

// Field declares a field with its type spec and returns the definition for
// chaining options.
func (b *Builder) Field(name string, ts TypeSpec) *FieldDef {
	fd := &FieldDef{name: name, typ: ts}
	b.fields = append(b.fields, fd)
	return fd
}

// Validator attaches a validator to a field declared here or anywhere in
// the ancestry. Targeting an unknown field is a definition error.
func (b *Builder) Validator(field string, fn Validator) *Builder {
	b.fieldValidators = append(b.fieldValidators, targetedValidator{field: field, fn: fn})
	return b
}

// RootValidator appends an entity-wide invariant.
func (b *Builder) RootValidator(fn RootValidator) *Builder {
	b.rootValidators = append(b.rootValidators, fn)
	return b
}

// ExprValidator appends an entity-wide invariant given as an expression
// over the field namespace; it must evaluate to a boolean. The expression
// is compiled at Build time.
func (b *Builder) ExprValidator(src string) *Builder {
	b.exprSources = append(b.exprSources, src)
	return b
}

// PostInit sets the hook run after all validators during construction.
func (b *Builder) PostInit(fn func(*Instance) error) *Builder {
	if b.postInit != nil {
		b.postInitDup = true
	}
	b.postInit = fn
	return b
}

// NonInstantiable marks the entity abstract: every construction fails.
func (b *Builder) NonInstantiable() *Builder {
	b.notInstantiable = true
	return b
}

// Frozen makes instances immutable after construction.
func (b *Builder) Frozen() *Builder {
	b.frozen = true
	return b
}

// TypeParams declares the entity generic over the given type variables.
func (b *Builder) TypeParams(vars ...*TypeVarSpec) *Builder {
	b.typeParams = vars
	b.typeParamsSet = true
	return b
}

// Build compiles the declaration into an entity type.
func (b *Builder) Build() (*EntityType, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: entity must have a name", ErrDefinition)
	}
	if b.postInitDup {
		return nil, fmt.Errorf("%w: entity %q declares more than one post-init hook", ErrDefinition, b.name)
	}

	et := &EntityType{
		name:         b.name,
		parent:       b.parent,
		instantiable: !b.notInstantiable,
		frozen:       b.frozen,
		postInit:     b.postInit,
	}
	if et.postInit == nil && b.parent != nil {
		et.postInit = b.parent.postInit
	}
	if b.parent != nil && b.parent.frozen {
		et.frozen = true
	}

	// Inherited fields first; own fields override in place.
	var fields []Field
	if b.parent != nil {
		fields = make([]Field, 0, len(b.parent.fields)+len(b.fields))
		for i := range b.parent.fields {
			fields = append(fields, b.parent.fields[i].clone())
		}
	}
	seen := make(map[string]bool, len(b.fields))
	for _, fd := range b.fields {
		if seen[fd.name] {
			return nil, fmt.Errorf("%w: duplicate field %q in entity %q", ErrDefinition, fd.name, b.name)
		}
		seen[fd.name] = true
		f, err := compileField(fd, b.name)
		if err != nil {
			return nil, err
		}
		if i := fieldIndex(fields, fd.name); i >= 0 {
			fields[i] = f
		} else {
			fields = append(fields, f)
		}
	}
	et.fields = fields
	et.fieldIdx = make(map[string]int, len(fields))
	for i := range fields {
		et.fieldIdx[fields[i].Name] = i
	}

	// Field-targeted validators attach to the field's constraint chain.
	for _, tv := range b.fieldValidators {
		i, ok := et.fieldIdx[tv.field]
		if !ok {
			return nil, fmt.Errorf("%w: validator assigned to non existing %q field in entity %q",
				ErrDefinition, tv.field, b.name)
		}
		et.fields[i].validators = append(et.fields[i].validators, tv.fn)
	}

	// Root validators: bases first, de-duplicated, then own declarations.
	var roots []RootValidator
	if b.parent != nil {
		roots = append(roots, b.parent.rootValidators...)
	}
	for _, rv := range b.rootValidators {
		if !containsValidator(roots, rv) {
			roots = append(roots, rv)
		}
	}
	for _, src := range b.exprSources {
		rv, err := exprRootValidator(b.name, src)
		if err != nil {
			return nil, err
		}
		roots = append(roots, rv)
	}
	et.rootValidators = roots

	// Type parameters: own declaration wins, else inherited.
	params := b.typeParams
	if !b.typeParamsSet && b.parent != nil {
		params = b.parent.typeParams
	}
	et.typeParams = params
	if err := checkDeclaredVars(et, b.name); err != nil {
		return nil, err
	}

	if debug.Model() {
		debug.Logf("build %s: %d fields, %d root validators\n",
			et.name, len(et.fields), len(et.rootValidators))
	}
	return et, nil
}

// MustBuild is Build, panicking on definition errors. Meant for package
// level entity declarations.
func (b *Builder) MustBuild() *EntityType {
	et, err := b.Build()
	if err != nil {
		panic(err)
	}
	return et
}

func compileField(fd *FieldDef, entity string) (Field, error) {
	if fd.typ == nil {
		return Field{}, fmt.Errorf("%w: missing type spec in %q field of entity %q",
			ErrDefinition, fd.name, entity)
	}
	if fd.hasDefault && fd.factory != nil {
		return Field{}, fmt.Errorf("%w: field %q of entity %q specifies both default and default-factory",
			ErrDefinition, fd.name, entity)
	}
	if fd.noInit && !fd.hasDefault && fd.factory == nil {
		return Field{}, fmt.Errorf("%w: no-init field %q of entity %q must carry a default",
			ErrDefinition, fd.name, entity)
	}
	if fd.autoConvert && fd.converter != nil {
		return Field{}, fmt.Errorf("%w: field %q of entity %q specifies both a converter and auto-convert",
			ErrDefinition, fd.name, entity)
	}
	constraint, err := compileConstraint(fd.typ)
	if err != nil {
		return Field{}, fmt.Errorf("in %q field of entity %q: %w", fd.name, entity, err)
	}
	conv := fd.converter
	if fd.autoConvert {
		conv = autoConverterFor(fd.typ)
	}
	return Field{
		Name:           fd.name,
		Type:           fd.typ,
		typeConstraint: constraint,
		validators:     append([]Validator(nil), fd.validators...),
		hasDefault:     fd.hasDefault,
		defaultValue:   fd.def,
		defaultFactory: fd.factory,
		converter:      conv,
		autoConverted:  fd.autoConvert,
		noInit:         fd.noInit,
		noRepr:         fd.noRepr,
		noCompare:      fd.noCompare,
		attr:           fd.attr,
	}, nil
}

func fieldIndex(fields []Field, name string) int {
	for i := range fields {
		if fields[i].Name == name {
			return i
		}
	}
	return -1
}

func containsValidator(roots []RootValidator, fn RootValidator) bool {
	p := reflect.ValueOf(fn).Pointer()
	for _, r := range roots {
		if reflect.ValueOf(r).Pointer() == p {
			return true
		}
	}
	return false
}

// checkDeclaredVars verifies every type variable used by a field is among
// the entity's declared parameters.
func checkDeclaredVars(et *EntityType, entity string) error {
	declared := make(map[*TypeVarSpec]bool, len(et.typeParams))
	for _, tv := range et.typeParams {
		declared[tv] = true
	}
	for i := range et.fields {
		var used []*TypeVarSpec
		collectVars(et.fields[i].Type, map[*TypeVarSpec]bool{}, &used)
		for _, tv := range used {
			if !declared[tv] {
				return fmt.Errorf("%w: field %q of entity %q uses undeclared type variable %q",
					ErrDefinition, et.fields[i].Name, entity, tv.name)
			}
		}
	}
	return nil
}
