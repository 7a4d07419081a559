package datamodel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/eth-cscs/eve-toolchain/debug"
)

// The specialization cache is process-wide: requesting the same (entity,
// type arguments) pair again returns the identical *EntityType, so
// downstream identity comparisons hold. Population is serialized; cached
// reads take the read lock only.
var specializations = struct {
	sync.RWMutex
	m map[specKey]*EntityType
}{m: map[specKey]*EntityType{}}

type specKey struct {
	base *EntityType
	args string
}

// Specialize produces (or reuses) the concrete entity type derived from a
// generic one and an ordered tuple of type arguments. Arguments must be
// class specs, entity specs or type variables, and match the declared
// parameter count.
func Specialize(et *EntityType, args ...TypeSpec) (*EntityType, error) {
	if !et.IsGeneric() {
		return nil, fmt.Errorf("%w: %q is not a generic entity type", ErrDefinition, et.name)
	}
	if len(args) != len(et.typeParams) {
		return nil, fmt.Errorf("%w: specializing %q with a wrong number of arguments (%d used, %d expected)",
			ErrDefinition, et.name, len(args), len(et.typeParams))
	}
	for _, a := range args {
		switch a.(type) {
		case classSpec, entitySpec, *TypeVarSpec:
		default:
			return nil, fmt.Errorf("%w: only class, entity and type variable specs can specialize %q (got %s)",
				ErrDefinition, et.name, a)
		}
	}

	key := specKey{base: et, args: joinKeys(args)}
	specializations.RLock()
	hit, ok := specializations.m[key]
	specializations.RUnlock()
	if ok {
		return hit, nil
	}

	specializations.Lock()
	defer specializations.Unlock()
	if hit, ok := specializations.m[key]; ok {
		return hit, nil
	}
	nt, err := substituteEntity(et, args)
	if err != nil {
		return nil, err
	}
	specializations.m[key] = nt
	if debug.Cache() {
		debug.Logf("specialize %s -> %s\n", et.name, nt.name)
	}
	return nt, nil
}

// MustSpecialize is Specialize, panicking on definition errors.
func MustSpecialize(et *EntityType, args ...TypeSpec) *EntityType {
	nt, err := Specialize(et, args...)
	if err != nil {
		panic(err)
	}
	return nt
}

// substituteEntity derives the specialized entity: every field type
// mentioning a parameter is rewritten, its constraint recompiled, and the
// result inherits the generic's fields and validators under a
// deterministic generated name.
func substituteEntity(et *EntityType, args []TypeSpec) (*EntityType, error) {
	bind := make(map[*TypeVarSpec]TypeSpec, len(et.typeParams))
	for i, tv := range et.typeParams {
		bind[tv] = args[i]
	}

	nt := &EntityType{
		name:           specializedName(et, args),
		parent:         et,
		instantiable:   et.instantiable,
		frozen:         et.frozen,
		postInit:       et.postInit,
		rootValidators: append([]RootValidator(nil), et.rootValidators...),
		genericBase:    et,
		typeArgs:       append([]TypeSpec(nil), args...),
	}

	nt.fields = make([]Field, len(et.fields))
	nt.fieldIdx = make(map[string]int, len(et.fields))
	for i := range et.fields {
		f := et.fields[i].clone()
		if specContainsVars(f.Type) {
			f.Type = substituteSpec(f.Type, bind)
			c, err := compileConstraint(f.Type)
			if err != nil {
				return nil, fmt.Errorf("specializing field %q of %q: %w", f.Name, et.name, err)
			}
			f.typeConstraint = c
			// Auto-converters track the declared class; user converters are
			// kept as supplied.
			if f.autoConverted {
				f.converter = autoConverterFor(f.Type)
			}
		}
		nt.fields[i] = f
		nt.fieldIdx[f.Name] = i
	}

	// Arguments that are themselves type variables leave the result generic.
	var remaining []*TypeVarSpec
	seen := map[*TypeVarSpec]bool{}
	for _, a := range args {
		if tv, ok := a.(*TypeVarSpec); ok && !seen[tv] {
			seen[tv] = true
			remaining = append(remaining, tv)
		}
	}
	nt.typeParams = remaining

	return nt, nil
}

func specializedName(et *EntityType, args []TypeSpec) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = displayName(a)
	}
	return et.name + "__" + strings.Join(parts, "_")
}
