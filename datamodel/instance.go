package datamodel

import (
	"fmt"
	"strings"

	"github.com/eth-cscs/eve-toolchain/tree"
)

// Instance is a constructed, validated value of an entity type. All fields
// are populated at construction; validation after construction happens only
// through Set.
type Instance struct {
	et     *EntityType
	values []any
}

func (inst *Instance) Type() *EntityType { return inst.et }

// Is reports whether the instance's type is et or derives from it.
func (inst *Instance) Is(et *EntityType) bool { return inst.et.isSubtypeOf(et) }

// Get returns the named field value.
func (inst *Instance) Get(name string) (any, bool) {
	i, ok := inst.et.fieldIdx[name]
	if !ok {
		return nil, false
	}
	return inst.values[i], true
}

// MustGet is Get, panicking on unknown fields.
func (inst *Instance) MustGet(name string) any {
	v, ok := inst.Get(name)
	if !ok {
		panic(fmt.Sprintf("entity %q has no field %q", inst.et.name, name))
	}
	return v
}

// Set assigns a field, re-running its constraint chain. Frozen instances
// reject assignment.
func (inst *Instance) Set(name string, value any) error {
	i, err := inst.slot(name)
	if err != nil {
		return err
	}
	if err := inst.et.fields[i].check(inst, value); err != nil {
		return err
	}
	inst.values[i] = value
	return nil
}

// Assign assigns a field without re-validation. The in-place traversal
// engine uses it; construction-time validity is not re-established.
func (inst *Instance) Assign(name string, value any) error {
	i, err := inst.slot(name)
	if err != nil {
		return err
	}
	inst.values[i] = value
	return nil
}

// Remove clears a child field slot to nil, the in-place analogue of
// dropping the child from its parent.
func (inst *Instance) Remove(name string) error {
	return inst.Assign(name, nil)
}

func (inst *Instance) slot(name string) (int, error) {
	if inst.et.frozen {
		return 0, fmt.Errorf("%w: trying to modify field %q in frozen %q instance",
			ErrFrozen, name, inst.et.name)
	}
	i, ok := inst.et.fieldIdx[name]
	if !ok {
		return 0, fmt.Errorf("%w: entity %q has no field %q", ErrConstruct, inst.et.name, name)
	}
	return i, nil
}

// Children returns the ordered (name, value) pairs of the non-attribute
// fields, the traversal children.
func (inst *Instance) Children() []tree.Named {
	out := make([]tree.Named, 0, len(inst.et.fields))
	for i := range inst.et.fields {
		if inst.et.fields[i].attr {
			continue
		}
		out = append(out, tree.Named{Name: inst.et.fields[i].Name, Value: inst.values[i]})
	}
	return out
}

// Attributes returns the ordered (name, value) pairs of the metadata
// fields.
func (inst *Instance) Attributes() []tree.Named {
	out := make([]tree.Named, 0, 2)
	for i := range inst.et.fields {
		if !inst.et.fields[i].attr {
			continue
		}
		out = append(out, tree.Named{Name: inst.et.fields[i].Name, Value: inst.values[i]})
	}
	return out
}

// Rebuild constructs a new instance of the same concrete type from the
// unchanged attributes plus the supplied children. Omitted children fall
// back to their defaults; omitting a required child fails construction.
func (inst *Instance) Rebuild(children []tree.Named) (*Instance, error) {
	kw := make(Fields, len(inst.et.fields))
	for i := range inst.et.fields {
		f := &inst.et.fields[i]
		if f.attr && !f.noInit {
			kw[f.Name] = inst.values[i]
		}
	}
	for _, c := range children {
		kw[c.Name] = c.Value
	}
	return inst.et.New(kw)
}

// EqualValue compares two instances structurally over their compare-flagged
// fields. It implements tree.Equaler.
func (inst *Instance) EqualValue(other any) bool {
	o, ok := other.(*Instance)
	if !ok || o.et != inst.et {
		return false
	}
	for i := range inst.et.fields {
		if inst.et.fields[i].noCompare {
			continue
		}
		if !tree.Equal(inst.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func (inst *Instance) String() string {
	var sb strings.Builder
	sb.WriteString(inst.et.name)
	sb.WriteByte('(')
	first := true
	for i := range inst.et.fields {
		if inst.et.fields[i].noRepr {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s=%v", inst.et.fields[i].Name, inst.values[i])
	}
	sb.WriteByte(')')
	return sb.String()
}
