package datamodel

import "errors"

var (
	// ErrDefinition reports an entity declared incorrectly: missing type
	// spec, duplicate post-init hook, validator targeting an unknown field,
	// default and default-factory both given, bad specialization arguments.
	ErrDefinition = errors.New("definition error")

	// ErrType reports a type or shape mismatch during construction: wrong
	// class, wrong tuple arity, wrong element type.
	ErrType = errors.New("type mismatch")

	// ErrValue reports a value outside the allowed set of a literal field.
	ErrValue = errors.New("value mismatch")

	// ErrConstruct reports a failed construction: missing or unknown
	// fields, non-instantiable entities, converter or validator failures.
	ErrConstruct = errors.New("construction error")

	// ErrFrozen reports an assignment to a frozen instance.
	ErrFrozen = errors.New("frozen instance")
)
