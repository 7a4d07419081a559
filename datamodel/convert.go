package datamodel

import (
	"fmt"
	"reflect"
	"strconv"
)

// Converter rewrites a candidate field value before constraint checking.
// A failing converter aborts construction.
type Converter func(value any) (any, error)

// autoConverterFor resolves the auto-convert marker to a coercion for the
// declared class. Non-class specs get no converter.
func autoConverterFor(ts TypeSpec) Converter {
	cs, ok := ts.(classSpec)
	if !ok {
		return nil
	}
	rt := cs.rt
	return func(v any) (any, error) { return coerce(v, rt) }
}

func coerce(v any, rt reflect.Type) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot convert nil to %s", rt)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(rt) {
		return v, nil
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s, ok := v.(string); ok {
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s: %v", s, rt, err)
			}
			return reflect.ValueOf(i).Convert(rt).Interface(), nil
		}
		if isNumericKind(rv.Kind()) {
			return rv.Convert(rt).Interface(), nil
		}
	case reflect.Float32, reflect.Float64:
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s: %v", s, rt, err)
			}
			return reflect.ValueOf(f).Convert(rt).Interface(), nil
		}
		if isNumericKind(rv.Kind()) {
			return rv.Convert(rt).Interface(), nil
		}
	case reflect.Bool:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s: %v", s, rt, err)
			}
			return b, nil
		}
	case reflect.String:
		out := fmt.Sprint(v)
		return reflect.ValueOf(out).Convert(rt).Interface(), nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			if s, ok := v.(string); ok {
				return reflect.ValueOf([]byte(s)).Convert(rt).Interface(), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot convert '%v' (%T) to %s", v, v, rt)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
