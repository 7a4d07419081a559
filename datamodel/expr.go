package datamodel

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// exprRootValidator compiles an expression over the field namespace into a
// root validator. Compilation failures are definition errors; at
// construction time the expression must evaluate to true.
func exprRootValidator(entity, src string) (RootValidator, error) {
	prg, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: entity %q expression validator %q: %v",
			ErrDefinition, entity, src, err)
	}
	return func(inst *Instance) error {
		env := make(map[string]any, len(inst.et.fields))
		for i := range inst.et.fields {
			env[inst.et.fields[i].Name] = inst.values[i]
		}
		out, err := expr.Run(prg, env)
		if err != nil {
			return fmt.Errorf("expression validator %q: %v", src, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return fmt.Errorf("expression validator %q returned %T, want bool", src, out)
		}
		if !ok {
			return fmt.Errorf("expression validator %q failed", src)
		}
		return nil
	}, nil
}
