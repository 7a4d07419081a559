package visitor

// Env carries caller context through a traversal, handler to handler.
type Env map[string]any

type resultOp int

const (
	opKeep resultOp = iota
	opReplace
	opRemove
)

// Result is the tri-state outcome of a transforming handler: keep-as-is
// (apply the engine's generic structural behavior), replace-with, or remove
// the visited value from its parent container.
type Result struct {
	op    resultOp
	value any
}

// Keep defers to the engine's generic structural behavior for the node.
func Keep() Result { return Result{op: opKeep} }

// Replace substitutes v for the visited value.
func Replace(v any) Result { return Result{op: opReplace, value: v} }

// Remove drops the visited value from its parent container.
func Remove() Result { return Result{op: opRemove} }

// IsRemove reports whether the result removes the visited value.
func (r Result) IsRemove() bool { return r.op == opRemove }
