package visitor

import "github.com/eth-cscs/eve-toolchain/datamodel"

// lookupHandler resolves the most specific registered handler for a node by
// walking its dynamic entity type's ancestry from most-derived to
// least-derived. Values that are not entity instances have no handlers.
func lookupHandler[F any](handlers map[*datamodel.EntityType]F, node any) (F, bool) {
	var zero F
	inst, ok := node.(*datamodel.Instance)
	if !ok {
		return zero, false
	}
	for et := inst.Type(); et != nil; et = et.Parent() {
		if fn, ok := handlers[et]; ok {
			return fn, true
		}
	}
	return zero, false
}
