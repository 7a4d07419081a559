// Package visitor implements the tree traversal engines: read-only
// visiting, copy-based translation, in-place modification, and a
// path-tracking visiting variant.
//
// Handlers are registered per entity type; dispatch resolves the most
// specific handler by walking the dynamic type's ancestry and falls back to
// the engine's generic structural behavior. Non-entity values (containers
// and leaves) always take the generic path.
//
// Recursion depth is bounded only by the depth of the tree being walked;
// pathologically deep trees can exhaust the stack. Engines hold no locks
// and assume exclusive access to the tree: mutating a tree concurrently
// with a traversal is undefined behavior.
package visitor
