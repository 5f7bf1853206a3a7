// Package dom implements the application document model.
//
// A Dom is an immutable tree of typed nodes (app, connection, theme, page,
// element, codeComponent, query, mutation) stored as a map of id to record
// plus a root id and a schema version.
//
// ARCHITECTURE:
//
// Pure Operations:
// Every mutation (Attach, Move, Remove, Duplicate, MergeFragment, SetName,
// SetProp ...) takes a *Dom and returns a new *Dom. Records that did not
// change are shared between the two values, which makes Diff a pointer
// comparison and lets undo history keep old values at little cost. An
// operation that changes nothing returns its input.
//
// Ordering:
// Siblings under the same (parent, relation) are ordered by fractional index
// keys (package fracindex). Inserting never renumbers existing siblings.
//
// Child Index:
// Children lookups go through an index built lazily, once per Dom value, and
// dropped with it.
//
// Invariants:
// Verify checks acyclicity, referential integrity, order key uniqueness,
// naming uniqueness and kind compatibility. Every operation in this package
// preserves them; Decode rejects documents that violate them.
package dom
