// Package session is the single writer of an app's current Dom.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Editors submit Commands from any goroutine with Enqueue; Run applies them
// one at a time in FIFO order. Apply, Undo and Redo take the same write
// lock, so tests and the CLI can drive a session synchronously without Run.
//
// Change Flow:
//  1. The command computes the next Dom with the pure operations of package dom
//  2. A command that returns the same *dom.Dom changes nothing and is not published
//  3. dom.Diff(prev, next) is the change's patch
//  4. With a store, the patch is appended at the next seq before anything is published
//  5. The clock advances, the Dom is swapped in, and subscribers receive an Update
//
// History:
// Undo and redo keep previous Dom values, not inverse patches. Structural
// sharing makes each entry cost only the records that changed. Reverting is
// itself a change with a fresh seq, so the stored patch log never rewinds.
//
// Observability:
// Each command runs in an OpenTelemetry span named "session.<command>" and
// is counted in the Prometheus collectors of Metrics when configured.
package session
