// Package store provides SQLite-backed editing history for appdom documents.
//
// Each app (keyed by its root node id) has a log of:
//   - Snapshots: full canonical Dom encodings, addressed by dom.Hash
//   - Patches: canonical dom.Patch encodings, addressed by dom.HashPatch
//
// # Ordering
//
// All ordering uses the per-app seq INTEGER, never timestamps. Patch seq n
// turns the state at seq n-1 into the state at seq n. A snapshot at seq n
// is the state after patch n, so Load starts from the newest snapshot and
// applies patches n+1, n+2, ... without gaps.
//
// # Integrity
//
// Hashes are recomputed on every read; a mismatch is ErrHashMismatch.
// Rewriting a seq with different content is ErrSeqConflict.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
