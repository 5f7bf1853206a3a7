// Package ir holds the value types stored in document props, params and
// attributes, and their canonical JSON encoding.
//
// ir imports nothing internal; every other package may import it.
//
// Constraints:
//   - no float values, numbers are int64
//   - canonical output follows RFC 8785 and NFC-normalizes strings
//   - content hashes are domain separated (see hash.go)
package ir
