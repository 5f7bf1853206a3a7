// Package ident mints node identifiers.
//
// Identifiers are short, URL-safe tokens. They are never checked against
// the contents of a document: the token space is large enough that
// collisions are treated as impossible.
package ident

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Alphabet is the 62-symbol alphabet node ids are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Length is the number of symbols in a random id.
const Length = 7

// Generator mints identifiers.
// Implemented by Random (production), Sequence and Fixed (tests).
type Generator interface {
	Generate() string
}

// Random draws ids from the random bits of a version 4 UUID.
//
// Thread-safety: Random is stateless and safe for concurrent use.
type Random struct{}

// Generate returns a fresh 7-symbol id.
//
// Panics if the system random source fails (uuid.New does the same).
func (Random) Generate() string {
	u := uuid.New()
	// Bytes 10..15 carry no version or variant bits: 48 random bits, which
	// is more than the 62^7 (about 2^41.7) ids we encode.
	var buf [8]byte
	copy(buf[2:], u[10:16])
	n := binary.BigEndian.Uint64(buf[:])

	out := make([]byte, Length)
	for i := range out {
		out[i] = Alphabet[n%uint64(len(Alphabet))]
		n /= uint64(len(Alphabet))
	}
	return string(out)
}

// NewSessionID returns a time-sortable UUIDv7 string for editing sessions.
func NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequence returns prefix1, prefix2, ... in order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequence creates a sequence generator. An empty prefix defaults to "n".
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "n"
	}
	return &Sequence{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (s *Sequence) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

// Fixed returns predetermined ids in order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator that returns ids in order.
//
//	gen := NewFixed("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all ids exhausted
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once all ids have been consumed, so a test that mints more ids
// than it planned for fails loudly.
func (f *Fixed) Generate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.ids) {
		panic("ident.Fixed: all ids exhausted")
	}
	id := f.ids[f.idx]
	f.idx++
	return id
}
