package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// changing the encoding without colliding with old hashes.
const (
	DomainSnapshot = "appdom/snapshot/v1"
	DomainPatch    = "appdom/patch/v1"
	DomainNode     = "appdom/node/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash canonically encodes v and hashes it under domain.
func Hash(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// HashBytes hashes data that is already canonical JSON.
func HashBytes(domain string, canonical []byte) string {
	return hashWithDomain(domain, canonical)
}
