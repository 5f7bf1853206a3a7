// Package fracindex generates order keys for siblings.
//
// A key is a string that sorts with plain byte comparison. Between any two
// keys another key can always be generated, so inserting a node never
// renumbers its siblings.
//
// Keys have an integer part and a fraction. The first character of the
// integer part encodes its length: 'a'..'z' are integers of 2..27
// characters, 'A'..'Z' are 27..2 characters and sort below every
// lowercase head. The remaining characters are base-62 digits. The fraction
// never ends in the zero digit, so every key has a unique successor gap.
package fracindex

import (
	"errors"
	"fmt"
	"strings"
)

// Digits is the base-62 digit set in ascending byte order.
const Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	zero     = '0'
	maxDigit = 'z'
)

// First is the key produced for an empty sibling list.
const First = "a0"

// smallestInteger can never be decremented; keys equal to it are invalid.
var smallestInteger = "A" + strings.Repeat(string(zero), 26)

// ErrInvalidKey reports a malformed order key.
var ErrInvalidKey = errors.New("invalid order key")

// ErrExhausted reports that no integer key exists beyond the bound.
var ErrExhausted = errors.New("order key space exhausted")

// Compare orders keys with plain lexicographic byte order.
// Equal keys on distinct siblings are a corruption, but Compare itself
// never fails.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}

// KeyBetween returns a key strictly between low and high. An empty low
// means no lower bound, an empty high means no upper bound.
func KeyBetween(low, high string) (string, error) {
	if low != "" {
		if err := Validate(low); err != nil {
			return "", err
		}
	}
	if high != "" {
		if err := Validate(high); err != nil {
			return "", err
		}
	}
	if low != "" && high != "" && low >= high {
		return "", fmt.Errorf("%w: %q is not below %q", ErrInvalidKey, low, high)
	}

	if low == "" {
		if high == "" {
			return First, nil
		}
		ib := integerPart(high)
		fb := high[len(ib):]
		if ib == smallestInteger {
			return ib + midpoint("", fb), nil
		}
		if ib < high {
			return ib, nil
		}
		res, ok := decrementInteger(ib)
		if !ok {
			return "", ErrExhausted
		}
		return res, nil
	}

	ia := integerPart(low)
	fa := low[len(ia):]
	if high == "" {
		res, ok := incrementInteger(ia)
		if !ok {
			return ia + midpoint(fa, ""), nil
		}
		return res, nil
	}

	ib := integerPart(high)
	fb := high[len(ib):]
	if ia == ib {
		return ia + midpoint(fa, fb), nil
	}
	res, ok := incrementInteger(ia)
	if !ok {
		return "", ErrExhausted
	}
	if res < high {
		return res, nil
	}
	return ia + midpoint(fa, ""), nil
}

// NKeysBetween returns n ascending keys strictly between low and high,
// spread so that later inserts between them stay short.
func NKeysBetween(low, high string, n int) ([]string, error) {
	switch {
	case n <= 0:
		return nil, nil
	case n == 1:
		k, err := KeyBetween(low, high)
		if err != nil {
			return nil, err
		}
		return []string{k}, nil
	}

	if high == "" {
		keys := make([]string, 0, n)
		prev := low
		for i := 0; i < n; i++ {
			k, err := KeyBetween(prev, "")
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			prev = k
		}
		return keys, nil
	}
	if low == "" {
		keys := make([]string, n)
		next := high
		for i := n - 1; i >= 0; i-- {
			k, err := KeyBetween("", next)
			if err != nil {
				return nil, err
			}
			keys[i] = k
			next = k
		}
		return keys, nil
	}

	mid := n / 2
	c, err := KeyBetween(low, high)
	if err != nil {
		return nil, err
	}
	left, err := NKeysBetween(low, c, mid)
	if err != nil {
		return nil, err
	}
	right, err := NKeysBetween(c, high, n-mid-1)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	keys = append(keys, left...)
	keys = append(keys, c)
	return append(keys, right...), nil
}

// Validate checks that key is a well-formed order key.
func Validate(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if key == smallestInteger {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	n, ok := integerLength(key[0])
	if !ok || n > len(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for i := 1; i < len(key); i++ {
		if strings.IndexByte(Digits, key[i]) < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if len(key) > n && key[len(key)-1] == zero {
		return fmt.Errorf("%w: %q has a trailing zero", ErrInvalidKey, key)
	}
	return nil
}

// integerLength returns the length of the integer part announced by head.
func integerLength(head byte) (int, bool) {
	switch {
	case head >= 'a' && head <= 'z':
		return int(head-'a') + 2, true
	case head >= 'A' && head <= 'Z':
		return int('Z'-head) + 2, true
	}
	return 0, false
}

// integerPart assumes key has been validated.
func integerPart(key string) string {
	n, _ := integerLength(key[0])
	return key[:n]
}

func digitValue(c byte) int {
	return strings.IndexByte(Digits, c)
}

// midpoint returns a fraction strictly between a and b, where b == ""
// means 1. Neither argument may end in the zero digit.
func midpoint(a, b string) string {
	if b != "" {
		// Skip the common prefix, padding a with zeros.
		n := 0
		for n < len(b) {
			ac := byte(zero)
			if n < len(a) {
				ac = a[n]
			}
			if ac != b[n] {
				break
			}
			n++
		}
		if n > 0 {
			rest := ""
			if n < len(a) {
				rest = a[n:]
			}
			return b[:n] + midpoint(rest, b[n:])
		}
	}

	da := 0
	if a != "" {
		da = digitValue(a[0])
	}
	db := len(Digits)
	if b != "" {
		db = digitValue(b[0])
	}

	if db-da > 1 {
		return string(Digits[(da+db+1)/2])
	}
	// The first digits are adjacent.
	if len(b) > 1 {
		return b[:1]
	}
	rest := ""
	if len(a) > 1 {
		rest = a[1:]
	}
	return string(Digits[da]) + midpoint(rest, "")
}

// incrementInteger returns the next integer, or false past the largest.
func incrementInteger(x string) (string, bool) {
	head := x[0]
	digs := []byte(x[1:])

	carry := true
	for i := len(digs) - 1; carry && i >= 0; i-- {
		d := digitValue(digs[i]) + 1
		if d == len(Digits) {
			digs[i] = zero
		} else {
			digs[i] = Digits[d]
			carry = false
		}
	}
	if !carry {
		return string(head) + string(digs), true
	}

	switch head {
	case 'Z':
		return "a" + string(zero), true
	case 'z':
		return "", false
	}
	h := head + 1
	if h > 'a' {
		digs = append(digs, zero)
	} else {
		digs = digs[:len(digs)-1]
	}
	return string(h) + string(digs), true
}

// decrementInteger returns the previous integer, or false below the smallest.
func decrementInteger(x string) (string, bool) {
	head := x[0]
	digs := []byte(x[1:])

	borrow := true
	for i := len(digs) - 1; borrow && i >= 0; i-- {
		d := digitValue(digs[i]) - 1
		if d == -1 {
			digs[i] = maxDigit
		} else {
			digs[i] = Digits[d]
			borrow = false
		}
	}
	if !borrow {
		return string(head) + string(digs), true
	}

	switch head {
	case 'a':
		return "Z" + string(maxDigit), true
	case 'A':
		return "", false
	}
	h := head - 1
	if h < 'Z' {
		digs = append(digs, maxDigit)
	} else {
		digs = digs[:len(digs)-1]
	}
	return string(h) + string(digs), true
}
