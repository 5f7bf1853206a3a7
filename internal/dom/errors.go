package dom

import (
	"errors"
	"fmt"

	"github.com/roach88/appdom/internal/naming"
)

// Error is a precondition violation reported by a Dom operation. The input
// Dom is never modified when an Error is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID is the node the operation was applied to, if any.
	NodeID NodeID

	// Kind is the kind involved, if any.
	Kind Kind
}

// ErrorCode categorizes Dom errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an id absent from the Dom.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeKindMismatch indicates a node or attribute of an unexpected kind.
	ErrCodeKindMismatch ErrorCode = "KIND_MISMATCH"

	// ErrCodeAlreadyAttached indicates attaching a node that already has a
	// parent or whose id is already in the Dom.
	ErrCodeAlreadyAttached ErrorCode = "ALREADY_ATTACHED"

	// ErrCodeNoParent indicates an operation that needs a parent applied to
	// the root.
	ErrCodeNoParent ErrorCode = "NO_PARENT"

	// ErrCodeIncompatible indicates a parent kind and relation that cannot
	// hold the child kind, or a field the kind does not carry.
	ErrCodeIncompatible ErrorCode = "INCOMPATIBLE"

	// ErrCodeCycle indicates a move below the node itself.
	ErrCodeCycle ErrorCode = "CYCLE"

	// ErrCodeInvalidOrderKey indicates a malformed or duplicate order key.
	ErrCodeInvalidOrderKey ErrorCode = "INVALID_ORDER_KEY"

	// ErrCodeCorrupt indicates a decoded Dom that violates an invariant.
	ErrCodeCorrupt ErrorCode = "CORRUPT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsKindMismatch reports whether err is a KIND_MISMATCH error.
func IsKindMismatch(err error) bool { return hasCode(err, ErrCodeKindMismatch) }

// IsAlreadyAttached reports whether err is an ALREADY_ATTACHED error.
func IsAlreadyAttached(err error) bool { return hasCode(err, ErrCodeAlreadyAttached) }

// IsNoParent reports whether err is a NO_PARENT error.
func IsNoParent(err error) bool { return hasCode(err, ErrCodeNoParent) }

// IsIncompatible reports whether err is an INCOMPATIBLE error.
func IsIncompatible(err error) bool { return hasCode(err, ErrCodeIncompatible) }

// IsCycle reports whether err is a CYCLE error.
func IsCycle(err error) bool { return hasCode(err, ErrCodeCycle) }

// IsInvalidOrderKey reports whether err is an INVALID_ORDER_KEY error.
func IsInvalidOrderKey(err error) bool { return hasCode(err, ErrCodeInvalidOrderKey) }

// IsCorrupt reports whether err is a CORRUPT error.
func IsCorrupt(err error) bool { return hasCode(err, ErrCodeCorrupt) }

// IsValidation reports whether err is a user-facing naming problem.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *naming.ValidationError
	return errors.As(err, &ve)
}

func notFound(id NodeID) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "node does not exist", NodeID: id}
}

func kindMismatch(id NodeID, want, got Kind) *Error {
	return &Error{
		Code:    ErrCodeKindMismatch,
		Message: fmt.Sprintf("expected %s, got %s", want, got),
		NodeID:  id,
		Kind:    got,
	}
}

func incompatible(parent *Node, relation string, child Kind) *Error {
	return &Error{
		Code:    ErrCodeIncompatible,
		Message: fmt.Sprintf("%s.%s cannot hold %s", parent.Kind, relation, child),
		NodeID:  parent.ID,
		Kind:    child,
	}
}
