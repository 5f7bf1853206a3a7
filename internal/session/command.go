package session

import (
	"fmt"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ident"
	"github.com/roach88/appdom/internal/ir"
)

// Command is one editing step. Commands are plain values; the session
// applies them to its current Dom.
//
// The set of commands is closed: AddNode, MoveNode, RemoveNode,
// DuplicateNode, RenameNode, SetProp, SetParam, SetLayout, SetAttributes
// and Replace.
type Command interface {
	// Name identifies the command in logs, metrics and spans.
	Name() string

	// apply returns the next Dom and the node the command produced or
	// targeted.
	apply(d *dom.Dom, gen ident.Generator) (*dom.Dom, dom.NodeID, error)
}

// AddNode creates a node and attaches it under ParentID. An empty OrderKey
// appends after the last sibling.
type AddNode struct {
	Kind     dom.Kind
	Init     dom.NodeInit
	ParentID dom.NodeID
	Relation string
	OrderKey string
}

// Name implements Command.
func (AddNode) Name() string { return "add" }

func (c AddNode) apply(d *dom.Dom, gen ident.Generator) (*dom.Dom, dom.NodeID, error) {
	n, err := dom.Create(gen, c.Kind, c.Init)
	if err != nil {
		return nil, "", err
	}
	next, err := dom.Attach(d, n, c.ParentID, c.Relation, c.OrderKey)
	if err != nil {
		return nil, "", err
	}
	return next, n.ID, nil
}

// MoveNode relinks a node and its subtree.
type MoveNode struct {
	ID       dom.NodeID
	ParentID dom.NodeID
	Relation string
	OrderKey string
}

// Name implements Command.
func (MoveNode) Name() string { return "move" }

func (c MoveNode) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.Move(d, c.ID, c.ParentID, c.Relation, c.OrderKey)
	return next, c.ID, err
}

// RemoveNode deletes a node and its descendants.
type RemoveNode struct {
	ID dom.NodeID
}

// Name implements Command.
func (RemoveNode) Name() string { return "remove" }

func (c RemoveNode) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.Remove(d, c.ID)
	return next, c.ID, err
}

// DuplicateNode copies a subtree next to the original. The result carries
// the id of the copy.
type DuplicateNode struct {
	ID dom.NodeID
}

// Name implements Command.
func (DuplicateNode) Name() string { return "duplicate" }

func (c DuplicateNode) apply(d *dom.Dom, gen ident.Generator) (*dom.Dom, dom.NodeID, error) {
	return dom.Duplicate(d, gen, c.ID)
}

// RenameNode sets a node's name. A name taken in the node's scope fails.
type RenameNode struct {
	ID dom.NodeID
	To string
}

// Name implements Command.
func (RenameNode) Name() string { return "rename" }

func (c RenameNode) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.SetName(d, c.ID, c.To)
	return next, c.ID, err
}

// SetProp sets one prop of an element or code component. A nil Value
// removes the prop.
type SetProp struct {
	ID    dom.NodeID
	Key   string
	Value ir.IRValue
}

// Name implements Command.
func (SetProp) Name() string { return "set_prop" }

func (c SetProp) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.SetProp(d, c.ID, c.Key, c.Value)
	return next, c.ID, err
}

// SetParam sets one param of a page, query or mutation. A nil Value
// removes the param.
type SetParam struct {
	ID    dom.NodeID
	Key   string
	Value ir.IRValue
}

// Name implements Command.
func (SetParam) Name() string { return "set_param" }

func (c SetParam) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.SetParam(d, c.ID, c.Key, c.Value)
	return next, c.ID, err
}

// SetLayout places an element on the canvas. A nil Layout clears it.
type SetLayout struct {
	ID     dom.NodeID
	Layout *dom.Layout
}

// Name implements Command.
func (SetLayout) Name() string { return "set_layout" }

func (c SetLayout) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.SetLayout(d, c.ID, c.Layout)
	return next, c.ID, err
}

// SetAttributes replaces a node's kind-specific attributes.
type SetAttributes struct {
	ID         dom.NodeID
	Attributes dom.Attributes
}

// Name implements Command.
func (SetAttributes) Name() string { return "set_attributes" }

func (c SetAttributes) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	next, err := dom.SetAttributes(d, c.ID, c.Attributes)
	return next, c.ID, err
}

// Replace swaps the whole document, for example after loading a file.
// The replacement must keep the root id and satisfy dom.Verify. A
// replacement with the current content is a no-op.
type Replace struct {
	Dom *dom.Dom
}

// Name implements Command.
func (Replace) Name() string { return "replace" }

func (c Replace) apply(d *dom.Dom, _ ident.Generator) (*dom.Dom, dom.NodeID, error) {
	if c.Dom == nil {
		return nil, "", &Error{Code: ErrCodeInvalidReplace, Message: "replacement is nil"}
	}
	if c.Dom.Root() != d.Root() {
		return nil, "", &Error{
			Code:    ErrCodeInvalidReplace,
			Message: fmt.Sprintf("replacement root %s differs from %s", c.Dom.Root(), d.Root()),
		}
	}
	if vs := dom.Verify(c.Dom); len(vs) > 0 {
		return nil, "", &Error{Code: ErrCodeInvalidReplace, Message: vs[0].String()}
	}
	if dom.DiffContent(d, c.Dom).Empty() {
		return d, d.Root(), nil
	}
	return c.Dom, d.Root(), nil
}
