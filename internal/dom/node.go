package dom

import (
	"github.com/roach88/appdom/internal/ir"
)

// Node is one record of a Dom. Records are shared between Dom values and
// must never be modified after they are published; operations copy a record
// before changing it.
type Node struct {
	ID   NodeID
	Kind Kind
	Name string

	// ParentID, ParentRelation and OrderKey are empty only for the root of a
	// Dom or fragment and for detached nodes.
	ParentID       NodeID
	ParentRelation string
	OrderKey       string

	Attributes Attributes

	// Props are set on elements and code components.
	Props ir.IRObject

	// Params are set on pages, queries and mutations.
	Params ir.IRObject

	// Layout is set on elements only.
	Layout *Layout
}

// Layout holds grid placement hints for an element.
type Layout struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Detached reports whether the node has no parent.
func (n *Node) Detached() bool {
	return n.ParentID == ""
}

// Prop returns the named prop, or nil.
func (n *Node) Prop(key string) ir.IRValue {
	return n.Props[key]
}

// Param returns the named param, or nil.
func (n *Node) Param(key string) ir.IRValue {
	return n.Params[key]
}

// clone returns a shallow copy. Maps are shared; callers that change Props
// or Params replace the map.
func (n *Node) clone() *Node {
	c := *n
	return &c
}

// Equal reports whether two records hold the same values.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	return n.ID == o.ID &&
		n.Kind == o.Kind &&
		n.Name == o.Name &&
		n.ParentID == o.ParentID &&
		n.ParentRelation == o.ParentRelation &&
		n.OrderKey == o.OrderKey &&
		AttributesEqual(n.Attributes, o.Attributes) &&
		ir.EqualObjects(n.Props, o.Props) &&
		ir.EqualObjects(n.Params, o.Params) &&
		layoutEqual(n.Layout, o.Layout)
}

func layoutEqual(a, b *Layout) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
